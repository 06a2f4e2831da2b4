package loader

import (
	"context"
	"errors"
	"testing"
	"time"

	"tonunlock/pkg/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDataSource struct {
	mock.Mock
}

func (m *MockDataSource) FetchSchedule(ctx context.Context) (*models.AppData, error) {
	args := m.Called(ctx)
	data, _ := args.Get(0).(*models.AppData)
	return data, args.Error(1)
}

func (m *MockDataSource) FetchMarketMetrics(ctx context.Context) (models.MarketMetrics, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.MarketMetrics), args.Error(1)
}

func sampleData() *models.AppData {
	return &models.AppData{
		DataDate:     "2024-07-01",
		TotalWallets: 1,
		WalletTableData: []models.WalletRecord{{
			Rank:           1,
			Address:        "EQCabcdefghijklmnopqrstuvwxyz0123",
			TotalAmount:    decimal.NewFromInt(100),
			UnlockedAmount: decimal.NewFromInt(40),
			LockedAmount:   decimal.NewFromInt(50),
		}},
	}
}

func collect(t *testing.T, sub Subscriber, n int) map[EventType]Event {
	t.Helper()
	got := make(map[EventType]Event)
	timeout := time.After(time.Second)
	for i := 0; i < n; i++ {
		select {
		case ev := <-sub:
			got[ev.Type] = ev
		case <-timeout:
			t.Fatalf("timed out waiting for events, got %d", len(got))
		}
	}
	return got
}

func TestSubscribeUnsubscribe(t *testing.T) {
	l := New(nil, 0, nil)
	sub := l.Subscribe()
	assert.NotNil(t, sub)

	l.mu.RLock()
	assert.Equal(t, 1, len(l.subscribers))
	l.mu.RUnlock()

	l.Unsubscribe(sub)
	l.mu.RLock()
	assert.Equal(t, 0, len(l.subscribers))
	l.mu.RUnlock()

	_, open := <-sub
	assert.False(t, open)
}

func TestLoad_BothSucceed(t *testing.T) {
	mockDS := new(MockDataSource)
	mockDS.On("FetchSchedule", mock.Anything).Return(sampleData(), nil)
	mockDS.On("FetchMarketMetrics", mock.Anything).Return(models.MarketMetrics{PriceUSD: 5.43, MarketCapRank: 9}, nil)

	l := New(mockDS, 0, nil)
	assert.True(t, l.Status().SchedulePending)

	sub := l.Subscribe()
	l.Load(context.Background())
	mockDS.AssertExpectations(t)

	events := collect(t, sub, 2)
	require.Contains(t, events, EventScheduleLoaded)
	require.Contains(t, events, EventMetricsUpdated)
	assert.Equal(t, "2024-07-01", events[EventScheduleLoaded].Data.(*models.AppData).DataDate)

	require.NotNil(t, l.AppData())
	require.NotNil(t, l.Metrics())
	assert.Equal(t, 5.43, l.Metrics().PriceUSD)

	st := l.Status()
	assert.False(t, st.SchedulePending)
	assert.False(t, st.MetricsPending)
	assert.Empty(t, st.ScheduleErr)
}

func TestLoad_ScheduleFailureLeavesMetrics(t *testing.T) {
	mockDS := new(MockDataSource)
	mockDS.On("FetchSchedule", mock.Anything).Return(nil, errors.New("404"))
	mockDS.On("FetchMarketMetrics", mock.Anything).Return(models.MarketMetrics{PriceUSD: 1}, nil)

	l := New(mockDS, 0, nil)
	sub := l.Subscribe()
	l.Load(context.Background())

	events := collect(t, sub, 2)
	require.Contains(t, events, EventScheduleFailed)
	assert.Equal(t, "404", events[EventScheduleFailed].Data)
	require.Contains(t, events, EventMetricsUpdated)

	assert.Nil(t, l.AppData())
	assert.NotNil(t, l.Metrics())
	assert.Equal(t, "404", l.Status().ScheduleErr)
}

func TestLoad_MetricsFailureLeavesSchedule(t *testing.T) {
	mockDS := new(MockDataSource)
	mockDS.On("FetchSchedule", mock.Anything).Return(sampleData(), nil)
	mockDS.On("FetchMarketMetrics", mock.Anything).Return(models.MarketMetrics{}, errors.New("429"))

	l := New(mockDS, 0, nil)
	sub := l.Subscribe()
	l.Load(context.Background())

	events := collect(t, sub, 2)
	require.Contains(t, events, EventScheduleLoaded)
	require.Contains(t, events, EventMetricsFailed)

	assert.NotNil(t, l.AppData())
	assert.Nil(t, l.Metrics())
	assert.Equal(t, "429", l.Status().MetricsErr)
}

func TestLoad_SingleAttempt(t *testing.T) {
	mockDS := new(MockDataSource)
	mockDS.On("FetchSchedule", mock.Anything).Return(nil, errors.New("down")).Once()
	mockDS.On("FetchMarketMetrics", mock.Anything).Return(models.MarketMetrics{}, errors.New("down")).Once()

	l := New(mockDS, 0, nil)
	l.Load(context.Background())

	mockDS.AssertNumberOfCalls(t, "FetchSchedule", 1)
	mockDS.AssertNumberOfCalls(t, "FetchMarketMetrics", 1)
}

func TestStart_RefreshesMetricsOnly(t *testing.T) {
	mockDS := new(MockDataSource)
	mockDS.On("FetchSchedule", mock.Anything).Return(sampleData(), nil).Once()
	mockDS.On("FetchMarketMetrics", mock.Anything).Return(models.MarketMetrics{PriceUSD: 2}, nil)

	l := New(mockDS, 20*time.Millisecond, nil)
	sub := l.Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l.Start(ctx)

	metricsEvents := 0
	timeout := time.After(time.Second)
	for metricsEvents < 3 {
		select {
		case ev := <-sub:
			if ev.Type == EventMetricsUpdated {
				metricsEvents++
			}
		case <-timeout:
			t.Fatalf("timed out after %d metrics events", metricsEvents)
		}
	}
	l.Stop()
	l.Stop()

	mockDS.AssertNumberOfCalls(t, "FetchSchedule", 1)
}
