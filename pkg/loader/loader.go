// Package loader fetches the schedule dataset and market metrics independently
// and publishes the outcomes to subscribers.
package loader

import (
	"context"
	"sync"
	"time"

	"tonunlock/pkg/logging"
	"tonunlock/pkg/models"

	"go.uber.org/zap"
)

// DataSource defines the interface for fetching data.
type DataSource interface {
	FetchSchedule(ctx context.Context) (*models.AppData, error)
	FetchMarketMetrics(ctx context.Context) (models.MarketMetrics, error)
}

// Status is a point-in-time copy of everything the loader knows.
type Status struct {
	AppData         *models.AppData       `json:"-"`
	Metrics         *models.MarketMetrics `json:"metrics,omitempty"`
	ScheduleErr     string                `json:"schedule_error,omitempty"`
	MetricsErr      string                `json:"metrics_error,omitempty"`
	SchedulePending bool                  `json:"schedule_pending"`
	MetricsPending  bool                  `json:"metrics_pending"`
}

// Loader owns the fetched state.
type Loader struct {
	dataSource   DataSource
	refreshEvery time.Duration
	logger       *zap.Logger

	appData      *models.AppData
	metrics      *models.MarketMetrics
	scheduleErr  error
	metricsErr   error
	scheduleDone bool
	metricsDone  bool

	subscribers []Subscriber
	mu          sync.RWMutex
	stopChan    chan struct{}
	stopOnce    sync.Once
}

// New creates a Loader. A zero refresh interval disables periodic metrics refresh.
func New(ds DataSource, refreshEvery time.Duration, logger *zap.Logger) *Loader {
	logger = logging.OrNop(logger)
	return &Loader{
		dataSource:   ds,
		refreshEvery: refreshEvery,
		logger:       logger,
		stopChan:     make(chan struct{}),
	}
}

// Subscribe adds a new subscriber and returns a channel to receive events.
func (l *Loader) Subscribe() Subscriber {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch := make(Subscriber, 16)
	l.subscribers = append(l.subscribers, ch)
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (l *Loader) Unsubscribe(ch Subscriber) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, sub := range l.subscribers {
		if sub == ch {
			l.subscribers = append(l.subscribers[:i], l.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

func (l *Loader) notify(event Event) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, sub := range l.subscribers {
		select {
		case sub <- event:
		default:
			l.logger.Warn("dropping event for slow subscriber", zap.String("type", string(event.Type)))
		}
	}
}

// Start performs the initial load in the background, then refreshes metrics
// on the configured interval until Stop or ctx cancellation.
func (l *Loader) Start(ctx context.Context) {
	go l.run(ctx)
}

// Stop ends the refresh loop. It is safe to call more than once.
func (l *Loader) Stop() {
	l.stopOnce.Do(func() { close(l.stopChan) })
}

func (l *Loader) run(ctx context.Context) {
	l.Load(ctx)

	if l.refreshEvery <= 0 {
		return
	}
	ticker := time.NewTicker(l.refreshEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.loadMetrics(ctx)
		case <-l.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Load fetches both resources concurrently and returns when both have
// finished. A failure of one never affects the other.
func (l *Loader) Load(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		l.loadSchedule(ctx)
	}()
	go func() {
		defer wg.Done()
		l.loadMetrics(ctx)
	}()
	wg.Wait()
}

func (l *Loader) source() DataSource {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.dataSource
}

func (l *Loader) loadSchedule(ctx context.Context) {
	start := time.Now()
	data, err := l.source().FetchSchedule(ctx)
	if err != nil {
		l.logger.Error("failed to load schedule data", zap.Error(err))
		l.mu.Lock()
		l.appData = nil
		l.scheduleErr = err
		l.scheduleDone = true
		l.mu.Unlock()
		l.notify(Event{Type: EventScheduleFailed, Data: err.Error()})
		return
	}

	inconsistent := 0
	for _, w := range data.WalletTableData {
		if !w.Consistent() {
			inconsistent++
		}
	}
	if inconsistent > 0 {
		l.logger.Warn("wallet amounts do not add up", zap.Int("wallets", inconsistent))
	}
	l.logger.Info("schedule data loaded",
		zap.String("data_date", data.DataDate),
		zap.Int("wallets", len(data.WalletTableData)),
		zap.Duration("took", time.Since(start)))

	l.mu.Lock()
	l.appData = data
	l.scheduleErr = nil
	l.scheduleDone = true
	l.mu.Unlock()
	l.notify(Event{Type: EventScheduleLoaded, Data: data})
}

func (l *Loader) loadMetrics(ctx context.Context) {
	m, err := l.source().FetchMarketMetrics(ctx)
	if err != nil {
		l.logger.Error("failed to load market metrics", zap.Error(err))
		l.mu.Lock()
		l.metrics = nil
		l.metricsErr = err
		l.metricsDone = true
		l.mu.Unlock()
		l.notify(Event{Type: EventMetricsFailed, Data: err.Error()})
		return
	}

	l.logger.Debug("market metrics updated", zap.Float64("price_usd", m.PriceUSD))
	l.mu.Lock()
	l.metrics = &m
	l.metricsErr = nil
	l.metricsDone = true
	l.mu.Unlock()
	l.notify(Event{Type: EventMetricsUpdated, Data: m})
}

// AppData returns the loaded schedule, or nil if it is absent.
func (l *Loader) AppData() *models.AppData {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.appData
}

// Metrics returns the latest metrics, or nil when none are available.
func (l *Loader) Metrics() *models.MarketMetrics {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.metrics == nil {
		return nil
	}
	m := *l.metrics
	return &m
}

func (l *Loader) Status() Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s := Status{
		AppData:         l.appData,
		SchedulePending: !l.scheduleDone,
		MetricsPending:  !l.metricsDone,
	}
	if l.metrics != nil {
		m := *l.metrics
		s.Metrics = &m
	}
	if l.scheduleErr != nil {
		s.ScheduleErr = l.scheduleErr.Error()
	}
	if l.metricsErr != nil {
		s.MetricsErr = l.metricsErr.Error()
	}
	return s
}
