package loader

// EventType defines the type of event being broadcast.
type EventType string

const (
	EventScheduleLoaded EventType = "schedule_loaded"
	EventScheduleFailed EventType = "schedule_failed"
	EventMetricsUpdated EventType = "metrics_updated"
	EventMetricsFailed  EventType = "metrics_failed"
)

// Event represents a load outcome. Data is *models.AppData or
// models.MarketMetrics on success and the error text on failure.
type Event struct {
	Type EventType   `json:"type"`
	Data interface{} `json:"data"`
}

// Subscriber is a channel that receives events.
type Subscriber chan Event
