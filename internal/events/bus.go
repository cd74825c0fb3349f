// Package events fans out pipeline progress and user notifications to
// whoever presents them (the tool server, logs, tests).
package events

import (
	"time"

	evbus "github.com/asaskevich/EventBus"
)

// Topic names.
const (
	TopicProgress     = "pipeline:progress"
	TopicRun          = "pipeline:run"
	TopicNotification = "ui:notification"
)

// Severity of a notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// DismissAfter is how long a notification stays visible.
const DismissAfter = 3 * time.Second

// Notification is a toast for the user.
type Notification struct {
	Message        string   `json:"message"`
	Severity       Severity `json:"severity"`
	DismissAfterMS int64    `json:"dismiss_after_ms"`
}

// Progress reports that a pipeline entered step Index of Total.
type Progress struct {
	Pipeline string  `json:"pipeline"`
	Label    string  `json:"label"`
	Percent  float64 `json:"percent"`
	Index    int     `json:"index"`
	Total    int     `json:"total"`
}

// RunPhase marks the start or end of a pipeline run.
type RunPhase string

const (
	RunStarted  RunPhase = "started"
	RunFinished RunPhase = "finished"
	RunFailed   RunPhase = "failed"
)

// RunEvent is published when a pipeline starts and when it ends.
type RunEvent struct {
	Pipeline string   `json:"pipeline"`
	Phase    RunPhase `json:"phase"`
	Error    string   `json:"error,omitempty"`
}

// Bus is a typed wrapper over a synchronous event bus. Handlers run on the
// publisher's goroutine, in subscription order.
type Bus struct {
	bus evbus.Bus
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{bus: evbus.New()}
}

// Notify publishes a notification with the standard dismiss delay.
func (b *Bus) Notify(message string, severity Severity) {
	b.bus.Publish(TopicNotification, Notification{
		Message:        message,
		Severity:       severity,
		DismissAfterMS: DismissAfter.Milliseconds(),
	})
}

// PublishProgress publishes a progress event.
func (b *Bus) PublishProgress(p Progress) {
	b.bus.Publish(TopicProgress, p)
}

// PublishRun publishes a run lifecycle event.
func (b *Bus) PublishRun(e RunEvent) {
	b.bus.Publish(TopicRun, e)
}

// OnNotification subscribes fn to notifications.
func (b *Bus) OnNotification(fn func(Notification)) error {
	return b.bus.Subscribe(TopicNotification, fn)
}

// OnProgress subscribes fn to progress events.
func (b *Bus) OnProgress(fn func(Progress)) error {
	return b.bus.Subscribe(TopicProgress, fn)
}

// OnRun subscribes fn to run lifecycle events.
func (b *Bus) OnRun(fn func(RunEvent)) error {
	return b.bus.Subscribe(TopicRun, fn)
}
