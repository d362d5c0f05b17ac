package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"
)

// EventType names a workflow outcome that people outside the request care
// about.
type EventType string

const (
	EventApplicationSubmitted EventType = "application.submitted"
	EventApplicationAssigned  EventType = "application.assigned"
	EventApplicationVerified  EventType = "application.verified"
	EventApplicationRejected  EventType = "application.rejected"
)

// Event is published after the transaction that produced it has committed.
type Event struct {
	Type           EventType  `json:"type"`
	ApplicationID  uuid.UUID  `json:"application_id"`
	Cycle          int        `json:"cycle"`
	PhysicianID    uuid.UUID  `json:"physician_id"`
	PhysicianEmail string     `json:"physician_email,omitempty"`
	PhysicianName  string     `json:"physician_name,omitempty"`
	ReviewerID     *uuid.UUID `json:"reviewer_id,omitempty"`
	ReviewerEmail  string     `json:"reviewer_email,omitempty"`
	ReviewerName   string     `json:"reviewer_name,omitempty"`
	ActorID        uuid.UUID  `json:"actor_id"`
	Reason         string     `json:"reason,omitempty"`
	OccurredAt     time.Time  `json:"occurred_at"`
}

// Notifier delivers workflow events to one channel.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, event Event) error

func (f NotifierFunc) Notify(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Dispatcher fans an event out to every sink. Sink errors and panics are
// logged and never reach the caller: a committed transition is not undone
// because a notification failed. Regular sinks are awaited; detached sinks
// run after Notify has returned so slow channels do not hold the request.
type Dispatcher struct {
	log      *logrus.Logger
	sinks    []Notifier
	detached []Notifier
	pending  sync.WaitGroup
}

func NewDispatcher(log *logrus.Logger, sinks ...Notifier) *Dispatcher {
	return &Dispatcher{log: log, sinks: sinks}
}

// Detach adds sinks that are delivered in the background.
func (d *Dispatcher) Detach(sinks ...Notifier) *Dispatcher {
	d.detached = append(d.detached, sinks...)
	return d
}

func (d *Dispatcher) Notify(ctx context.Context, event Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	d.deliver(ctx, event, d.sinks)

	if len(d.detached) > 0 {
		// The request context ends with the response; delivery must not.
		bg := context.WithoutCancel(ctx)
		d.pending.Add(1)
		go func() {
			defer d.pending.Done()
			d.deliver(bg, event, d.detached)
		}()
	}
	return nil
}

// Wait blocks until every detached delivery started so far has finished.
func (d *Dispatcher) Wait() {
	d.pending.Wait()
}

func (d *Dispatcher) deliver(ctx context.Context, event Event, sinks []Notifier) {
	var wg conc.WaitGroup
	for _, sink := range sinks {
		wg.Go(func() {
			if err := sink.Notify(ctx, event); err != nil {
				d.log.Warnf("Failed to deliver %s notification for application %s: %+v", event.Type, event.ApplicationID, err)
			}
		})
	}
	if recovered := wg.WaitAndRecover(); recovered != nil {
		d.log.Errorf("Notifier panicked on %s: %v", event.Type, recovered.Value)
	}
}

type logNotifier struct {
	log *logrus.Logger
}

// NewLogNotifier writes every event to the structured log.
func NewLogNotifier(log *logrus.Logger) Notifier {
	return &logNotifier{log: log}
}

func (n *logNotifier) Notify(ctx context.Context, event Event) error {
	n.log.WithFields(logrus.Fields{
		"event":          event.Type,
		"application_id": event.ApplicationID,
		"cycle":          event.Cycle,
		"actor_id":       event.ActorID,
	}).Info("Workflow notification")
	return nil
}
