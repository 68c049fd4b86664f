package events

import (
	"context"
	"fmt"
	"time"

	"locmaroc/pkg/kafka"
	"locmaroc/pkg/middleware"
	"locmaroc/pkg/model"
)

const (
	TypeBookingCreated   = "booking.created"
	TypeBookingConfirmed = "booking.confirmed"
	TypeBookingRejected  = "booking.rejected"
	TypeBookingCancelled = "booking.cancelled"

	SchemaVersion = "1"
	Source        = "marketplace"
)

// Event is the payload published for each lifecycle change.
type Event struct {
	Type       string              `json:"type"`
	BookingID  string              `json:"booking_id"`
	ItemID     string              `json:"item_id"`
	RenterID   string              `json:"renter_id"`
	OwnerID    string              `json:"owner_id"`
	ActorID    string              `json:"actor_id"`
	Status     model.BookingStatus `json:"status"`
	StartDate  time.Time           `json:"start_date"`
	EndDate    time.Time           `json:"end_date"`
	Amount     float64             `json:"total_amount"`
	Reason     string              `json:"reason,omitempty"`
	OccurredAt time.Time           `json:"occurred_at"`
}

func NewEvent(eventType string, b *model.Booking, actorID string) Event {
	return Event{
		Type:       eventType,
		BookingID:  b.ID,
		ItemID:     b.ItemID,
		RenterID:   b.RenterID,
		OwnerID:    b.OwnerID,
		ActorID:    actorID,
		Status:     b.Status,
		StartDate:  b.Dates.StartDate,
		EndDate:    b.Dates.EndDate,
		Amount:     b.Pricing.TotalAmount,
		Reason:     b.CancellationReason,
		OccurredAt: time.Now().UTC(),
	}
}

// TypeFor maps a transition to the event it emits.
func TypeFor(t model.Transition) string {
	switch t {
	case model.TransitionAccept:
		return TypeBookingConfirmed
	case model.TransitionReject:
		return TypeBookingRejected
	default:
		return TypeBookingCancelled
	}
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

type nopPublisher struct{}

// NewNopPublisher returns a publisher that drops every event.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, Event) error {
	return nil
}

// MessagePublisher is the part of kafka.Producer used here.
type MessagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type kafkaPublisher struct {
	producer MessagePublisher
}

func NewKafkaPublisher(producer MessagePublisher) Publisher {
	return &kafkaPublisher{producer: producer}
}

// Publish keys messages by booking id so one booking's events stay ordered.
func (p *kafkaPublisher) Publish(ctx context.Context, evt Event) error {
	msg, err := kafka.NewMessage().
		WithKey(evt.BookingID).
		WithValue(evt).
		WithEventType(evt.Type).
		WithSource(Source).
		WithSchemaVersion(SchemaVersion).
		WithCorrelationID(middleware.GetRequestID(ctx)).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build booking event: %w", err)
	}
	return p.producer.Publish(ctx, msg)
}
