package model

import (
	"slices"
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingActive    BookingStatus = "active"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
	BookingRejected  BookingStatus = "rejected"
)

// BlockingStatuses are the statuses whose date range makes an item
// unavailable to other renters.
var BlockingStatuses = []BookingStatus{BookingPending, BookingConfirmed, BookingActive}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingActive, BookingCompleted, BookingCancelled, BookingRejected:
		return true
	}
	return false
}

func (s BookingStatus) Blocking() bool {
	return slices.Contains(BlockingStatuses, s)
}

type Booking struct {
	ID                 string           `json:"id,omitempty" bson:"_id,omitempty"`
	ItemID             string           `json:"item_id" bson:"item_id"`
	RenterID           string           `json:"renter_id" bson:"renter_id"`
	OwnerID            string           `json:"owner_id" bson:"owner_id"`
	Dates              BookingDates     `json:"dates" bson:"dates"`
	Pricing            Pricing          `json:"pricing" bson:"pricing"`
	Status             BookingStatus    `json:"status" bson:"status"`
	CancellationReason string           `json:"cancellation_reason,omitempty" bson:"cancellation_reason,omitempty"`
	Messages           []BookingMessage `json:"messages,omitempty" bson:"messages,omitempty"`
	Review             *Review          `json:"review,omitempty" bson:"review,omitempty"`
	Payment            *Payment         `json:"payment,omitempty" bson:"payment,omitempty"`
	Item               *ItemSummary     `json:"item,omitempty" bson:"item,omitempty"`
	Renter             *PartySummary    `json:"renter,omitempty" bson:"renter,omitempty"`
	Owner              *PartySummary    `json:"owner,omitempty" bson:"owner,omitempty"`
	CreatedAt          time.Time        `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at" bson:"updated_at"`
}

type BookingDates struct {
	StartDate time.Time `json:"start_date" bson:"start_date"`
	EndDate   time.Time `json:"end_date" bson:"end_date"`
	TotalDays int       `json:"total_days" bson:"total_days"`
}

type BookingMessage struct {
	SenderID  string    `json:"sender_id" bson:"sender_id"`
	Message   string    `json:"message" bson:"message"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

type Review struct {
	Rating    int       `json:"rating" bson:"rating" validate:"required,min=1,max=5"`
	Comment   string    `json:"comment,omitempty" bson:"comment,omitempty" validate:"omitempty,max=500"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Payment mirrors the payment provider record. Nothing in this service
// fills it in yet.
type Payment struct {
	PaymentIntentID string  `json:"payment_intent_id,omitempty" bson:"payment_intent_id,omitempty"`
	Status          string  `json:"status" bson:"status"`
	Amount          float64 `json:"amount" bson:"amount"`
	Currency        string  `json:"currency" bson:"currency"`
}

// ItemSummary and PartySummary are joined into bookings on read so a client
// can render a booking list without fetching each item and user. They are
// never written.
type ItemSummary struct {
	ID          string      `json:"id" bson:"_id"`
	Title       string      `json:"title" bson:"title"`
	Images      []ItemImage `json:"images,omitempty" bson:"images,omitempty"`
	PricePerDay float64     `json:"price_per_day" bson:"price_per_day"`
	Location    Location    `json:"location" bson:"location"`
}

type PartySummary struct {
	ID         string `json:"id" bson:"_id"`
	FirstName  string `json:"first_name" bson:"first_name"`
	LastName   string `json:"last_name" bson:"last_name"`
	TrustScore int    `json:"trust_score" bson:"trust_score"`
}

// IsParty reports whether userID is the renter or the owner of the booking.
func (b *Booking) IsParty(userID string) bool {
	return userID != "" && (userID == b.RenterID || userID == b.OwnerID)
}
