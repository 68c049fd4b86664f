package model

// BookingRequest is the body of a booking creation call. Dates are either
// YYYY-MM-DD or RFC 3339.
type BookingRequest struct {
	ItemID    string `json:"item_id" validate:"required,mongodb"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
	Message   string `json:"message,omitempty" validate:"omitempty,max=1000"`
}

type TransitionRequest struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

type MessageRequest struct {
	Message string `json:"message" validate:"required,min=1,max=1000"`
}
