package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	Currency = "MAD"
	Day      = 24 * time.Hour
)

// ParseDate accepts a calendar date (YYYY-MM-DD) or an RFC 3339 timestamp
// and returns it in UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD or RFC 3339", s)
}

type Pricing struct {
	PricePerDay float64 `json:"price_per_day" bson:"price_per_day"`
	TotalPrice  float64 `json:"total_price" bson:"total_price"`
	Deposit     float64 `json:"deposit" bson:"deposit"`
	ServiceFee  float64 `json:"service_fee" bson:"service_fee"`
	TotalAmount float64 `json:"total_amount" bson:"total_amount"`
}

// TotalDays counts started days between start and end. A range of 25 hours
// is two days. Callers must ensure end is after start.
func TotalDays(start, end time.Time) int {
	d := end.Sub(start)
	days := int(d / Day)
	if d%Day != 0 {
		days++
	}
	return days
}

// NewPricing snapshots what the renter pays for totalDays at pricePerDay.
// Amounts are rounded to the cent.
func NewPricing(pricePerDay, deposit float64, totalDays int, feeRate float64) Pricing {
	totalPrice := roundCents(pricePerDay * float64(totalDays))
	fee := roundCents(totalPrice * feeRate)
	return Pricing{
		PricePerDay: pricePerDay,
		TotalPrice:  totalPrice,
		Deposit:     deposit,
		ServiceFee:  fee,
		TotalAmount: roundCents(totalPrice + fee),
	}
}

// Overlaps uses inclusive bounds: two ranges touching on the same instant
// share a calendar day and conflict.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
