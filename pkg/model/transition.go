package model

import "slices"

type Transition string

const (
	TransitionAccept Transition = "accept"
	TransitionReject Transition = "reject"
	TransitionCancel Transition = "cancel"
)

type transitionRule struct {
	from       []BookingStatus
	to         BookingStatus
	ownerOnly  bool
	withReason bool
}

var transitionRules = map[Transition]transitionRule{
	TransitionAccept: {from: []BookingStatus{BookingPending}, to: BookingConfirmed, ownerOnly: true},
	TransitionReject: {from: []BookingStatus{BookingPending}, to: BookingRejected, ownerOnly: true, withReason: true},
	TransitionCancel: {from: []BookingStatus{BookingPending, BookingConfirmed}, to: BookingCancelled, withReason: true},
}

func (t Transition) Valid() bool {
	_, ok := transitionRules[t]
	return ok
}

// From lists the statuses the transition may start from.
func (t Transition) From() []BookingStatus {
	return slices.Clone(transitionRules[t].from)
}

func (t Transition) To() BookingStatus {
	return transitionRules[t].to
}

// OwnerOnly is true when only the item owner may apply the transition.
// Otherwise either party may.
func (t Transition) OwnerOnly() bool {
	return transitionRules[t].ownerOnly
}

func (t Transition) RecordsReason() bool {
	return transitionRules[t].withReason
}

func (t Transition) AllowedFrom(s BookingStatus) bool {
	return slices.Contains(transitionRules[t].from, s)
}

// Authorized reports whether userID may apply the transition to b.
func (t Transition) Authorized(b *Booking, userID string) bool {
	if t.OwnerOnly() {
		return userID != "" && userID == b.OwnerID
	}
	return b.IsParty(userID)
}
