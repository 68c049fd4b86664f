package model

import "testing"

func TestTransitionRules(t *testing.T) {
	all := []BookingStatus{BookingPending, BookingConfirmed, BookingActive, BookingCompleted, BookingCancelled, BookingRejected}

	tests := []struct {
		transition Transition
		allowed    map[BookingStatus]bool
		to         BookingStatus
		ownerOnly  bool
	}{
		{TransitionAccept, map[BookingStatus]bool{BookingPending: true}, BookingConfirmed, true},
		{TransitionReject, map[BookingStatus]bool{BookingPending: true}, BookingRejected, true},
		{TransitionCancel, map[BookingStatus]bool{BookingPending: true, BookingConfirmed: true}, BookingCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.transition), func(t *testing.T) {
			for _, s := range all {
				if got := tt.transition.AllowedFrom(s); got != tt.allowed[s] {
					t.Errorf("AllowedFrom(%s) = %v, want %v", s, got, tt.allowed[s])
				}
			}
			if tt.transition.To() != tt.to {
				t.Errorf("To() = %s, want %s", tt.transition.To(), tt.to)
			}
			if tt.transition.OwnerOnly() != tt.ownerOnly {
				t.Errorf("OwnerOnly() = %v", tt.transition.OwnerOnly())
			}
		})
	}
}

func TestTransitionAuthorized(t *testing.T) {
	b := &Booking{RenterID: "renter", OwnerID: "owner"}

	if !TransitionAccept.Authorized(b, "owner") {
		t.Error("owner should accept")
	}
	if TransitionAccept.Authorized(b, "renter") {
		t.Error("renter must not accept")
	}
	if TransitionReject.Authorized(b, "stranger") {
		t.Error("stranger must not reject")
	}
	if !TransitionCancel.Authorized(b, "renter") || !TransitionCancel.Authorized(b, "owner") {
		t.Error("both parties may cancel")
	}
	if TransitionCancel.Authorized(b, "") {
		t.Error("empty user must not cancel")
	}
}

func TestBookingStatus(t *testing.T) {
	if !BookingPending.Blocking() || !BookingConfirmed.Blocking() || !BookingActive.Blocking() {
		t.Error("pending, confirmed and active block the calendar")
	}
	if BookingCancelled.Blocking() || BookingRejected.Blocking() || BookingCompleted.Blocking() {
		t.Error("terminal statuses do not block the calendar")
	}
	if BookingStatus("archived").Valid() {
		t.Error("unknown status should be invalid")
	}
	if Transition("extend").Valid() {
		t.Error("unknown transition should be invalid")
	}
}
