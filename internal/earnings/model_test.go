package earnings

import "testing"

func TestEntryStatusTransitions(t *testing.T) {
	tests := []struct {
		from    EntryStatus
		to      EntryStatus
		allowed bool
	}{
		{EntryStatusPending, EntryStatusAvailable, true},
		{EntryStatusPending, EntryStatusReversed, true},
		{EntryStatusPending, EntryStatusPaidOut, false},
		{EntryStatusPending, EntryStatusPaid, false},
		{EntryStatusAvailable, EntryStatusPaidOut, true},
		{EntryStatusAvailable, EntryStatusReversed, true},
		{EntryStatusAvailable, EntryStatusPaid, false},
		{EntryStatusAvailable, EntryStatusPending, false},
		{EntryStatusPaidOut, EntryStatusPaid, true},
		{EntryStatusPaidOut, EntryStatusAvailable, true}, // payout cancellation
		{EntryStatusPaidOut, EntryStatusReversed, false}, // no clawback after payout
		{EntryStatusPaid, EntryStatusReversed, false},
		{EntryStatusPaid, EntryStatusAvailable, false},
		{EntryStatusReversed, EntryStatusAvailable, false},
		{EntryStatusReversed, EntryStatusPending, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.allowed {
			t.Errorf("%s -> %s: expected %v, got %v", tt.from, tt.to, tt.allowed, got)
		}
	}
}

func TestEarningEntryLocked(t *testing.T) {
	entry := &EarningEntry{}
	if entry.Locked() {
		t.Error("entry without payout should not be locked")
	}

	payoutID := int64(7)
	entry.PayoutID = &payoutID
	if !entry.Locked() {
		t.Error("entry linked to a payout should be locked")
	}
}
