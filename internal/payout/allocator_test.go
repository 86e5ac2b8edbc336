package payout

import (
	"errors"
	"testing"

	"github.com/rashedq/marketpay/internal/earnings"
)

func availableEntry(id, businessID, gross, platformFee, processingFee int64) *earnings.EarningEntry {
	return &earnings.EarningEntry{
		ID:                   id,
		BusinessID:           businessID,
		Type:                 earnings.EntryTypeProductSale,
		GrossAmount:          gross,
		PlatformFee:          platformFee,
		PaymentProcessingFee: processingFee,
		NetAmount:            gross - platformFee - processingFee,
		Status:               earnings.EntryStatusAvailable,
	}
}

func TestSelectExplicit_ExactMatch(t *testing.T) {
	entries := []*earnings.EarningEntry{
		availableEntry(1, 10, 11500, 1150, 350), // net 10000
		availableEntry(2, 10, 4300, 430, 120),   // net 3750
	}

	amount := int64(13750)
	selection, err := SelectExplicit(entries, []int64{1, 2}, 10, &amount)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(selection.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(selection.Entries))
	}
	if selection.NetAmount != 13750 {
		t.Errorf("expected net 13750, got %d", selection.NetAmount)
	}
	if selection.TotalAmount != 15800 {
		t.Errorf("expected total 15800, got %d", selection.TotalAmount)
	}
	if selection.FeeAmount != 2050 {
		t.Errorf("expected fees 2050, got %d", selection.FeeAmount)
	}
}

func TestSelectExplicit_AmountMismatch(t *testing.T) {
	entries := []*earnings.EarningEntry{
		availableEntry(1, 10, 11500, 1150, 350),
		availableEntry(2, 10, 4300, 430, 120),
	}

	amount := int64(13751) // one cent off
	if _, err := SelectExplicit(entries, []int64{1, 2}, 10, &amount); err != ErrAmountMismatch {
		t.Errorf("expected ErrAmountMismatch, got %v", err)
	}
}

func TestSelectExplicit_CollectsAllViolations(t *testing.T) {
	otherBusiness := availableEntry(2, 99, 1000, 100, 30)
	pending := availableEntry(3, 10, 1000, 100, 30)
	pending.Status = earnings.EntryStatusPending
	locked := availableEntry(4, 10, 1000, 100, 30)
	payoutID := int64(55)
	locked.PayoutID = &payoutID

	entries := []*earnings.EarningEntry{
		availableEntry(1, 10, 1000, 100, 30),
		otherBusiness,
		pending,
		locked,
	}

	// id 1 twice (duplicate), 2 foreign, 3 pending, 4 locked, 5 missing
	_, err := SelectExplicit(entries, []int64{1, 1, 2, 3, 4, 5}, 10, nil)

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(validationErr.Violations) != 5 {
		t.Fatalf("expected 5 violations, got %d: %v", len(validationErr.Violations), validationErr)
	}
}

func TestSelectExplicit_LockedEntryNeverReselected(t *testing.T) {
	entry := availableEntry(1, 10, 1000, 100, 30)
	entry.Status = earnings.EntryStatusPaidOut
	payoutID := int64(7)
	entry.PayoutID = &payoutID

	_, err := SelectExplicit([]*earnings.EarningEntry{entry}, []int64{1}, 10, nil)

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestSelectExplicit_NoAmountAcceptsSum(t *testing.T) {
	entries := []*earnings.EarningEntry{availableEntry(1, 10, 1000, 100, 30)}

	selection, err := SelectExplicit(entries, []int64{1}, 10, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if selection.NetAmount != 870 {
		t.Errorf("expected net 870, got %d", selection.NetAmount)
	}
}

func TestSelectByAmount_WholeEntries(t *testing.T) {
	available := []*earnings.EarningEntry{
		availableEntry(1, 10, 1000, 100, 30), // net 870
		availableEntry(2, 10, 2000, 200, 60), // net 1740
		availableEntry(3, 10, 4000, 400, 90), // net 3510
	}

	amount := int64(2610) // exactly first two entries
	selection, err := SelectByAmount(available, &amount)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(selection.Entries) != 2 {
		t.Fatalf("expected 2 whole entries, got %d", len(selection.Entries))
	}
	if selection.Split != nil {
		t.Error("expected no split for an aligned amount")
	}
	if selection.NetAmount != 2610 {
		t.Errorf("expected net 2610, got %d", selection.NetAmount)
	}
}

func TestSelectByAmount_SplitsOvershootingEntry(t *testing.T) {
	available := []*earnings.EarningEntry{
		availableEntry(1, 10, 1000, 100, 30),    // net 870
		availableEntry(2, 10, 10000, 1000, 309), // net 8691
	}

	amount := int64(4870) // 870 whole + 4000 out of the second entry
	selection, err := SelectByAmount(available, &amount)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(selection.Entries) != 1 {
		t.Fatalf("expected 1 whole entry, got %d", len(selection.Entries))
	}
	if selection.Split == nil {
		t.Fatal("expected a split plan")
	}
	if selection.Split.Take != 4000 {
		t.Errorf("expected split take 4000, got %d", selection.Split.Take)
	}
	if selection.NetAmount != 4870 {
		t.Errorf("expected payout net 4870, got %d", selection.NetAmount)
	}

	// Split conserves the original entry's money
	original := selection.Split.Entry
	remainder := selection.Split.Result.Remainder
	part := selection.Split.Result.Part
	if remainder.Net+part.Net != original.NetAmount {
		t.Errorf("split does not conserve net: %d + %d != %d", remainder.Net, part.Net, original.NetAmount)
	}
	if remainder.Gross+part.Gross != original.GrossAmount {
		t.Errorf("split does not conserve gross")
	}
}

func TestSelectByAmount_TakeEverything(t *testing.T) {
	available := []*earnings.EarningEntry{
		availableEntry(1, 10, 1000, 100, 30),
		availableEntry(2, 10, 2000, 200, 60),
	}

	selection, err := SelectByAmount(available, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(selection.Entries) != 2 || selection.Split != nil {
		t.Errorf("expected all entries whole, got %d entries, split=%v", len(selection.Entries), selection.Split)
	}
	if selection.NetAmount != 2610 {
		t.Errorf("expected net 2610, got %d", selection.NetAmount)
	}
}

func TestSelectByAmount_ExceedsAvailable(t *testing.T) {
	available := []*earnings.EarningEntry{availableEntry(1, 10, 1000, 100, 30)}

	amount := int64(999999)
	if _, err := SelectByAmount(available, &amount); err != ErrAmountExceedsAvailable {
		t.Errorf("expected ErrAmountExceedsAvailable, got %v", err)
	}
}

func TestSelectByAmount_NoBalance(t *testing.T) {
	amount := int64(100)
	if _, err := SelectByAmount(nil, &amount); err != ErrNoAvailableBalance {
		t.Errorf("expected ErrNoAvailableBalance for empty ledger, got %v", err)
	}

	available := []*earnings.EarningEntry{availableEntry(1, 10, 1000, 100, 30)}
	zero := int64(0)
	if _, err := SelectByAmount(available, &zero); err != ErrNoAvailableBalance {
		t.Errorf("expected ErrNoAvailableBalance for zero amount, got %v", err)
	}
	negative := int64(-50)
	if _, err := SelectByAmount(available, &negative); err != ErrNoAvailableBalance {
		t.Errorf("expected ErrNoAvailableBalance for negative amount, got %v", err)
	}
}
