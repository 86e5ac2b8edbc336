package fees

import "testing"

func TestBuildOrderEarnings_ProratesProcessorFee(t *testing.T) {
	// Items of $100.00 and $50.00, shipping $10.00 -> order total 16000 cents
	items := []OrderItem{
		{ID: "item_1", UnitPrice: 10000, Quantity: 1, Total: 10000},
		{ID: "item_2", UnitPrice: 5000, Quantity: 1, Total: 5000},
	}

	lines, orderFees, err := BuildOrderEarnings(items, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if orderFees.OrderTotal != 16000 {
		t.Errorf("expected order total 16000, got %d", orderFees.OrderTotal)
	}
	if orderFees.PercentageFee != 464 {
		t.Errorf("expected percentage fee 464, got %d", orderFees.PercentageFee)
	}
	if orderFees.TotalProcessorFee != 494 {
		t.Errorf("expected total processor fee 494, got %d", orderFees.TotalProcessorFee)
	}

	if len(lines) != 3 {
		t.Fatalf("expected 3 lines (2 items + shipping), got %d", len(lines))
	}

	// item_1: ratio 0.625 -> processor fee 290+19=309, platform 1000, net 8691
	first := lines[0]
	if first.Kind != LineKindProductSale {
		t.Errorf("expected product sale line, got %s", first.Kind)
	}
	if first.PlatformFee != 1000 {
		t.Errorf("expected platform fee 1000, got %d", first.PlatformFee)
	}
	if first.PercentageFeePart != 290 || first.FixedFeePart != 19 {
		t.Errorf("expected fee parts 290+19, got %d+%d", first.PercentageFeePart, first.FixedFeePart)
	}
	if first.ProcessingFee != 309 {
		t.Errorf("expected processing fee 309, got %d", first.ProcessingFee)
	}
	if first.Net != 8691 {
		t.Errorf("expected net 8691, got %d", first.Net)
	}

	shipping := lines[2]
	if shipping.Kind != LineKindShippingFee {
		t.Errorf("expected shipping line, got %s", shipping.Kind)
	}
	if shipping.Gross != 1000 {
		t.Errorf("expected shipping gross 1000, got %d", shipping.Gross)
	}
}

func TestBuildOrderEarnings_Conservation(t *testing.T) {
	items := []OrderItem{
		{ID: "a", Total: 3337},
		{ID: "b", Total: 1299},
		{ID: "c", Total: 9901},
	}

	lines, orderFees, err := BuildOrderEarnings(items, 599)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var gross int64
	for _, line := range lines {
		gross += line.Gross
		if line.Net != line.Gross-line.PlatformFee-line.ProcessingFee {
			t.Errorf("line %v does not balance", line.LineItemID)
		}
	}
	if gross != orderFees.Subtotal+599 {
		t.Errorf("gross %d does not equal subtotal+shipping %d", gross, orderFees.Subtotal+599)
	}
}

func TestBuildOrderEarnings_FixedFeeChargedOncePerOrder(t *testing.T) {
	// Five equal items: the fixed fee must be ~30 cents in total, never 5 x 30
	items := make([]OrderItem, 5)
	for i := range items {
		items[i] = OrderItem{ID: "item", Total: 2000}
	}

	lines, _, err := BuildOrderEarnings(items, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var fixedTotal int64
	for _, line := range lines {
		fixedTotal += line.FixedFeePart
	}

	// Independent rounding may drift by at most one cent per line
	if fixedTotal < ProcessorFixedFeeCents-int64(len(lines)) || fixedTotal > ProcessorFixedFeeCents+int64(len(lines)) {
		t.Errorf("fixed fee total %d too far from %d", fixedTotal, ProcessorFixedFeeCents)
	}
	if fixedTotal >= ProcessorFixedFeeCents*int64(len(lines)) {
		t.Errorf("fixed fee %d looks charged per item", fixedTotal)
	}
}

func TestBuildOrderEarnings_FreeOrder(t *testing.T) {
	items := []OrderItem{{ID: "freebie", Total: 0}}

	lines, orderFees, err := BuildOrderEarnings(items, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if orderFees.OrderTotal != 0 {
		t.Fatalf("expected zero order total, got %d", orderFees.OrderTotal)
	}
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	line := lines[0]
	if line.Ratio != 0 || line.PlatformFee != 0 || line.ProcessingFee != 0 {
		t.Errorf("expected zero fees on a free order, got %+v", line)
	}
	if line.Net != line.Gross {
		t.Errorf("expected net == gross on a free order")
	}
}

func TestBuildOrderEarnings_NegativeAmounts(t *testing.T) {
	if _, _, err := BuildOrderEarnings([]OrderItem{{ID: "x", Total: -1}}, 0); err != ErrNegativeAmount {
		t.Errorf("expected ErrNegativeAmount, got %v", err)
	}
	if _, _, err := BuildOrderEarnings(nil, -5); err != ErrNegativeAmount {
		t.Errorf("expected ErrNegativeAmount for negative shipping, got %v", err)
	}
}

func TestBuildOrderEarnings_NoShippingLineWhenZero(t *testing.T) {
	lines, _, err := BuildOrderEarnings([]OrderItem{{ID: "a", Total: 500}}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 1 {
		t.Errorf("expected no shipping line for zero shipping, got %d lines", len(lines))
	}
}
