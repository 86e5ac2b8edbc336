package fees

// LineKind identifies what an order earnings line pays for
type LineKind string

const (
	LineKindProductSale LineKind = "PRODUCT_SALE"
	LineKindShippingFee LineKind = "SHIPPING_FEE"
)

// OrderItem is one line item of an order as supplied by the order source
type OrderItem struct {
	ID        string `json:"id"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Total     int64  `json:"total"`
}

// Line is one computed earnings slice of an order, before persistence
type Line struct {
	Kind          LineKind
	LineItemID    *string
	Gross         int64
	PlatformFee   int64
	ProcessingFee int64
	Net           int64

	// Audit trail for the proration
	Ratio             float64
	PercentageFeePart int64
	FixedFeePart      int64
}

// OrderFees is the order-level fee context shared by all lines
type OrderFees struct {
	Subtotal          int64
	OrderTotal        int64
	PercentageFee     int64
	FixedFee          int64
	TotalProcessorFee int64
}

// BuildOrderEarnings fans an order into one earnings line per line item plus an
// optional shipping line. The processor fee is computed once at order level and
// distributed proportionally; per-line rounding is independent, so the
// distributed fees may drift from the order-level fee by a few cents. That
// residual is accepted, not reconciled - the ratio and both fee parts are kept
// on each line for audit.
func BuildOrderEarnings(items []OrderItem, shippingTotal int64) ([]Line, OrderFees, error) {
	if shippingTotal < 0 {
		return nil, OrderFees{}, ErrNegativeAmount
	}

	var subtotal int64
	for _, item := range items {
		if item.Total < 0 {
			return nil, OrderFees{}, ErrNegativeAmount
		}
		subtotal += item.Total
	}
	orderTotal := subtotal + shippingTotal

	fees := OrderFees{
		Subtotal:      subtotal,
		OrderTotal:    orderTotal,
		PercentageFee: RoundHalfUp(float64(orderTotal) * ProcessorFeePercent),
		FixedFee:      ProcessorFixedFeeCents,
	}
	fees.TotalProcessorFee = fees.PercentageFee + fees.FixedFee

	lines := make([]Line, 0, len(items)+1)
	for _, item := range items {
		id := item.ID
		line := buildLine(LineKindProductSale, &id, item.Total, fees)
		lines = append(lines, line)
	}

	if shippingTotal > 0 {
		lines = append(lines, buildLine(LineKindShippingFee, nil, shippingTotal, fees))
	}

	return lines, fees, nil
}

// buildLine computes one line's fee breakdown from its gross amount and the
// order-level fee context
func buildLine(kind LineKind, lineItemID *string, gross int64, fees OrderFees) Line {
	// A free order carries no fees: ratio 0, net = gross
	var ratio float64
	if fees.OrderTotal > 0 {
		ratio = float64(gross) / float64(fees.OrderTotal)
	}

	percentagePart := RoundHalfUp(float64(fees.PercentageFee) * ratio)
	fixedPart := RoundHalfUp(float64(fees.FixedFee) * ratio)
	platformFee := PlatformFee(gross)
	processingFee := percentagePart + fixedPart

	return Line{
		Kind:              kind,
		LineItemID:        lineItemID,
		Gross:             gross,
		PlatformFee:       platformFee,
		ProcessingFee:     processingFee,
		Net:               gross - platformFee - processingFee,
		Ratio:             ratio,
		PercentageFeePart: percentagePart,
		FixedFeePart:      fixedPart,
	}
}
