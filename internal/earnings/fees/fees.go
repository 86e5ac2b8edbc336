package fees

import (
	"errors"
	"math"
)

// Fee rates applied to marketplace money movements.
// All amounts everywhere in this package are integer minor currency units (cents).
const (
	// PlatformFeePercent is the marketplace commission taken from every gross amount
	PlatformFeePercent = 0.10

	// ProcessorFeePercent is the payment processor's percentage fee, charged once per order
	ProcessorFeePercent = 0.029

	// ProcessorFixedFeeCents is the payment processor's fixed per-transaction fee,
	// charged once per order and prorated across lines - never once per line item
	ProcessorFixedFeeCents int64 = 30

	// ClinicianSharePercent is the clinician's share of a consultation fee after
	// the platform fee is taken
	ClinicianSharePercent = 0.70
)

var (
	ErrNegativeAmount = errors.New("amounts cannot be negative")
	ErrInvalidTake    = errors.New("take amount must be positive and less than the entry net amount")
	ErrUnsafeSplit    = errors.New("unable to split entry safely: derived processing fee out of bounds")
)

// RoundHalfUp rounds to the nearest cent, halves away from zero
func RoundHalfUp(value float64) int64 {
	return int64(math.Round(value))
}

// PlatformFee computes the marketplace commission on a gross amount in cents
func PlatformFee(gross int64) int64 {
	return RoundHalfUp(float64(gross) * PlatformFeePercent)
}

// Amounts is the monetary breakdown of one earning entry
type Amounts struct {
	Gross         int64
	PlatformFee   int64
	ProcessingFee int64
	Net           int64
	ClinicianFee  *int64
}
