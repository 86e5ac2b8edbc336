package fees

import "github.com/shopspring/decimal"

// ConsultationSplit is the breakdown of a consultation fee between the
// platform, the clinician and the business
type ConsultationSplit struct {
	TotalCents     int64
	PlatformFee    int64
	Remaining      int64
	ClinicianShare int64
	BusinessShare  int64
}

// SplitConsultationFee splits a consultation fee, supplied in decimal dollars,
// between clinician and business after the platform fee. When no clinician is
// assigned the whole remainder goes to the business.
func SplitConsultationFee(fee decimal.Decimal, hasClinician bool) (ConsultationSplit, error) {
	if fee.IsNegative() {
		return ConsultationSplit{}, ErrNegativeAmount
	}

	totalCents := fee.Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	split := ConsultationSplit{
		TotalCents:  totalCents,
		PlatformFee: PlatformFee(totalCents),
	}
	split.Remaining = totalCents - split.PlatformFee

	if hasClinician {
		split.ClinicianShare = RoundHalfUp(float64(split.Remaining) * ClinicianSharePercent)
		split.BusinessShare = split.Remaining - split.ClinicianShare
	} else {
		split.BusinessShare = split.Remaining
	}

	return split, nil
}
