package fees

// SplitResult holds the two value records produced by splitting an entry:
// the part that joins a payout and the remainder the business keeps
type SplitResult struct {
	Remainder Amounts
	Part      Amounts
}

// Split divides an entry's amounts so that the part's net is exactly take and
// the remainder holds everything else. Gross, platform fee and clinician fee
// are apportioned by the take/net ratio using floor division; the part's
// processing fee is derived so the part balances exactly. If the derived
// processing fee falls outside [0, entry processing fee] the split is unsafe
// and the whole operation must abort - money is never dropped silently.
func Split(entry Amounts, take int64) (SplitResult, error) {
	if take <= 0 || take >= entry.Net {
		return SplitResult{}, ErrInvalidTake
	}

	// Floor division: a*take/net with non-negative operands truncates toward zero
	partGross := entry.Gross * take / entry.Net
	partPlatform := entry.PlatformFee * take / entry.Net
	partProcessing := partGross - partPlatform - take

	if partProcessing < 0 || partProcessing > entry.ProcessingFee {
		return SplitResult{}, ErrUnsafeSplit
	}

	part := Amounts{
		Gross:         partGross,
		PlatformFee:   partPlatform,
		ProcessingFee: partProcessing,
		Net:           take,
	}
	remainder := Amounts{
		Gross:         entry.Gross - partGross,
		PlatformFee:   entry.PlatformFee - partPlatform,
		ProcessingFee: entry.ProcessingFee - partProcessing,
		Net:           entry.Net - take,
	}

	if entry.ClinicianFee != nil {
		partClinician := *entry.ClinicianFee * take / entry.Net
		remClinician := *entry.ClinicianFee - partClinician
		part.ClinicianFee = &partClinician
		remainder.ClinicianFee = &remClinician
	}

	return SplitResult{Remainder: remainder, Part: part}, nil
}
