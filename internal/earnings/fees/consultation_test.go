package fees

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSplitConsultationFee_WithClinician(t *testing.T) {
	// $50.00 consultation -> platform 500, remaining 4500, clinician 3150, business 1350
	split, err := SplitConsultationFee(decimal.NewFromFloat(50.00), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if split.TotalCents != 5000 {
		t.Errorf("expected 5000 cents, got %d", split.TotalCents)
	}
	if split.PlatformFee != 500 {
		t.Errorf("expected platform fee 500, got %d", split.PlatformFee)
	}
	if split.ClinicianShare != 3150 {
		t.Errorf("expected clinician share 3150, got %d", split.ClinicianShare)
	}
	if split.BusinessShare != 1350 {
		t.Errorf("expected business share 1350, got %d", split.BusinessShare)
	}
	if split.ClinicianShare+split.BusinessShare != split.Remaining {
		t.Errorf("shares do not sum to remaining")
	}
}

func TestSplitConsultationFee_WithoutClinician(t *testing.T) {
	split, err := SplitConsultationFee(decimal.NewFromFloat(50.00), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if split.ClinicianShare != 0 {
		t.Errorf("expected no clinician share, got %d", split.ClinicianShare)
	}
	if split.BusinessShare != 4500 {
		t.Errorf("expected business share 4500, got %d", split.BusinessShare)
	}
}

func TestSplitConsultationFee_OddCents(t *testing.T) {
	// $33.33 -> 3333 cents, platform round(333.3)=333, remaining 3000,
	// clinician round(2100)=2100, business 900
	split, err := SplitConsultationFee(decimal.NewFromFloat(33.33), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if split.PlatformFee != 333 {
		t.Errorf("expected platform fee 333, got %d", split.PlatformFee)
	}
	if split.PlatformFee+split.ClinicianShare+split.BusinessShare != split.TotalCents {
		t.Errorf("split does not conserve the total fee")
	}
}

func TestSplitConsultationFee_Negative(t *testing.T) {
	if _, err := SplitConsultationFee(decimal.NewFromFloat(-1.00), true); err != ErrNegativeAmount {
		t.Errorf("expected ErrNegativeAmount, got %v", err)
	}
}
