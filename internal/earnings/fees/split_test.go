package fees

import "testing"

func TestSplit_ConservesGrossAndNet(t *testing.T) {
	entry := Amounts{Gross: 10000, PlatformFee: 1000, ProcessingFee: 309, Net: 8691}

	result, err := Split(entry, 4000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Part.Net != 4000 {
		t.Errorf("expected part net 4000, got %d", result.Part.Net)
	}
	if result.Remainder.Net+result.Part.Net != entry.Net {
		t.Errorf("net not conserved: %d + %d != %d", result.Remainder.Net, result.Part.Net, entry.Net)
	}
	if result.Remainder.Gross+result.Part.Gross != entry.Gross {
		t.Errorf("gross not conserved: %d + %d != %d", result.Remainder.Gross, result.Part.Gross, entry.Gross)
	}
	if result.Remainder.PlatformFee+result.Part.PlatformFee != entry.PlatformFee {
		t.Errorf("platform fee not conserved")
	}
	if result.Remainder.ProcessingFee+result.Part.ProcessingFee != entry.ProcessingFee {
		t.Errorf("processing fee not conserved")
	}

	// Both halves must balance internally
	if result.Part.Net != result.Part.Gross-result.Part.PlatformFee-result.Part.ProcessingFee {
		t.Errorf("part does not balance: %+v", result.Part)
	}
	if result.Remainder.Net != result.Remainder.Gross-result.Remainder.PlatformFee-result.Remainder.ProcessingFee {
		t.Errorf("remainder does not balance: %+v", result.Remainder)
	}
}

func TestSplit_ClinicianFee(t *testing.T) {
	clinicianFee := int64(3000)
	entry := Amounts{Gross: 10000, PlatformFee: 1000, ProcessingFee: 309, Net: 8691, ClinicianFee: &clinicianFee}

	result, err := Split(entry, 4000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Part.ClinicianFee == nil || result.Remainder.ClinicianFee == nil {
		t.Fatal("expected clinician fee on both halves")
	}
	if *result.Part.ClinicianFee+*result.Remainder.ClinicianFee != clinicianFee {
		t.Errorf("clinician fee not conserved: %d + %d != %d",
			*result.Part.ClinicianFee, *result.Remainder.ClinicianFee, clinicianFee)
	}
}

func TestSplit_InvalidTake(t *testing.T) {
	entry := Amounts{Gross: 1000, PlatformFee: 100, ProcessingFee: 50, Net: 850}

	tests := []struct {
		name string
		take int64
	}{
		{"zero", 0},
		{"negative", -100},
		{"equal to net", 850},
		{"above net", 900},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Split(entry, tt.take); err != ErrInvalidTake {
				t.Errorf("expected ErrInvalidTake, got %v", err)
			}
		})
	}
}

func TestSplit_UnsafeProcessingFee(t *testing.T) {
	// A record whose platform fee dwarfs its gross produces a negative derived
	// processing fee; the split must refuse rather than drop money
	entry := Amounts{Gross: 10, PlatformFee: 90, ProcessingFee: 0, Net: 100}

	if _, err := Split(entry, 50); err != ErrUnsafeSplit {
		t.Errorf("expected ErrUnsafeSplit, got %v", err)
	}
}
