package season

import (
	"errors"
	"testing"
)

func TestYearRange(t *testing.T) {
	tests := []struct {
		name    string
		rng     YearRange
		wantLen int
		wantErr bool
	}{
		{name: "full history", rng: YearRange{1950, 2023}, wantLen: 74},
		{name: "single year", rng: YearRange{2021, 2021}, wantLen: 1},
		{name: "inverted", rng: YearRange{2024, 2020}, wantLen: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rng.Validate()
			if tt.wantErr != (err != nil) {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidRange) {
				t.Errorf("error %v does not wrap ErrInvalidRange", err)
			}
			years := tt.rng.Years()
			if len(years) != tt.wantLen || tt.rng.Len() != tt.wantLen {
				t.Fatalf("Years() len = %d, Len() = %d, want %d", len(years), tt.rng.Len(), tt.wantLen)
			}
			for i := 1; i < len(years); i++ {
				if years[i] != years[i-1]+1 {
					t.Fatalf("years not increasing: %v", years)
				}
			}
		})
	}
}

func TestYearRange_String(t *testing.T) {
	r := YearRange{2000, 2010}
	if r.String() != "2000-2010" {
		t.Errorf("String() = %q", r.String())
	}
}
