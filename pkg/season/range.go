package season

import (
	"errors"
	"fmt"
)

// ErrInvalidRange is returned for a range whose start lies after its end.
var ErrInvalidRange = errors.New("invalid year range")

// YearRange is a closed interval of seasons.
type YearRange struct {
	Start int
	End   int
}

// Validate checks that Start <= End.
func (r YearRange) Validate() error {
	if r.Start > r.End {
		return fmt.Errorf("%w: start %d after end %d", ErrInvalidRange, r.Start, r.End)
	}
	return nil
}

// Len is the number of seasons in the range.
func (r YearRange) Len() int {
	if r.Start > r.End {
		return 0
	}
	return r.End - r.Start + 1
}

// Years lists every season in the range in increasing order.
func (r YearRange) Years() []int {
	years := make([]int, 0, r.Len())
	for y := r.Start; y <= r.End; y++ {
		years = append(years, y)
	}
	return years
}

func (r YearRange) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}
