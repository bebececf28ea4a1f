package metrics

import "fmt"

// Band selects which severities a score averages over.
type Band string

const (
	BandOverall Band = "overall" // severities 1-5
	BandLow     Band = "low"     // severities 1-3
	BandHigh    Band = "high"    // severities 4-5
)

// Bands lists the valid bands.
func Bands() []Band {
	return []Band{BandOverall, BandLow, BandHigh}
}

// ParseBand converts s to a Band.
func ParseBand(s string) (Band, error) {
	b := Band(s)
	if _, err := b.Severities(); err != nil {
		return "", err
	}
	return b, nil
}

// Severities returns the severity columns the band covers.
func (b Band) Severities() ([]int, error) {
	switch b {
	case BandOverall:
		return []int{1, 2, 3, 4, 5}, nil
	case BandLow:
		return []int{1, 2, 3}, nil
	case BandHigh:
		return []int{4, 5}, nil
	default:
		return nil, fmt.Errorf("%w: %q (valid: overall, low, high)", ErrUnknownBand, string(b))
	}
}
