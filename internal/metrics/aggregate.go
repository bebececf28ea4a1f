package metrics

import (
	"fmt"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// DefaultNumCorruptions is the number of corruption rows per model.
const DefaultNumCorruptions = 16

// NumSeverityColumns counts the clean baseline plus severities 1-5.
const NumSeverityColumns = 6

// Columns holds parallel per-row sequences, grouped contiguously by model.
type Columns struct {
	Models      []string
	Corruptions []string
	// Severity[s][i] is row i's value at severity s (0 = clean baseline).
	Severity [NumSeverityColumns][]float64
}

// MVCEResult holds one mVCE and RmVCE score per model, in block order.
type MVCEResult struct {
	Band   Band      `json:"severity"`
	Models []string  `json:"models"`
	MVCE   []float64 `json:"mvce"`
	RMVCE  []float64 `json:"rmvce"`
}

// MCEIResult holds one mCEI score per model, in block order.
type MCEIResult struct {
	Band   Band      `json:"severity"`
	Models []string  `json:"models"`
	MCEI   []float64 `json:"mcei"`
}

// ComputeMVCE computes mVCE and RmVCE for every model block. Severity
// values are accuracies in [0, 1]; each is converted to a percentage error
// rounded to four decimals before averaging.
func ComputeMVCE(cols Columns, numCorruptions int, band Band) (*MVCEResult, error) {
	rows, err := cols.validate(numCorruptions)
	if err != nil {
		return nil, err
	}
	sevs, err := band.Severities()
	if err != nil {
		return nil, err
	}

	var errs [NumSeverityColumns][]float64
	for s := range errs {
		errs[s] = make([]float64, rows)
		for i, acc := range cols.Severity[s] {
			errs[s][i] = round(100-acc*100, 4)
		}
	}

	numModels := rows / numCorruptions
	res := &MVCEResult{
		Band:   band,
		Models: make([]string, 0, numModels),
		MVCE:   make([]float64, numModels),
		RMVCE:  make([]float64, numModels),
	}

	abs := make([]float64, 0, len(sevs)*numCorruptions)
	rel := make([]float64, 0, len(sevs)*numCorruptions)
	for m := 0; m < numModels; m++ {
		start, end := m*numCorruptions, (m+1)*numCorruptions
		res.Models = append(res.Models, cols.Models[start])

		abs, rel = abs[:0], rel[:0]
		for _, s := range sevs {
			for i := start; i < end; i++ {
				abs = append(abs, errs[s][i])
				rel = append(rel, errs[s][i]-errs[0][i])
			}
		}
		res.MVCE[m] = round(stat.Mean(abs, nil), 2)
		res.RMVCE[m] = round(stat.Mean(rel, nil), 2)
	}
	return res, nil
}

// ComputeMCEI computes mCEI for every model block. Severity values are
// average cosine similarities; severity 0 is validated but not used.
func ComputeMCEI(cols Columns, numCorruptions int, band Band) (*MCEIResult, error) {
	rows, err := cols.validate(numCorruptions)
	if err != nil {
		return nil, err
	}
	sevs, err := band.Severities()
	if err != nil {
		return nil, err
	}

	numModels := rows / numCorruptions
	res := &MCEIResult{
		Band:   band,
		Models: make([]string, 0, numModels),
		MCEI:   make([]float64, numModels),
	}

	vals := make([]float64, 0, len(sevs)*numCorruptions)
	for m := 0; m < numModels; m++ {
		start, end := m*numCorruptions, (m+1)*numCorruptions
		res.Models = append(res.Models, cols.Models[start])

		vals = vals[:0]
		for _, s := range sevs {
			vals = append(vals, cols.Severity[s][start:end]...)
		}
		res.MCEI[m] = round(stat.Mean(vals, nil)*100, 2)
	}
	return res, nil
}

// validate checks the grouping precondition and returns the row count.
func (c Columns) validate(numCorruptions int) (int, error) {
	if numCorruptions <= 0 {
		return 0, &PreconditionError{
			Sequence:  "num_corruptions",
			GroupSize: numCorruptions,
			Message:   "group size must be positive",
		}
	}

	lengths := []struct {
		name string
		n    int
	}{
		{"model_names", len(c.Models)},
		{"corruption_names", len(c.Corruptions)},
	}
	for s, col := range c.Severity {
		lengths = append(lengths, struct {
			name string
			n    int
		}{fmt.Sprintf("severity_%d", s), len(col)})
	}

	for _, l := range lengths {
		if l.n%numCorruptions != 0 {
			return 0, &PreconditionError{
				Sequence:  l.name,
				Length:    l.n,
				GroupSize: numCorruptions,
				Message:   "length is not a multiple of the number of corruptions",
			}
		}
	}
	rows := lengths[0].n
	for _, l := range lengths[1:] {
		if l.n != rows {
			return 0, &PreconditionError{
				Sequence:  l.name,
				Length:    l.n,
				GroupSize: numCorruptions,
				Message:   fmt.Sprintf("length differs from model_names (%d)", rows),
			}
		}
	}
	return rows, nil
}

// round rounds x to places decimals using the exact binary value of x with
// ties to even, then normalises negative zero.
func round(x float64, places int) float64 {
	v, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', places, 64), 64)
	if err != nil || v == 0 {
		return 0
	}
	return v
}
