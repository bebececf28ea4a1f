package metrics

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uniformColumns builds rows for one model where every row carries the
// same six severity values.
func uniformColumns(model string, rows int, values [NumSeverityColumns]float64) Columns {
	var c Columns
	for i := 0; i < rows; i++ {
		c.Models = append(c.Models, model)
		c.Corruptions = append(c.Corruptions, "corruption")
		for s := range c.Severity {
			c.Severity[s] = append(c.Severity[s], values[s])
		}
	}
	return c
}

func concat(cols ...Columns) Columns {
	var out Columns
	for _, c := range cols {
		out.Models = append(out.Models, c.Models...)
		out.Corruptions = append(out.Corruptions, c.Corruptions...)
		for s := range out.Severity {
			out.Severity[s] = append(out.Severity[s], c.Severity[s]...)
		}
	}
	return out
}

func TestComputeMVCEConstantAccuracy(t *testing.T) {
	cols := uniformColumns("r100", 3, [6]float64{0.9, 0.9, 0.9, 0.9, 0.9, 0.9})

	res, err := ComputeMVCE(cols, 3, BandOverall)
	require.NoError(t, err)
	assert.Equal(t, []string{"r100"}, res.Models)
	assert.Equal(t, []float64{10.0}, res.MVCE)
	assert.Equal(t, []float64{0.0}, res.RMVCE)
}

func TestComputeMVCEDegradedAccuracy(t *testing.T) {
	cols := uniformColumns("r100", 3, [6]float64{0.9, 0.8, 0.8, 0.8, 0.8, 0.8})

	for _, band := range Bands() {
		t.Run(string(band), func(t *testing.T) {
			res, err := ComputeMVCE(cols, 3, band)
			require.NoError(t, err)
			assert.Equal(t, band, res.Band)
			assert.Equal(t, []float64{20.0}, res.MVCE)
			assert.Equal(t, []float64{10.0}, res.RMVCE)
		})
	}
}

func TestComputeMVCEBandsDiffer(t *testing.T) {
	cols := uniformColumns("r50", 2, [6]float64{0.9, 0.85, 0.8, 0.75, 0.7, 0.6})

	tests := []struct {
		band      Band
		mvce, rel float64
	}{
		{BandOverall, 26.0, 16.0},
		{BandLow, 20.0, 10.0},
		{BandHigh, 35.0, 25.0},
	}
	for _, tt := range tests {
		res, err := ComputeMVCE(cols, 2, tt.band)
		require.NoError(t, err)
		assert.Equal(t, tt.mvce, res.MVCE[0], "band %s", tt.band)
		assert.Equal(t, tt.rel, res.RMVCE[0], "band %s", tt.band)
	}
}

func TestComputeMVCEMultipleModelsInBlockOrder(t *testing.T) {
	cols := concat(
		uniformColumns("r100", 2, [6]float64{0.9, 0.8, 0.8, 0.8, 0.8, 0.8}),
		uniformColumns("r18", 2, [6]float64{0.9, 0.9, 0.9, 0.9, 0.9, 0.9}),
	)

	res, err := ComputeMVCE(cols, 2, BandOverall)
	require.NoError(t, err)
	assert.Equal(t, []string{"r100", "r18"}, res.Models)
	assert.Equal(t, []float64{20.0, 10.0}, res.MVCE)
	assert.Equal(t, []float64{10.0, 0.0}, res.RMVCE)
}

func TestComputeMVCERoundsToTwoDecimals(t *testing.T) {
	// Errors 7.4, 7.7, 9.0 for severity 1 across three rows.
	var c Columns
	for i, acc := range []float64{0.926, 0.923, 0.91} {
		c.Models = append(c.Models, "r100")
		c.Corruptions = append(c.Corruptions, []string{"a", "b", "c"}[i])
		c.Severity[0] = append(c.Severity[0], 0.926)
		for s := 1; s < NumSeverityColumns; s++ {
			c.Severity[s] = append(c.Severity[s], acc)
		}
	}

	res, err := ComputeMVCE(c, 3, BandOverall)
	require.NoError(t, err)
	assert.Equal(t, 8.03, res.MVCE[0])
	assert.Equal(t, 0.63, res.RMVCE[0])
}

func TestComputeMCEIConstantSimilarity(t *testing.T) {
	cols := uniformColumns("r100", 3, [6]float64{1, 0.95, 0.95, 0.95, 0.95, 0.95})

	for _, band := range Bands() {
		res, err := ComputeMCEI(cols, 3, band)
		require.NoError(t, err)
		assert.Equal(t, []string{"r100"}, res.Models)
		assert.Equal(t, []float64{95.0}, res.MCEI, "band %s", band)
	}
}

func TestComputeMCEIBands(t *testing.T) {
	cols := uniformColumns("r50", 2, [6]float64{1, 0.9, 0.8, 0.7, 0.6, 0.5})

	overall, err := ComputeMCEI(cols, 2, BandOverall)
	require.NoError(t, err)
	low, err := ComputeMCEI(cols, 2, BandLow)
	require.NoError(t, err)
	high, err := ComputeMCEI(cols, 2, BandHigh)
	require.NoError(t, err)

	assert.Equal(t, 70.0, overall.MCEI[0])
	assert.Equal(t, 80.0, low.MCEI[0])
	assert.Equal(t, 55.0, high.MCEI[0])
}

func TestPreconditionNotMultiple(t *testing.T) {
	cols := uniformColumns("r100", 15, [6]float64{0.9, 0.9, 0.9, 0.9, 0.9, 0.9})

	_, err := ComputeMVCE(cols, DefaultNumCorruptions, BandOverall)
	require.Error(t, err)
	assert.True(t, IsPreconditionError(err))

	_, err = ComputeMCEI(cols, DefaultNumCorruptions, BandOverall)
	require.Error(t, err)
	assert.True(t, IsPreconditionError(err))

	var pe *PreconditionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "model_names", pe.Sequence)
	assert.Equal(t, 15, pe.Length)
	assert.Equal(t, 16, pe.GroupSize)
}

func TestPreconditionSingleShortSequence(t *testing.T) {
	cols := uniformColumns("r100", 4, [6]float64{0.9, 0.9, 0.9, 0.9, 0.9, 0.9})
	cols.Severity[3] = cols.Severity[3][:3]

	_, err := ComputeMVCE(cols, 2, BandOverall)
	var pe *PreconditionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "severity_3", pe.Sequence)
}

func TestPreconditionMismatchedLengths(t *testing.T) {
	cols := uniformColumns("r100", 4, [6]float64{0.9, 0.9, 0.9, 0.9, 0.9, 0.9})
	cols.Corruptions = cols.Corruptions[:2]

	_, err := ComputeMCEI(cols, 2, BandOverall)
	var pe *PreconditionError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "corruption_names", pe.Sequence)
}

func TestPreconditionNonPositiveGroup(t *testing.T) {
	cols := uniformColumns("r100", 2, [6]float64{})
	_, err := ComputeMVCE(cols, 0, BandOverall)
	assert.True(t, IsPreconditionError(err))
}

func TestUnknownBand(t *testing.T) {
	cols := uniformColumns("r100", 2, [6]float64{0.9, 0.9, 0.9, 0.9, 0.9, 0.9})

	_, err := ComputeMVCE(cols, 2, Band("medium"))
	require.ErrorIs(t, err, ErrUnknownBand)

	_, err = ComputeMCEI(cols, 2, Band(""))
	require.ErrorIs(t, err, ErrUnknownBand)
}

func TestEmptyInput(t *testing.T) {
	res, err := ComputeMVCE(Columns{}, DefaultNumCorruptions, BandOverall)
	require.NoError(t, err)
	assert.Empty(t, res.Models)
	assert.Empty(t, res.MVCE)
}

func TestParseBand(t *testing.T) {
	for _, b := range Bands() {
		got, err := ParseBand(string(b))
		require.NoError(t, err)
		assert.Equal(t, b, got)
	}
	_, err := ParseBand("Overall")
	require.ErrorIs(t, err, ErrUnknownBand)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 0.12, round(0.125, 2)) // exact tie goes to even
	assert.Equal(t, 2.67, round(2.675, 2)) // 2.675 is stored just below the tie
	assert.Equal(t, 10.0, round(100-0.9*100, 4))
	assert.Equal(t, 0.0, round(-0.001, 2))
}

func loadColumns(t *testing.T, path string) Columns {
	t.Helper()
	table, err := LoadCSV(path)
	require.NoError(t, err)
	require.Len(t, table.Rows, DefaultNumCorruptions)
	return table.Columns()
}

func TestComputeMVCEPublishedR100(t *testing.T) {
	cols := loadColumns(t, filepath.Join("testdata", "r100_accuracy.csv"))

	tests := []struct {
		band  Band
		mvce  float64
		rmvce float64
	}{
		{BandOverall, 10.01, 2.61},
		{BandLow, 7.76, 0.36},
		{BandHigh, 13.39, 5.99},
	}
	for _, tt := range tests {
		t.Run(string(tt.band), func(t *testing.T) {
			res, err := ComputeMVCE(cols, DefaultNumCorruptions, tt.band)
			require.NoError(t, err)
			assert.Equal(t, []string{"r100"}, res.Models)
			assert.Equal(t, []float64{tt.mvce}, res.MVCE)
			assert.Equal(t, []float64{tt.rmvce}, res.RMVCE)
		})
	}
}

func TestComputeMCEIPublishedR100(t *testing.T) {
	cols := loadColumns(t, filepath.Join("testdata", "r100_similarity.csv"))

	tests := []struct {
		band Band
		mcei float64
	}{
		{BandOverall, 83.14},
		{BandLow, 90.68},
		{BandHigh, 71.84},
	}
	for _, tt := range tests {
		t.Run(string(tt.band), func(t *testing.T) {
			res, err := ComputeMCEI(cols, DefaultNumCorruptions, tt.band)
			require.NoError(t, err)
			assert.Equal(t, []float64{tt.mcei}, res.MCEI)
		})
	}
}
