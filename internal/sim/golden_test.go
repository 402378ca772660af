package sim

import (
	"bytes"
	"context"
	"strconv"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"

	"github.com/gcrsim/worldsim/internal/model"
	"github.com/gcrsim/worldsim/internal/scenario"
)

// Golden regression coverage for the gcr-v1 equation set. The fixtures
// pin every sample of every default output at full precision; any change
// to an equation, constant, or table shows up as a fixture diff and must
// come with a model version bump.
func TestGolden_GCRTrajectories(t *testing.T) {
	scenarios := []struct {
		name string
		s    scenario.Scenario
	}{
		{"baseline", scenario.Scenario{}},
		{"price_250", scenario.Scenario{model.XCCPriceParam: 250}},
		{"price_1000", scenario.Scenario{model.XCCPriceParam: 1000}},
	}

	for _, tc := range scenarios {
		t.Run(tc.name, func(t *testing.T) {
			eng, err := NewGCR(model.GCRSpan{})
			require.NoError(t, err)

			res, err := eng.Run(context.Background(), tc.s)
			require.NoError(t, err)

			g := goldie.New(t,
				goldie.WithFixtureDir("testdata/golden"),
				goldie.WithNameSuffix(".golden"),
			)
			g.Assert(t, tc.name, renderTrace(t, res))
		})
	}
}

// renderTrace formats a result as CSV with full-precision values: times
// to one decimal (the grid is half-year steps), values in scientific
// notation with 17 fractional digits, enough to round-trip any float64.
func renderTrace(t *testing.T, res *RunResult) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString("time")
	for _, name := range model.GCRDefaultOutputs {
		buf.WriteByte(',')
		buf.WriteString(name)
	}
	buf.WriteByte('\n')

	times := res.Times()
	series := make([][]float64, len(model.GCRDefaultOutputs))
	for i, name := range model.GCRDefaultOutputs {
		vals, err := res.Series(name)
		require.NoError(t, err)
		series[i] = vals
	}

	for i, tv := range times {
		buf.WriteString(strconv.FormatFloat(tv, 'f', 1, 64))
		for _, vals := range series {
			buf.WriteByte(',')
			buf.WriteString(strconv.FormatFloat(vals[i], 'e', 17, 64))
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
