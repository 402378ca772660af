package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunResult_Valid(t *testing.T) {
	r, err := NewRunResult(
		[]float64{0, 1, 2},
		map[string][]float64{"a": {10, 11, 12}, "b": {20, 21, 22}},
	)
	require.NoError(t, err)

	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []string{"a", "b"}, r.Names())
	assert.Equal(t, []float64{0, 1, 2}, r.Times())

	a, err := r.Series("a")
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 11, 12}, a)

	final, err := r.Final("b")
	require.NoError(t, err)
	assert.Equal(t, 22.0, final)
}

func TestNewRunResult_Errors(t *testing.T) {
	_, err := NewRunResult(nil, map[string][]float64{"a": {}})
	assert.Error(t, err)

	_, err = NewRunResult([]float64{0}, nil)
	assert.Error(t, err)

	_, err = NewRunResult([]float64{0, 1}, map[string][]float64{"a": {1}})
	assert.Error(t, err)
}

func TestRunResult_UnknownSeries(t *testing.T) {
	r, err := NewRunResult([]float64{0}, map[string][]float64{"a": {1}})
	require.NoError(t, err)

	_, err = r.Series("missing")
	assert.True(t, IsUnknownSeries(err))

	var ue *UnknownSeriesError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "missing", ue.Name)
	assert.Equal(t, []string{"a"}, ue.Tracked)

	_, err = r.Final("missing")
	assert.True(t, IsUnknownSeries(err))
}

// Accessors hand out copies: callers cannot corrupt a shared result.
func TestRunResult_AccessorsAreDefensive(t *testing.T) {
	r, err := NewRunResult([]float64{0, 1}, map[string][]float64{"a": {5, 6}})
	require.NoError(t, err)

	r.Times()[0] = 99
	assert.Equal(t, []float64{0, 1}, r.Times())

	a, err := r.Series("a")
	require.NoError(t, err)
	a[1] = 99
	a2, err := r.Series("a")
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 6}, a2)
}

func TestNewRunResult_CopiesInput(t *testing.T) {
	times := []float64{0, 1}
	series := map[string][]float64{"a": {5, 6}}
	r, err := NewRunResult(times, series)
	require.NoError(t, err)

	times[0] = 99
	series["a"][0] = 99
	assert.Equal(t, []float64{0, 1}, r.Times())
	got, err := r.Series("a")
	require.NoError(t, err)
	assert.Equal(t, []float64{5, 6}, got)
}
