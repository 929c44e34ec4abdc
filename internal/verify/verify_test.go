package verify

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swantron/opmix/internal/workload"
)

func runState(t *testing.T, p workload.Params) *workload.State {
	t.Helper()
	s, _, err := workload.Run(p)
	require.NoError(t, err)
	return s
}

func TestCheckDefaultRun(t *testing.T) {
	s := runState(t, workload.DefaultParams())

	report, err := Check(s, Options{})
	require.NoError(t, err)

	assert.True(t, report.Passed())
	assert.Equal(t, 0, report.Mismatched())
	assert.Equal(t, 131072, report.A.Elements)
	assert.Equal(t, 131072, report.B.Elements)
	assert.True(t, report.Float.Saturated)
	assert.True(t, math.IsInf(report.Float.Deviation, 1))
	assert.False(t, report.WithinTolerance(1e-3))
}

func TestCheckSmallRunWithinTolerance(t *testing.T) {
	s := runState(t, workload.Params{Size: 64, Rows: 2, Passes: 2, Factor: 1.1})

	report, err := Check(s, Options{})
	require.NoError(t, err)

	assert.True(t, report.Passed())
	assert.False(t, report.Float.Saturated)
	assert.True(t, report.WithinTolerance(1e-5))
	assert.Less(t, report.Float.Deviation, 1e-5)
}

func TestCheckBeforeRun(t *testing.T) {
	p := workload.Params{Size: 16, Rows: 2, Passes: 2, Factor: 2}
	s, err := workload.New(p)
	require.NoError(t, err)

	report, err := Check(s, Options{})
	require.NoError(t, err)

	assert.False(t, report.Passed())
	// Every ArrA element is 0 instead of 2
	assert.Equal(t, 8, report.A.Mismatched)
	// ArrB row 1 has non-zero expectations at columns 3
	want := []Mismatch{{Buffer: BufferB, Index: 7, Row: 1, Column: 3, Want: 1, Got: 0}}
	if diff := cmp.Diff(want, report.B.Mismatches); diff != "" {
		t.Errorf("arr_b mismatches (-want +got):\n%s", diff)
	}
}

func TestCheckMismatchLimit(t *testing.T) {
	p := workload.Params{Size: 64, Rows: 2, Passes: 2, Factor: 2}
	s, err := workload.New(p)
	require.NoError(t, err)

	report, err := Check(s, Options{MaxMismatches: 3})
	require.NoError(t, err)

	assert.Equal(t, 32, report.A.Mismatched)
	assert.Len(t, report.A.Mismatches, 3)
	assert.Equal(t, 0, report.A.Mismatches[0].Index)
	assert.Equal(t, 2, report.A.Mismatches[2].Index)
}

func TestCheckCorruptedElement(t *testing.T) {
	s := runState(t, workload.DefaultParams())
	n := s.Params.N()
	s.ArrB[9+n] = 99

	report, err := Check(s, Options{})
	require.NoError(t, err)

	assert.False(t, report.Passed())
	assert.Equal(t, 0, report.A.Mismatched)
	require.Len(t, report.B.Mismatches, 1)
	got := report.B.Mismatches[0]
	assert.Equal(t, 1, got.Row)
	assert.Equal(t, 9, got.Column)
	assert.Equal(t, int32(3), got.Want)
	assert.Equal(t, int32(99), got.Got)
}

func TestCheckErrors(t *testing.T) {
	_, err := Check(nil, Options{})
	assert.Error(t, err)

	s, err := workload.New(workload.Params{Size: 16, Rows: 1, Passes: 1, Factor: 2})
	require.NoError(t, err)
	s.ArrA = s.ArrA[:2]
	_, err = Check(s, Options{})
	assert.Error(t, err)
}

func TestCheckFloat(t *testing.T) {
	tests := []struct {
		name      string
		x         float32
		deviation float64
		saturated bool
	}{
		{"exact", 1, 0, false},
		{"below", 0.5, 0.5, false},
		{"inf", float32(math.Inf(1)), math.Inf(1), true},
		{"nan", float32(math.NaN()), math.Inf(1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := checkFloat(tt.x)
			assert.Equal(t, tt.deviation, got.Deviation)
			assert.Equal(t, tt.saturated, got.Saturated)
		})
	}
}
