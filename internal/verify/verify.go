package verify

import (
	"fmt"
	"math"

	"github.com/swantron/opmix/internal/workload"
	"go.uber.org/zap"
)

// DefaultMaxMismatches caps how many mismatches a Report keeps per buffer
const DefaultMaxMismatches = 20

// Buffer names used in mismatches
const (
	BufferA = "arr_a"
	BufferB = "arr_b"
)

// Mismatch describes a single element that does not hold its expected value
type Mismatch struct {
	Buffer string
	Index  int
	Row    int
	Column int
	Want   int32
	Got    int32
}

// BufferResult contains check results for one buffer
type BufferResult struct {
	Name     string
	Elements int
	// Mismatched is the total count, even when Mismatches is truncated
	Mismatched int
	// Mismatches lists at most the configured number of offending elements
	Mismatches []Mismatch
}

// FloatResult describes the scalar after the float phase
type FloatResult struct {
	X float32
	// Deviation is |X - 1|; +Inf when X saturated
	Deviation float64
	// Saturated is true when X ended as Inf or NaN
	Saturated bool
}

// Report contains the results of checking a state after a run
type Report struct {
	Params workload.Params
	A      *BufferResult
	B      *BufferResult
	Float  FloatResult
}

// Options controls checking
type Options struct {
	// MaxMismatches caps recorded mismatches per buffer; zero means the default
	MaxMismatches int
	Logger        *zap.Logger
}

// Check compares s against the values a completed run must produce
func Check(s *workload.State, opts Options) (*Report, error) {
	if s == nil {
		return nil, fmt.Errorf("state cannot be nil")
	}
	p := s.Params
	if len(s.ArrA) != p.Elements() || len(s.ArrB) != p.Elements() {
		return nil, fmt.Errorf("buffer length mismatch: want %d elements, got %d and %d",
			p.Elements(), len(s.ArrA), len(s.ArrB))
	}

	limit := opts.MaxMismatches
	if limit <= 0 {
		limit = DefaultMaxMismatches
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	report := &Report{
		Params: p,
		A:      checkBuffer(BufferA, s.ArrA, p, limit, func(int, int) int32 { return int32(p.Passes) }),
		B: checkBuffer(BufferB, s.ArrB, p, limit, func(row, col int) int32 {
			return int32(row) * int32(col) / 3
		}),
		Float: checkFloat(s.X),
	}

	logger.Debug("verification complete",
		zap.Int("arr_a_mismatched", report.A.Mismatched),
		zap.Int("arr_b_mismatched", report.B.Mismatched),
		zap.Float64("deviation", report.Float.Deviation),
		zap.Bool("saturated", report.Float.Saturated))

	return report, nil
}

// checkBuffer checks every element of values against want(row, column)
func checkBuffer(name string, values []int32, p workload.Params, limit int, want func(row, col int) int32) *BufferResult {
	result := &BufferResult{
		Name:       name,
		Elements:   len(values),
		Mismatches: make([]Mismatch, 0),
	}

	n := p.N()
	for idx, got := range values {
		row, col := idx/n, idx%n
		expected := want(row, col)
		if got == expected {
			continue
		}
		result.Mismatched++
		if len(result.Mismatches) < limit {
			result.Mismatches = append(result.Mismatches, Mismatch{
				Buffer: name,
				Index:  idx,
				Row:    row,
				Column: col,
				Want:   expected,
				Got:    got,
			})
		}
	}

	return result
}

func checkFloat(x float32) FloatResult {
	f := float64(x)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return FloatResult{X: x, Deviation: math.Inf(1), Saturated: true}
	}
	return FloatResult{X: x, Deviation: math.Abs(f - 1)}
}

// Passed returns true when both buffers hold their expected values
func (r *Report) Passed() bool {
	return r.A.Mismatched == 0 && r.B.Mismatched == 0
}

// WithinTolerance checks the float deviation against tol.
// A saturated scalar never meets a finite tolerance.
func (r *Report) WithinTolerance(tol float64) bool {
	return r.Float.Deviation <= tol
}

// Mismatched returns the mismatch count across both buffers
func (r *Report) Mismatched() int {
	return r.A.Mismatched + r.B.Mismatched
}
