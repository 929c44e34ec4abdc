package workload

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
)

// Default workload dimensions
const (
	DefaultSize   = 262144
	DefaultRows   = 2
	DefaultPasses = 2
	// DefaultFactor is the single-precision constant used by the float phase
	DefaultFactor float32 = 1.1
)

// ErrInvalidParams is returned when workload parameters fail validation
var ErrInvalidParams = errors.New("invalid workload parameters")

// Params describes the shape of the workload
type Params struct {
	// Size is the base size; each row spans Size/4 elements
	Size int `json:"size" yaml:"size"`
	// Rows is the number of rows in each buffer
	Rows int `json:"rows" yaml:"rows"`
	// Passes is how many times the accumulate phase revisits each row
	Passes int `json:"passes" yaml:"passes"`
	// Factor is the multiplier/divisor of the float phase
	Factor float32 `json:"factor" yaml:"factor"`
}

// DefaultParams returns the canonical workload shape
func DefaultParams() Params {
	return Params{
		Size:   DefaultSize,
		Rows:   DefaultRows,
		Passes: DefaultPasses,
		Factor: DefaultFactor,
	}
}

// N returns the row length, which is also the float phase iteration count
func (p Params) N() int {
	return p.Size / 4
}

// Elements returns the number of elements in each buffer
func (p Params) Elements() int {
	return p.N() * p.Rows
}

// Validate checks that the params describe a workload that can run
func (p Params) Validate() error {
	if p.Size <= 0 || p.Size%4 != 0 {
		return fmt.Errorf("%w: size must be a positive multiple of 4, got %d", ErrInvalidParams, p.Size)
	}
	if p.Rows < 1 {
		return fmt.Errorf("%w: rows must be at least 1, got %d", ErrInvalidParams, p.Rows)
	}
	if p.Passes < 1 {
		return fmt.Errorf("%w: passes must be at least 1, got %d", ErrInvalidParams, p.Passes)
	}
	f := float64(p.Factor)
	if p.Factor == 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return fmt.Errorf("%w: factor must be finite and non-zero, got %v", ErrInvalidParams, p.Factor)
	}
	if p.Passes > math.MaxInt32 {
		return fmt.Errorf("%w: passes must fit in int32, got %d", ErrInvalidParams, p.Passes)
	}
	// Bound each factor before multiplying so the check itself cannot wrap.
	// Elements fitting int32 also bounds i*j in the divide phase.
	n := p.N()
	if n > math.MaxInt32 || p.Rows > math.MaxInt32/n {
		return fmt.Errorf("%w: rows x size/4 exceeds the int32 element range", ErrInvalidParams)
	}
	return nil
}

// State holds the two buffers and the scalar the kernels mutate
type State struct {
	Params Params
	ArrA   []int32
	ArrB   []int32
	X      float32

	logger *zap.Logger
}

// Result summarizes a completed run
type Result struct {
	Params Params
	// X is the scalar after the float phase
	X float32
	// SumA and SumB are plain sums of each buffer
	SumA int64
	SumB int64
}

// Option configures a State
type Option func(*State)

// WithLogger attaches a logger for phase-level debug output
func WithLogger(logger *zap.Logger) Option {
	return func(s *State) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New validates params and allocates zeroed buffers with X = 1
func New(p Params, opts ...Option) (*State, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	s := &State{
		Params: p,
		ArrA:   make([]int32, p.Elements()),
		ArrB:   make([]int32, p.Elements()),
		X:      1,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Accumulate adds 1 to every element of ArrA, Passes times per row
func (s *State) Accumulate() {
	n := s.Params.N()
	for i := 0; i < s.Params.Rows; i++ {
		for j := 0; j < s.Params.Passes; j++ {
			row := s.ArrA[i*n : (i+1)*n]
			for k := range row {
				row[k]++
			}
		}
	}
	s.logger.Debug("accumulate done", zap.Int("rows", s.Params.Rows), zap.Int("passes", s.Params.Passes))
}

// IntMulDiv fills ArrB with i*j/3 using truncating division
func (s *State) IntMulDiv() {
	n := s.Params.N()
	for i := 0; i < s.Params.Rows; i++ {
		for j := 0; j < n; j++ {
			s.ArrB[j+i*n] = int32(i) * int32(j) / 3
		}
	}
	s.logger.Debug("int mul/div done", zap.Int("elements", s.Params.Elements()))
}

// FloatMulDiv multiplies X by Factor N times and then divides it N times.
// Every step is rounded to single precision, so the default shape overflows
// to +Inf during the multiply phase and stays there.
func (s *State) FloatMulDiv() {
	n := s.Params.N()
	c := s.Params.Factor
	x := s.X
	for i := 0; i < n; i++ {
		x *= c
	}
	for i := 0; i < n; i++ {
		x /= c
	}
	s.X = x
	s.logger.Debug("float mul/div done", zap.Float32("x", x))
}

// Run executes the three phases in order and summarizes the state
func (s *State) Run() *Result {
	s.Accumulate()
	s.IntMulDiv()
	s.FloatMulDiv()
	return s.Result()
}

// Result summarizes the current state without running anything
func (s *State) Result() *Result {
	return &Result{
		Params: s.Params,
		X:      s.X,
		SumA:   sum(s.ArrA),
		SumB:   sum(s.ArrB),
	}
}

// Run allocates a fresh state for p and runs it
func Run(p Params, opts ...Option) (*State, *Result, error) {
	s, err := New(p, opts...)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Run(), nil
}

func sum(values []int32) int64 {
	var total int64
	for _, v := range values {
		total += int64(v)
	}
	return total
}
