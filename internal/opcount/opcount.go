package opcount

import (
	"github.com/swantron/opmix/internal/workload"
)

// OpClass names an operation class, spelled the way simulator stats spell them
type OpClass string

const (
	IntAlu    OpClass = "IntAlu"
	IntMult   OpClass = "IntMult"
	IntDiv    OpClass = "IntDiv"
	FloatMult OpClass = "FloatMult"
	FloatDiv  OpClass = "FloatDiv"
	MemRead   OpClass = "MemRead"
	MemWrite  OpClass = "MemWrite"
)

// Classes lists every op class in report order
var Classes = []OpClass{IntAlu, IntMult, IntDiv, FloatMult, FloatDiv, MemRead, MemWrite}

// Profile holds per-class operation counts for one workload run
type Profile struct {
	IntAlu    int64 `json:"int_alu" yaml:"int_alu"`
	IntMult   int64 `json:"int_mult" yaml:"int_mult"`
	IntDiv    int64 `json:"int_div" yaml:"int_div"`
	FloatMult int64 `json:"float_mult" yaml:"float_mult"`
	FloatDiv  int64 `json:"float_div" yaml:"float_div"`
	MemRead   int64 `json:"mem_read" yaml:"mem_read"`
	MemWrite  int64 `json:"mem_write" yaml:"mem_write"`
}

// Count returns the operation mix of the kernel bodies for p.
// Loop control and address arithmetic are not counted.
func Count(p workload.Params) Profile {
	n := int64(p.N())
	rows := int64(p.Rows)
	passes := int64(p.Passes)

	var prof Profile

	// accumulate: load, add, store
	acc := rows * passes * n
	prof.MemRead += acc
	prof.IntAlu += acc
	prof.MemWrite += acc

	// int mul/div: multiply, divide, store
	md := rows * n
	prof.IntMult += md
	prof.IntDiv += md
	prof.MemWrite += md

	// float mul/div on a register-resident scalar
	prof.FloatMult += n
	prof.FloatDiv += n

	return prof
}

// Get returns the count for class, or 0 for an unknown class
func (p Profile) Get(class OpClass) int64 {
	switch class {
	case IntAlu:
		return p.IntAlu
	case IntMult:
		return p.IntMult
	case IntDiv:
		return p.IntDiv
	case FloatMult:
		return p.FloatMult
	case FloatDiv:
		return p.FloatDiv
	case MemRead:
		return p.MemRead
	case MemWrite:
		return p.MemWrite
	default:
		return 0
	}
}

// Total returns the sum over all classes
func (p Profile) Total() int64 {
	var total int64
	for _, c := range Classes {
		total += p.Get(c)
	}
	return total
}
