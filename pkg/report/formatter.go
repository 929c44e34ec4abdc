package report

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/swantron/opmix/internal/opcount"
	"github.com/swantron/opmix/internal/verify"
	"github.com/swantron/opmix/internal/workload"
	"gopkg.in/yaml.v3"
)

// RunReport represents the serialized output of a run.
// X and Deviation are strings because they are usually +Inf, which JSON cannot encode.
type RunReport struct {
	Params      workload.Params  `json:"params" yaml:"params"`
	BufferBytes string           `json:"buffer_bytes" yaml:"buffer_bytes"`
	X           string           `json:"x" yaml:"x"`
	SumA        int64            `json:"sum_a" yaml:"sum_a"`
	SumB        int64            `json:"sum_b" yaml:"sum_b"`
	Verify      *VerifyReport    `json:"verify,omitempty" yaml:"verify,omitempty"`
	Ops         *opcount.Profile `json:"ops,omitempty" yaml:"ops,omitempty"`
}

// VerifyReport represents verification results
type VerifyReport struct {
	Passed     bool             `json:"passed" yaml:"passed"`
	Mismatched int              `json:"mismatched" yaml:"mismatched"`
	Deviation  string           `json:"deviation" yaml:"deviation"`
	Saturated  bool             `json:"saturated" yaml:"saturated"`
	Tolerance  float64          `json:"tolerance,omitempty" yaml:"tolerance,omitempty"`
	WithinTol  bool             `json:"within_tolerance" yaml:"within_tolerance"`
	Mismatches []MismatchReport `json:"mismatches,omitempty" yaml:"mismatches,omitempty"`
}

// MismatchReport represents a single mismatched element
type MismatchReport struct {
	Buffer string `json:"buffer" yaml:"buffer"`
	Row    int    `json:"row" yaml:"row"`
	Column int    `json:"column" yaml:"column"`
	Want   int32  `json:"want" yaml:"want"`
	Got    int32  `json:"got" yaml:"got"`
}

// Build assembles a RunReport. check and ops may be nil.
// tolerance only matters when check is set; zero means no gate.
func Build(result *workload.Result, check *verify.Report, tolerance float64, ops *opcount.Profile) *RunReport {
	r := &RunReport{
		Params:      result.Params,
		BufferBytes: humanize.IBytes(uint64(result.Params.Elements()) * 4),
		X:           formatFloat32(result.X),
		SumA:        result.SumA,
		SumB:        result.SumB,
		Ops:         ops,
	}

	if check != nil {
		v := &VerifyReport{
			Passed:     check.Passed(),
			Mismatched: check.Mismatched(),
			Deviation:  strconv.FormatFloat(check.Float.Deviation, 'g', -1, 64),
			Saturated:  check.Float.Saturated,
			Tolerance:  tolerance,
			WithinTol:  tolerance == 0 || check.WithinTolerance(tolerance),
		}
		for _, buf := range []*verify.BufferResult{check.A, check.B} {
			for _, m := range buf.Mismatches {
				v.Mismatches = append(v.Mismatches, MismatchReport{
					Buffer: m.Buffer,
					Row:    m.Row,
					Column: m.Column,
					Want:   m.Want,
					Got:    m.Got,
				})
			}
		}
		r.Verify = v
	}

	return r
}

// OK reports whether verification (if any) passed every gate
func (r *RunReport) OK() bool {
	if r.Verify == nil {
		return true
	}
	return r.Verify.Passed && r.Verify.WithinTol
}

// ToJSON converts a RunReport to indented JSON
func ToJSON(r *RunReport) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// ToYAML converts a RunReport to YAML
func ToYAML(r *RunReport) ([]byte, error) {
	return yaml.Marshal(r)
}

// ToText renders a RunReport for a terminal
func ToText(r *RunReport) string {
	var sb strings.Builder

	sb.WriteString("opmix Workload Run\n")
	sb.WriteString("==================\n\n")

	p := r.Params
	sb.WriteString(fmt.Sprintf("Shape: %d rows x %s elements, %d passes, factor %v\n",
		p.Rows, humanize.Comma(int64(p.N())), p.Passes, p.Factor))
	sb.WriteString(fmt.Sprintf("Buffers: 2 x %s\n\n", r.BufferBytes))

	sb.WriteString(fmt.Sprintf("x     = %s\n", r.X))
	sb.WriteString(fmt.Sprintf("sum_a = %s\n", humanize.Comma(r.SumA)))
	sb.WriteString(fmt.Sprintf("sum_b = %s\n", humanize.Comma(r.SumB)))

	if r.Verify != nil {
		sb.WriteString("\n")
		if r.Verify.Passed {
			sb.WriteString("✓ Buffers hold expected values\n")
		} else {
			sb.WriteString(fmt.Sprintf("✗ %d mismatched elements\n", r.Verify.Mismatched))
			for _, m := range r.Verify.Mismatches {
				sb.WriteString(fmt.Sprintf("  %s[%d,%d]: want %d, got %d\n", m.Buffer, m.Row, m.Column, m.Want, m.Got))
			}
		}
		sb.WriteString(fmt.Sprintf("Float deviation: %s", r.Verify.Deviation))
		if r.Verify.Saturated {
			sb.WriteString(" (saturated)")
		}
		sb.WriteString("\n")
		if r.Verify.Tolerance > 0 {
			mark := "✓"
			if !r.Verify.WithinTol {
				mark = "✗"
			}
			sb.WriteString(fmt.Sprintf("%s Tolerance %g\n", mark, r.Verify.Tolerance))
		}
	}

	if r.Ops != nil {
		sb.WriteString("\nOperation Mix:\n")
		sb.WriteString("--------------\n")
		for _, class := range opcount.Classes {
			sb.WriteString(fmt.Sprintf("  %-10s %s\n", class, humanize.Comma(r.Ops.Get(class))))
		}
		sb.WriteString(fmt.Sprintf("  %-10s %s\n", "Total", humanize.Comma(r.Ops.Total())))
	}

	return sb.String()
}

// ToMarkdown converts a RunReport to Markdown format
func ToMarkdown(r *RunReport) string {
	var sb strings.Builder

	sb.WriteString("# Workload Report\n\n")

	sb.WriteString("## Summary\n\n")
	sb.WriteString(fmt.Sprintf("- **Rows**: %d\n", r.Params.Rows))
	sb.WriteString(fmt.Sprintf("- **Row Length**: %d\n", r.Params.N()))
	sb.WriteString(fmt.Sprintf("- **Passes**: %d\n", r.Params.Passes))
	sb.WriteString(fmt.Sprintf("- **Factor**: %v\n", r.Params.Factor))
	sb.WriteString(fmt.Sprintf("- **Buffer Size**: %s\n", r.BufferBytes))
	sb.WriteString(fmt.Sprintf("- **x**: `%s`\n", r.X))
	sb.WriteString(fmt.Sprintf("- **sum_a**: %d\n", r.SumA))
	sb.WriteString(fmt.Sprintf("- **sum_b**: %d\n\n", r.SumB))

	if r.Verify != nil {
		status := "❌ FAIL"
		if r.OK() {
			status = "✅ PASS"
		}
		sb.WriteString("## Verification\n\n")
		sb.WriteString(fmt.Sprintf("- **Status**: %s\n", status))
		sb.WriteString(fmt.Sprintf("- **Mismatched Elements**: %d\n", r.Verify.Mismatched))
		sb.WriteString(fmt.Sprintf("- **Float Deviation**: %s\n\n", r.Verify.Deviation))

		if len(r.Verify.Mismatches) > 0 {
			sb.WriteString("| Buffer | Row | Column | Want | Got |\n")
			sb.WriteString("|--------|-----|--------|------|-----|\n")
			for _, m := range r.Verify.Mismatches {
				sb.WriteString(fmt.Sprintf("| `%s` | %d | %d | %d | %d |\n", m.Buffer, m.Row, m.Column, m.Want, m.Got))
			}
			sb.WriteString("\n")
		}
	}

	if r.Ops != nil {
		sb.WriteString("## Operation Mix\n\n")
		sb.WriteString("| Class | Count |\n")
		sb.WriteString("|-------|-------|\n")
		for _, class := range opcount.Classes {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", class, r.Ops.Get(class)))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func formatFloat32(x float32) string {
	return strconv.FormatFloat(float64(x), 'g', -1, 32)
}
