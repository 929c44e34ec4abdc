package opcount

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// FormatVersion is the action-counts document version energy estimators expect
const FormatVersion = 0.3

// Action maps op classes to one named action of a hardware component
type Action struct {
	Name string
	// Add lists the classes summed into the action
	Add []OpClass
	// Idle actions start from the cycle count and subtract the Add classes
	Idle bool
}

// Mapping binds a component path to its actions
type Mapping struct {
	Path string
	// Class is the energy-model class of the component, e.g. func_unit or cache
	Class string
	// Constants become fixed attributes of the component in the architecture
	Constants Attributes
	Actions   []Action
}

// DefaultMappings covers the functional units and data cache the workload exercises
var DefaultMappings = []Mapping{
	{
		Path:      "system.chip.cpu.int_alu",
		Class:     "func_unit",
		Constants: Attributes{{Key: "type", Value: "int_alu"}},
		Actions: []Action{
			{Name: "access", Add: []OpClass{IntAlu}},
			{Name: "idle", Add: []OpClass{IntAlu}, Idle: true},
		},
	},
	{
		Path:      "system.chip.cpu.mul_alu",
		Class:     "func_unit",
		Constants: Attributes{{Key: "type", Value: "mul_alu"}},
		Actions: []Action{
			{Name: "access", Add: []OpClass{IntMult, IntDiv}},
			{Name: "idle", Add: []OpClass{IntMult, IntDiv}, Idle: true},
		},
	},
	{
		Path:      "system.chip.cpu.fpu",
		Class:     "func_unit",
		Constants: Attributes{{Key: "type", Value: "fpu"}},
		Actions: []Action{
			{Name: "access", Add: []OpClass{FloatMult, FloatDiv}},
			{Name: "idle", Add: []OpClass{FloatMult, FloatDiv}, Idle: true},
		},
	},
	{
		Path:  "system.chip.dcache",
		Class: "cache",
		Constants: Attributes{
			{Key: "n_rd_ports", Value: 1},
			{Key: "n_wr_ports", Value: 1},
			{Key: "n_rdwr_ports", Value: 1},
			{Key: "n_banks", Value: 1},
		},
		// There is no cache model, so every access counts as a hit
		Actions: []Action{
			{Name: "read_access", Add: []OpClass{MemRead}},
			{Name: "read_miss"},
			{Name: "write_access", Add: []OpClass{MemWrite}},
			{Name: "write_miss"},
		},
	},
}

// Document is the top-level action counts file
type Document struct {
	ActionCounts Section `yaml:"action_counts"`
}

// Section holds the versioned list of per-component counts
type Section struct {
	Version float64           `yaml:"version"`
	Local   []ComponentCounts `yaml:"local"`
}

// ComponentCounts lists the actions of one component
type ComponentCounts struct {
	Name         string        `yaml:"name"`
	ActionCounts []ActionCount `yaml:"action_counts"`
}

// ActionCount is a single named count
type ActionCount struct {
	Name   string `yaml:"name"`
	Counts int64  `yaml:"counts"`
}

// ActionCounts builds an action counts document from a profile.
// Idle actions need a cycle count; they are omitted when cycles is zero and
// clamp at zero when the busy count exceeds it.
func ActionCounts(prof Profile, cycles int64, mappings []Mapping) (*Document, error) {
	if cycles < 0 {
		return nil, fmt.Errorf("cycle count cannot be negative: %d", cycles)
	}

	doc := &Document{
		ActionCounts: Section{
			Version: FormatVersion,
			Local:   make([]ComponentCounts, 0, len(mappings)),
		},
	}

	for _, m := range mappings {
		if m.Path == "" {
			return nil, fmt.Errorf("mapping has an empty component path")
		}
		component := ComponentCounts{Name: m.Path, ActionCounts: make([]ActionCount, 0, len(m.Actions))}
		for _, action := range m.Actions {
			var busy int64
			for _, class := range action.Add {
				busy += prof.Get(class)
			}

			counts := busy
			if action.Idle {
				if cycles == 0 {
					continue
				}
				counts = cycles - busy
				// Supplied cycles can undercut the analytic busy count, and a
				// negative count has no energy meaning, so clamp instead of passing it on
				if counts < 0 {
					counts = 0
				}
			}
			component.ActionCounts = append(component.ActionCounts, ActionCount{Name: action.Name, Counts: counts})
		}
		doc.ActionCounts.Local = append(doc.ActionCounts.Local, component)
	}

	return doc, nil
}

// Marshal encodes the document as YAML with two-space indentation
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("failed to encode action counts: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode action counts: %w", err)
	}
	return buf.Bytes(), nil
}
