package opcount

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var testSystem = SystemAttributes{Technology: "45nm", DataWidth: 32, DeviceType: "lp", ClockMHz: 1000}

func TestArchitectureDefault(t *testing.T) {
	doc, err := Architecture(testSystem, DefaultMappings)
	require.NoError(t, err)

	assert.Equal(t, FormatVersion, doc.Architecture.Version)
	want := []*Node{{
		Name: "system",
		Attributes: Attributes{
			{Key: "technology", Value: "45nm"},
			{Key: "datawidth", Value: 32},
			{Key: "device_type", Value: "lp"},
			{Key: "clockrate", Value: 1000},
		},
		Subtree: []*Node{{
			Name: "chip",
			Local: []Component{{
				Name:  "dcache",
				Class: "cache",
				Attributes: Attributes{
					{Key: "n_rd_ports", Value: 1},
					{Key: "n_wr_ports", Value: 1},
					{Key: "n_rdwr_ports", Value: 1},
					{Key: "n_banks", Value: 1},
				},
			}},
			Subtree: []*Node{{
				Name: "cpu",
				Local: []Component{
					{Name: "int_alu", Class: "func_unit", Attributes: Attributes{{Key: "type", Value: "int_alu"}}},
					{Name: "mul_alu", Class: "func_unit", Attributes: Attributes{{Key: "type", Value: "mul_alu"}}},
					{Name: "fpu", Class: "func_unit", Attributes: Attributes{{Key: "type", Value: "fpu"}}},
				},
			}},
		}},
	}}
	if diff := cmp.Diff(want, doc.Architecture.Subtree); diff != "" {
		t.Errorf("architecture mismatch (-want +got):\n%s", diff)
	}
}

func TestArchitectureMatchesActionCounts(t *testing.T) {
	// Every action counts entry names a leaf of the architecture tree
	doc, err := Architecture(testSystem, DefaultMappings)
	require.NoError(t, err)
	counts, err := ActionCounts(Profile{}, 0, DefaultMappings)
	require.NoError(t, err)

	leaves := map[string]bool{}
	var walk func(prefix string, n *Node)
	walk = func(prefix string, n *Node) {
		path := prefix + n.Name
		for _, c := range n.Local {
			leaves[path+"."+c.Name] = true
		}
		for _, s := range n.Subtree {
			walk(path+".", s)
		}
	}
	walk("", doc.Architecture.Subtree[0])

	for _, c := range counts.ActionCounts.Local {
		assert.True(t, leaves[c.Name], "no architecture component for %s", c.Name)
	}
	assert.Len(t, leaves, len(counts.ActionCounts.Local))
}

func TestArchitectureErrors(t *testing.T) {
	tests := []struct {
		name     string
		sys      SystemAttributes
		mappings []Mapping
	}{
		{"missing technology", SystemAttributes{DataWidth: 32, DeviceType: "lp", ClockMHz: 1000}, nil},
		{"zero datawidth", SystemAttributes{Technology: "45nm", DeviceType: "lp", ClockMHz: 1000}, nil},
		{"missing device type", SystemAttributes{Technology: "45nm", DataWidth: 32, ClockMHz: 1000}, nil},
		{"zero clock", SystemAttributes{Technology: "45nm", DataWidth: 32, DeviceType: "lp"}, nil},
		{"wrong root", testSystem, []Mapping{{Path: "board.cpu.fpu", Class: "func_unit"}}},
		{"root only", testSystem, []Mapping{{Path: "system", Class: "func_unit"}}},
		{"empty level", testSystem, []Mapping{{Path: "system..fpu", Class: "func_unit"}}},
		{"empty leaf", testSystem, []Mapping{{Path: "system.chip.", Class: "func_unit"}}},
		{"missing class", testSystem, []Mapping{{Path: "system.chip.fpu"}}},
		{"duplicate", testSystem, []Mapping{
			{Path: "system.chip.fpu", Class: "func_unit"},
			{Path: "system.chip.fpu", Class: "func_unit"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Architecture(tt.sys, tt.mappings)
			assert.Error(t, err)
		})
	}
}

func TestArchDocumentMarshal(t *testing.T) {
	doc, err := Architecture(testSystem, DefaultMappings)
	require.NoError(t, err)

	data, err := doc.Marshal()
	require.NoError(t, err)

	out := string(data)
	assert.True(t, strings.HasPrefix(out, "architecture:\n  version: 0.3\n  subtree:\n"), "unexpected document head:\n%s", out)
	// Attribute order follows insertion, not key order
	assert.Less(t, strings.Index(out, "technology: 45nm"), strings.Index(out, "clockrate: 1000"))
	assert.Less(t, strings.Index(out, "n_rd_ports: 1"), strings.Index(out, "n_banks: 1"))
	assert.Contains(t, out, "class: func_unit")

	var decoded ArchDocument
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	if diff := cmp.Diff(doc, &decoded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestAttributesRejectSequence(t *testing.T) {
	var a Attributes
	err := yaml.Unmarshal([]byte("- one\n- two\n"), &a)
	assert.Error(t, err)
}

func TestAttributesGet(t *testing.T) {
	a := Attributes{{Key: "type", Value: "fpu"}}
	v, ok := a.Get("type")
	assert.True(t, ok)
	assert.Equal(t, "fpu", v)
	_, ok = a.Get("size")
	assert.False(t, ok)
}
