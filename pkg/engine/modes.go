package engine

import (
	"fmt"
	"sort"
)

// RunMode selects how grid labels are interpreted during a run. The numeric
// values are the identifiers accepted on the command line.
type RunMode int

const (
	// ModeBasic treats every label as a bare variant name.
	ModeBasic RunMode = 1

	// ModeAttributed parses ATTRIBUTE_VARIANT labels.
	ModeAttributed RunMode = 2
)

type modeDef struct {
	name        string
	description string
	parse       LabelParser
}

// runModes is the single place where run modes are declared.
var runModes = map[RunMode]modeDef{
	ModeBasic: {
		name:        "basic",
		description: "goal labels are bare variant names",
		parse:       ParseBareLabel,
	},
	ModeAttributed: {
		name:        "attributed",
		description: "goal labels may carry an ATTRIBUTE_ prefix",
		parse:       ParseLabel,
	},
}

// String returns the mode name.
func (m RunMode) String() string {
	if def, ok := runModes[m]; ok {
		return def.name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Description returns a one-line summary of the mode.
func (m RunMode) Description() string {
	return runModes[m].description
}

// Parser returns the label parser for the mode.
func (m RunMode) Parser() (LabelParser, error) {
	def, ok := runModes[m]
	if !ok {
		return nil, NewValidationError("run mode %d is not supported (supported: %v)", int(m), SupportedModes())
	}
	return def.parse, nil
}

// SupportedModes returns the declared run modes in ascending order.
func SupportedModes() []RunMode {
	modes := make([]RunMode, 0, len(runModes))
	for m := range runModes {
		modes = append(modes, m)
	}
	sort.Slice(modes, func(i, j int) bool { return modes[i] < modes[j] })
	return modes
}

// LookupMode returns the run mode for a command-line identifier.
func LookupMode(id int) (RunMode, error) {
	m := RunMode(id)
	if _, ok := runModes[m]; !ok {
		ids := make([]int, 0, len(runModes))
		for _, s := range SupportedModes() {
			ids = append(ids, int(s))
		}
		return 0, NewValidationError("run mode %d is not supported, supported modes are: %v", id, ids)
	}
	return m, nil
}
