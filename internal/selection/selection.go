// Package selection tracks the selected country and the per-feature extrusion flags.
package selection

import (
	"maps"
	"slices"
)

// State is not safe for concurrent use.
type State struct {
	selected string
	hasSel   bool
	touched  bool
	extruded map[string]bool
}

func New() *State {
	return &State{extruded: map[string]bool{}}
}

// Toggle flips the extrusion flag of featureID and records name as the selected
// country whatever the new flag is. It returns the new flag.
func (s *State) Toggle(featureID, name string) bool {
	flag := !s.extruded[featureID]
	if flag {
		s.extruded[featureID] = true
	} else {
		delete(s.extruded, featureID)
	}

	s.selected = name
	s.hasSel = true
	s.touched = true
	return flag
}

// Clear drops the selected country. Extrusion flags are kept.
func (s *State) Clear() {
	s.selected = ""
	s.hasSel = false
}

func (s *State) Selected() (string, bool) {
	return s.selected, s.hasSel
}

func (s *State) Extruded(featureID string) bool {
	return s.extruded[featureID]
}

// Touched reports whether any feature has been toggled. Until then every
// feature is drawn extruded.
func (s *State) Touched() bool {
	return s.touched
}

// ExtrudedIDs returns the ids of every extruded feature in sorted order.
func (s *State) ExtrudedIDs() []string {
	ids := make([]string, 0, len(s.extruded))
	ids = slices.AppendSeq(ids, maps.Keys(s.extruded))
	slices.Sort(ids)
	return ids
}
