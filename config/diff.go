package config

import "reflect"

// Diff is the result of comparing two Configs, grounded on the teacher's
// config.Diff (Added/Removed/Modified/Equal over two configs), generalized
// from the teacher's named-component-list diffing (boards, processes,
// remotes) to this repo's single-settings-object-plus-attributes model:
// the typed settings sections diff as a whole (SettingsChanged), and the
// free-form Attributes bag diffs key-by-key.
type Diff struct {
	Left, Right *Config

	// SettingsChanged is true if Simulation, Microtraffic, or Landmarks
	// differ between Left and Right.
	SettingsChanged bool

	Added    AttributeMap
	Removed  AttributeMap
	Modified AttributeMap

	Equal bool
}

// DiffConfigs computes the Diff between left and right.
func DiffConfigs(left, right *Config) (*Diff, error) {
	added := AttributeMap{}
	removed := AttributeMap{}
	modified := AttributeMap{}

	for k, rv := range right.Attributes {
		lv, ok := left.Attributes[k]
		if !ok {
			added[k] = rv
			continue
		}
		if !reflect.DeepEqual(lv, rv) {
			modified[k] = rv
		}
	}
	for k, lv := range left.Attributes {
		if _, ok := right.Attributes[k]; !ok {
			removed[k] = lv
		}
	}

	settingsChanged := !reflect.DeepEqual(left.Simulation, right.Simulation) ||
		!reflect.DeepEqual(left.Microtraffic, right.Microtraffic) ||
		!reflect.DeepEqual(left.Landmarks, right.Landmarks)

	equal := len(added) == 0 && len(removed) == 0 && len(modified) == 0 && !settingsChanged

	return &Diff{
		Left:            left,
		Right:           right,
		SettingsChanged: settingsChanged,
		Added:           added,
		Removed:         removed,
		Modified:        modified,
		Equal:           equal,
	}, nil
}
