package graph

// DiagGroupClass is the class kind that denotes a diagnostic group.
const DiagGroupClass = "DiagGroup"

// OwnerSwitch is the switch name a diagnostic-group record surfaced.
// HasSwitch is false for groups declared without a switch name, which is
// distinct from an empty switch name.
type OwnerSwitch struct {
	Switch    string
	HasSwitch bool
}

// Graph holds the resolution table and reference graph built from one
// definitions file. It is read-only once Builder.Graph returns it.
type Graph struct {
	// switchOwners maps switch name -> owning record name.
	switchOwners map[string]string
	// ownerSwitches maps record name -> switch name.
	ownerSwitches map[string]OwnerSwitch

	// references maps switch name -> referenced record names, in declaration order.
	references map[string][]string
	// groupParents maps record name -> switch names whose group references it.
	groupParents map[string][]string
	// recordParents maps record name -> names of records referencing it.
	recordParents map[string][]string
}

func newGraph() *Graph {
	return &Graph{
		switchOwners:  make(map[string]string),
		ownerSwitches: make(map[string]OwnerSwitch),
		references:    make(map[string][]string),
		groupParents:  make(map[string][]string),
		recordParents: make(map[string][]string),
	}
}

// Entry is one line of a reference expansion.
type Entry struct {
	Depth int `json:"depth" yaml:"depth"`
	// Switch is the referenced switch name. Empty for unresolved entries.
	Switch string `json:"switch" yaml:"switch"`
	// Record is the referenced record name as written in the definitions file.
	Record string `json:"record" yaml:"record"`
	// Unresolved marks a reference to a record that owns no switch name.
	Unresolved bool `json:"unresolved,omitempty" yaml:"unresolved,omitempty"`
	// Cycle marks a switch already present on the current path; it is not expanded.
	Cycle bool `json:"cycle,omitempty" yaml:"cycle,omitempty"`
}
