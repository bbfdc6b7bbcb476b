package graph

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
)

// CyclePolicy selects how reference expansion handles a cycle.
type CyclePolicy int

const (
	// CyclesFail aborts the expansion with a *CycleError.
	CyclesFail CyclePolicy = iota
	// CyclesTruncate emits the repeated switch marked as a cycle and does not descend.
	CyclesTruncate
)

func (p CyclePolicy) String() string {
	switch p {
	case CyclesFail:
		return "error"
	case CyclesTruncate:
		return "truncate"
	}
	return fmt.Sprintf("CyclePolicy(%d)", int(p))
}

// ParseCyclePolicy accepts "error" or "truncate".
func ParseCyclePolicy(s string) (CyclePolicy, error) {
	switch s {
	case "error", "":
		return CyclesFail, nil
	case "truncate":
		return CyclesTruncate, nil
	}
	return 0, fmt.Errorf("invalid cycle policy %q (want error or truncate)", s)
}

// UnresolvedPolicy selects how reference expansion handles a reference to a
// record without a switch name.
type UnresolvedPolicy int

const (
	// UnresolvedFail aborts the expansion with an *UnresolvedReferenceError.
	UnresolvedFail UnresolvedPolicy = iota
	// UnresolvedSkip drops the reference.
	UnresolvedSkip
	// UnresolvedMark emits an Entry with Unresolved set.
	UnresolvedMark
)

func (p UnresolvedPolicy) String() string {
	switch p {
	case UnresolvedFail:
		return "error"
	case UnresolvedSkip:
		return "skip"
	case UnresolvedMark:
		return "mark"
	}
	return fmt.Sprintf("UnresolvedPolicy(%d)", int(p))
}

// ParseUnresolvedPolicy accepts "error", "skip" or "mark".
func ParseUnresolvedPolicy(s string) (UnresolvedPolicy, error) {
	switch s {
	case "error", "":
		return UnresolvedFail, nil
	case "skip":
		return UnresolvedSkip, nil
	case "mark":
		return UnresolvedMark, nil
	}
	return 0, fmt.Errorf("invalid unresolved policy %q (want error, skip or mark)", s)
}

// ExpandOptions configures WalkReferences. The zero value fails on cycles
// and on unresolved references.
type ExpandOptions struct {
	Cycles     CyclePolicy
	Unresolved UnresolvedPolicy
}

// Switches returns every switch name in ascending order.
func (g *Graph) Switches() []string {
	return slices.Sorted(maps.Keys(g.switchOwners))
}

// Owner returns the record that defines switchName.
func (g *Graph) Owner(switchName string) (string, bool) {
	owner, ok := g.switchOwners[switchName]
	return owner, ok
}

// SwitchOf returns the switch entry recorded for a diagnostic-group record.
func (g *Graph) SwitchOf(record string) (OwnerSwitch, bool) {
	sw, ok := g.ownerSwitches[record]
	return sw, ok
}

// References returns the record names switchName references, in declaration order.
func (g *Graph) References(switchName string) []string {
	return slices.Clone(g.references[switchName])
}

// IsRoot reports whether no record references the owner of switchName.
func (g *Graph) IsRoot(switchName string) (bool, error) {
	owner, ok := g.switchOwners[switchName]
	if !ok {
		return false, unknownSwitch(switchName)
	}
	_, byGroup := g.groupParents[owner]
	_, byRecord := g.recordParents[owner]
	return !byGroup && !byRecord, nil
}

// Roots returns the root switches in ascending order.
func (g *Graph) Roots() []string {
	var roots []string
	for _, name := range g.Switches() {
		if root, _ := g.IsRoot(name); root {
			roots = append(roots, name)
		}
	}
	return roots
}

// Parents returns, sorted and without duplicates, the switches whose group
// directly references the owner of switchName.
func (g *Graph) Parents(switchName string) ([]string, error) {
	owner, ok := g.switchOwners[switchName]
	if !ok {
		return nil, unknownSwitch(switchName)
	}
	parents := slices.Clone(g.groupParents[owner])
	slices.Sort(parents)
	return slices.Compact(parents), nil
}

// WalkReferences streams the transitive references of switchName depth
// first. Siblings are visited in switch name order, starting at depth.
// Unresolved entries marked by UnresolvedMark follow the resolved siblings.
// An error returned by fn stops the walk and is returned unchanged.
func (g *Graph) WalkReferences(switchName string, depth int, opts ExpandOptions, fn func(Entry) error) error {
	if _, ok := g.switchOwners[switchName]; !ok {
		return unknownSwitch(switchName)
	}
	w := &walker{
		graph:  g,
		opts:   opts,
		fn:     fn,
		path:   []string{switchName},
		onPath: map[string]bool{switchName: true},
	}
	return w.walk(switchName, depth)
}

// ExpandReferences collects WalkReferences into a slice.
func (g *Graph) ExpandReferences(switchName string, depth int, opts ExpandOptions) ([]Entry, error) {
	var entries []Entry
	err := g.WalkReferences(switchName, depth, opts, func(e Entry) error {
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

type walker struct {
	graph  *Graph
	opts   ExpandOptions
	fn     func(Entry) error
	path   []string
	onPath map[string]bool
}

func (w *walker) walk(switchName string, depth int) error {
	entries, err := w.resolve(switchName, depth)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Unresolved {
			if err := w.fn(e); err != nil {
				return err
			}
			continue
		}
		if w.onPath[e.Switch] {
			if w.opts.Cycles == CyclesFail {
				return &CycleError{Path: append(slices.Clone(w.path), e.Switch)}
			}
			e.Cycle = true
			if err := w.fn(e); err != nil {
				return err
			}
			continue
		}
		if err := w.fn(e); err != nil {
			return err
		}

		w.onPath[e.Switch] = true
		w.path = append(w.path, e.Switch)
		err := w.walk(e.Switch, depth+1)
		w.path = w.path[:len(w.path)-1]
		delete(w.onPath, e.Switch)
		if err != nil {
			return err
		}
	}
	return nil
}

// resolve maps the references of switchName to sorted entries.
func (w *walker) resolve(switchName string, depth int) ([]Entry, error) {
	refs := w.graph.references[switchName]
	entries := make([]Entry, 0, len(refs))
	for _, record := range refs {
		sw, ok := w.graph.ownerSwitches[record]
		if ok && sw.HasSwitch {
			entries = append(entries, Entry{Depth: depth, Switch: sw.Switch, Record: record})
			continue
		}
		switch w.opts.Unresolved {
		case UnresolvedSkip:
		case UnresolvedMark:
			entries = append(entries, Entry{Depth: depth, Record: record, Unresolved: true})
		default:
			return nil, &UnresolvedReferenceError{Switch: switchName, Record: record}
		}
	}
	slices.SortStableFunc(entries, func(a, b Entry) int {
		if a.Unresolved != b.Unresolved {
			if a.Unresolved {
				return 1
			}
			return -1
		}
		return cmp.Or(cmp.Compare(a.Switch, b.Switch), cmp.Compare(a.Record, b.Record))
	})
	return entries, nil
}
