package graph

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for graph queries.
var (
	// ErrUnknownSwitch is returned when a query names a switch that no
	// diagnostic group defines.
	ErrUnknownSwitch = errors.New("unknown switch")

	// ErrUnresolvedReference is returned when a group references a record
	// that owns no switch name.
	ErrUnresolvedReference = errors.New("unresolved reference")

	// ErrCycle is returned when expanding references revisits a switch on
	// the current path.
	ErrCycle = errors.New("reference cycle")
)

// UnresolvedReferenceError names the group and the record it failed to resolve.
type UnresolvedReferenceError struct {
	Switch string
	Record string
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("switch -W%s references %q which owns no switch name", e.Switch, e.Record)
}

func (e *UnresolvedReferenceError) Unwrap() error {
	return ErrUnresolvedReference
}

// CycleError carries the switch path that closed a cycle; the last element
// repeats an earlier one.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Path))
	for i, s := range e.Path {
		parts[i] = "-W" + s
	}
	return "reference cycle: " + strings.Join(parts, " -> ")
}

func (e *CycleError) Unwrap() error {
	return ErrCycle
}

func unknownSwitch(name string) error {
	return fmt.Errorf("%w: -W%s", ErrUnknownSwitch, name)
}
