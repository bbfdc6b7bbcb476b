package tablegen

import "strings"

// File is the parse tree of one TableGen source file.
type File struct {
	Path       string
	Statements []Statement
}

// Statement is a top-level or nested TableGen statement.
type Statement interface {
	Position() Pos
}

// Include is an `include "path"` directive.
type Include struct {
	Path string
	At   Pos
}

// Def is a concrete record definition: `def Name : Parent<args>, ... ;`.
// Name is empty for anonymous definitions.
type Def struct {
	Name    string
	Parents []ClassRef
	At      Pos
}

// ClassRef is one entry of a parent class list.
type ClassRef struct {
	Name string
	Args []Value
	At   Pos
}

// LetBinding is one `name = value` pair of a let statement.
type LetBinding struct {
	Name  string
	Value Value
}

// Let is `let a = b, ... in { ... }` or its single-statement form.
type Let struct {
	Bindings []LetBinding
	Body     []Statement
	At       Pos
}

// Defset collects the records defined in its body into a named list.
type Defset struct {
	Name string
	Body []Statement
	At   Pos
}

// Skipped is a statement that is parsed for structure but not evaluated:
// class, multiclass, defm, defvar, foreach, if, assert and dump.
type Skipped struct {
	Keyword string
	At      Pos
}

func (s *Include) Position() Pos { return s.At }
func (s *Def) Position() Pos     { return s.At }
func (s *Let) Position() Pos     { return s.At }
func (s *Defset) Position() Pos  { return s.At }
func (s *Skipped) Position() Pos { return s.At }

// Value is a TableGen value expression.
type Value interface {
	Position() Pos
}

type (
	// StringValue is one or more adjacent string literals.
	StringValue struct {
		Text string
		At   Pos
	}
	// CodeValue is a [{ ... }] block.
	CodeValue struct {
		Text string
		At   Pos
	}
	IntValue struct {
		Text string
		At   Pos
	}
	BoolValue struct {
		Value bool
		At    Pos
	}
	// Identifier references a record, a template argument or a field.
	Identifier struct {
		Name string
		At   Pos
	}
	ListValue struct {
		Elements []Value
		At       Pos
	}
	BitsValue struct {
		Elements []Value
		At       Pos
	}
	// ClassValue is an anonymous instantiation `Class<args>`.
	ClassValue struct {
		Class string
		Args  []Value
		At    Pos
	}
	DagValue struct {
		Operator Value
		Args     []Value
		At       Pos
	}
	// BangValue is a bang operator call such as !listconcat(a, b).
	BangValue struct {
		Op   string
		Args []Value
		At   Pos
	}
	Uninitialized struct {
		At Pos
	}
	// SuffixValue is a field access, bit range or list slice applied to Base.
	SuffixValue struct {
		Base   Value
		Suffix string
		At     Pos
	}
	// PasteValue is `Left#Right`; Right is nil for a trailing paste.
	PasteValue struct {
		Left  Value
		Right Value
		At    Pos
	}
)

func (v *StringValue) Position() Pos   { return v.At }
func (v *CodeValue) Position() Pos     { return v.At }
func (v *IntValue) Position() Pos      { return v.At }
func (v *BoolValue) Position() Pos     { return v.At }
func (v *Identifier) Position() Pos    { return v.At }
func (v *ListValue) Position() Pos     { return v.At }
func (v *BitsValue) Position() Pos     { return v.At }
func (v *ClassValue) Position() Pos    { return v.At }
func (v *DagValue) Position() Pos      { return v.At }
func (v *BangValue) Position() Pos     { return v.At }
func (v *Uninitialized) Position() Pos { return v.At }
func (v *SuffixValue) Position() Pos   { return v.At }
func (v *PasteValue) Position() Pos    { return v.At }

// Text renders simple name-like values (identifiers, strings, pastes of them)
// as a single string. Other values render as an empty string.
func Text(v Value) string {
	switch v := v.(type) {
	case *Identifier:
		return v.Name
	case *StringValue:
		return v.Text
	case *IntValue:
		return v.Text
	case *PasteValue:
		var sb strings.Builder
		sb.WriteString(Text(v.Left))
		if v.Right != nil {
			sb.WriteString(Text(v.Right))
		}
		return sb.String()
	}
	return ""
}
