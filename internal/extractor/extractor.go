package extractor

import (
	"log/slog"

	"diaggroups/internal/tablegen"
)

// Stats summarizes one walk.
type Stats struct {
	Records    int // def statements visited
	ClassRefs  int // parent class instantiations
	References int // reference identifiers emitted
}

// Extractor turns TableGen parse trees into Listener events.
type Extractor struct {
	logger *slog.Logger
}

// NewExtractor creates an extractor. A nil logger discards debug output.
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Extractor{logger: logger}
}

// Walk emits the events of every def in file, descending into let and
// defset blocks. Statements that are not evaluated (class, foreach, ...)
// produce no events.
func (e *Extractor) Walk(file *tablegen.File, l Listener) Stats {
	var stats Stats
	e.walkStatements(file.Statements, l, &stats)
	e.logger.Debug("walked definitions file",
		"file", file.Path,
		"records", stats.Records,
		"class_refs", stats.ClassRefs,
		"references", stats.References,
	)
	return stats
}

// ExtractFromFile parses a single file without include resolution and walks it.
func (e *Extractor) ExtractFromFile(path string, l Listener) (Stats, error) {
	file, err := tablegen.ParseFile(path)
	if err != nil {
		return Stats{}, err
	}
	return e.Walk(file, l), nil
}

func (e *Extractor) walkStatements(stmts []tablegen.Statement, l Listener, stats *Stats) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *tablegen.Def:
			e.walkDef(s, l, stats)
		case *tablegen.Let:
			e.walkStatements(s.Body, l, stats)
		case *tablegen.Defset:
			e.walkStatements(s.Body, l, stats)
		case *tablegen.Include:
			e.logger.Debug("include left unresolved", "path", s.Path, "at", s.At.String())
		}
	}
}

func (e *Extractor) walkDef(def *tablegen.Def, l Listener, stats *Stats) {
	stats.Records++
	if def.Name != "" {
		l.OnRecordNameLiteral(def.Name)
	}
	for _, parent := range def.Parents {
		stats.ClassRefs++
		l.OnRecordClassTag(parent.Name)
		for i, arg := range parent.Args {
			if str, ok := arg.(*tablegen.StringValue); ok && i == 0 {
				if str.Text == "" {
					l.OnEmptySwitchNameMarker()
				} else {
					l.OnSwitchNameLiteral(str.Text)
				}
				continue
			}
			stats.References += emitReferences(arg, l)
		}
		l.OnRecordEnd()
	}
	l.OnRecordNameScopeEnd()
}

// emitReferences reports identifiers inside v in source order.
func emitReferences(v tablegen.Value, l Listener) int {
	count := 0
	var visit func(tablegen.Value)
	visit = func(v tablegen.Value) {
		switch v := v.(type) {
		case *tablegen.Identifier:
			l.OnReferenceIdentifier(v.Name)
			count++
		case *tablegen.ListValue:
			for _, elem := range v.Elements {
				visit(elem)
			}
		case *tablegen.BitsValue:
			for _, elem := range v.Elements {
				visit(elem)
			}
		case *tablegen.ClassValue:
			for _, arg := range v.Args {
				visit(arg)
			}
		case *tablegen.DagValue:
			for _, arg := range v.Args {
				visit(arg)
			}
		case *tablegen.BangValue:
			for _, arg := range v.Args {
				visit(arg)
			}
		}
	}
	visit(v)
	return count
}
