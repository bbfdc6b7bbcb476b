package graph

// recordState is the in-progress record. Name is scoped to the whole def;
// the remaining fields are scoped to one parent class instantiation.
type recordState struct {
	name       string
	classKind  string
	switchName string
	hasSwitch  bool
	references []string
}

// Builder consumes the definition event stream and assembles a Graph.
// It implements extractor.Listener. Malformed or partial event sequences
// degrade to missing graph entries; the builder never fails.
type Builder struct {
	graph *Graph
	cur   recordState
}

// NewBuilder returns a builder with an empty graph.
func NewBuilder() *Builder {
	return &Builder{graph: newGraph()}
}

// Graph hands off the completed graph. The builder starts over with an
// empty graph, so later events never touch the returned value.
func (b *Builder) Graph() *Graph {
	g := b.graph
	b.graph = newGraph()
	b.cur = recordState{}
	return g
}

func (b *Builder) inGroup() bool {
	return b.cur.classKind == DiagGroupClass
}

// OnRecordClassTag starts a class instantiation. The reference list is
// reset for every class kind so references never leak between records.
func (b *Builder) OnRecordClassTag(kind string) {
	b.cur.classKind = kind
	b.cur.references = nil
}

func (b *Builder) OnRecordNameLiteral(name string) {
	b.cur.name = name
}

func (b *Builder) OnSwitchNameLiteral(text string) {
	if b.inGroup() {
		b.cur.switchName = text
		b.cur.hasSwitch = true
	}
}

func (b *Builder) OnEmptySwitchNameMarker() {
	if b.inGroup() {
		b.cur.switchName = ""
		b.cur.hasSwitch = true
	}
}

func (b *Builder) OnReferenceIdentifier(name string) {
	b.cur.references = append(b.cur.references, name)
}

func (b *Builder) OnRecordNameScopeEnd() {
	b.cur.name = ""
}

// OnRecordEnd commits a diagnostic group and clears the class-scoped state.
func (b *Builder) OnRecordEnd() {
	if b.inGroup() {
		b.commit()
	}
	b.cur = recordState{name: b.cur.name}
}

func (b *Builder) commit() {
	g, cur := b.graph, b.cur
	if cur.hasSwitch {
		// A switch name defined twice keeps the last owner and reference list.
		g.switchOwners[cur.switchName] = cur.name
		g.references[cur.switchName] = cur.references
		for _, ref := range cur.references {
			g.groupParents[ref] = append(g.groupParents[ref], cur.switchName)
		}
	}
	if cur.name != "" {
		g.ownerSwitches[cur.name] = OwnerSwitch{Switch: cur.switchName, HasSwitch: cur.hasSwitch}
		for _, ref := range cur.references {
			g.recordParents[ref] = append(g.recordParents[ref], cur.name)
		}
	}
}
