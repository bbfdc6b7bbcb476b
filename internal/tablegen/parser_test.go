package tablegen

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Definitions(t *testing.T) {
	src := `
class DiagGroup<string Name, list<DiagGroup> subgroups = [], code docs = [{}]> {
  string GroupName = Name;
  list<DiagGroup> SubGroups = subgroups;
}
def Foo : DiagGroup<"format">;
def Bar : DiagGroup<"unused-variable", [Foo]>, DiagCategory<"Unused">;
def : DiagGroup<"", [Foo, Bar]>;
def Documented : DiagGroup<"documented", [], [{
  Some documentation.
}]> {
  let Hidden = 1;
}
`
	file, err := Parse("groups.td", []byte(src))
	require.NoError(t, err)
	require.Len(t, file.Statements, 5)

	assert.IsType(t, &Skipped{}, file.Statements[0])

	foo := file.Statements[1].(*Def)
	assert.Equal(t, "Foo", foo.Name)
	require.Len(t, foo.Parents, 1)
	assert.Equal(t, "DiagGroup", foo.Parents[0].Name)
	assert.Equal(t, &StringValue{Text: "format", At: Pos{File: "groups.td", Line: 6, Column: 21}}, foo.Parents[0].Args[0])

	bar := file.Statements[2].(*Def)
	require.Len(t, bar.Parents, 2)
	assert.Equal(t, "DiagCategory", bar.Parents[1].Name)
	list := bar.Parents[0].Args[1].(*ListValue)
	require.Len(t, list.Elements, 1)
	assert.Equal(t, "Foo", list.Elements[0].(*Identifier).Name)

	anon := file.Statements[3].(*Def)
	assert.Empty(t, anon.Name)
	assert.Equal(t, "", anon.Parents[0].Args[0].(*StringValue).Text)

	documented := file.Statements[4].(*Def)
	require.Len(t, documented.Parents[0].Args, 3)
	assert.IsType(t, &CodeValue{}, documented.Parents[0].Args[2])
}

func TestParse_NestedStatements(t *testing.T) {
	src := `
include "Other.td"
let CategoryName = "Semantic Issue" in {
  def A : DiagGroup<"a">;
  let Hidden = 1 in
  def B : DiagGroup<"b", [A]>;
}
defset list<DiagGroup> All = {
  def C : DiagGroup<"c">;
}
multiclass M<string n> { def _x : DiagGroup<n>; }
defm D : M<"d">;
defvar v = !listconcat([A], [B]);
foreach i = [1, 2] in {
  def E#i : DiagGroup<"e">;
}
if true then { def F; } else { def G; }
assert !eq(1, 1), "ok";
def H { bits<4> Inst; let Inst{3-0} = 0b1010; }
def I : Base<(ops GPR:$a, $b), !cond(true : 1, false : 2)>;
`
	file, err := Parse("nested.td", []byte(src))
	require.NoError(t, err)
	require.Len(t, file.Statements, 11)

	inc := file.Statements[0].(*Include)
	assert.Equal(t, "Other.td", inc.Path)

	let := file.Statements[1].(*Let)
	require.Len(t, let.Bindings, 1)
	assert.Equal(t, "CategoryName", let.Bindings[0].Name)
	require.Len(t, let.Body, 2)
	inner := let.Body[1].(*Let)
	require.Len(t, inner.Body, 1)
	assert.Equal(t, "B", inner.Body[0].(*Def).Name)

	defset := file.Statements[2].(*Defset)
	assert.Equal(t, "All", defset.Name)
	require.Len(t, defset.Body, 1)

	var keywords []string
	for _, stmt := range file.Statements[3:9] {
		keywords = append(keywords, stmt.(*Skipped).Keyword)
	}
	assert.Equal(t, []string{"multiclass", "defm", "defvar", "foreach", "if", "assert"}, keywords)

	assert.Equal(t, "H", file.Statements[9].(*Def).Name)
	i := file.Statements[10].(*Def)
	require.Len(t, i.Parents[0].Args, 2)
	assert.IsType(t, &DagValue{}, i.Parents[0].Args[0])
	assert.IsType(t, &BangValue{}, i.Parents[0].Args[1])
}

func TestParse_PastedName(t *testing.T) {
	file, err := Parse("", []byte(`def NAME#Suffix : DiagGroup<"x">;`))
	require.NoError(t, err)
	assert.Equal(t, "NAMESuffix", file.Statements[0].(*Def).Name)
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"missing semicolon": `def Foo : DiagGroup<"x">`,
		"unclosed args":     `def Foo : DiagGroup<"x", [A>;`,
		"unclosed block":    `let A = 1 in { def B;`,
		"stray token":       `42;`,
		"include path":      `include Foo`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse("bad.td", []byte(src))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrSyntax)
		})
	}
}

func TestParseFile(t *testing.T) {
	file, err := ParseFile(filepath.Join("testdata", "groups.td"))
	require.NoError(t, err)
	assert.NotEmpty(t, file.Statements)

	_, err = ParseFile(filepath.Join("testdata", "missing.td"))
	require.Error(t, err)
}
