package preprocessor

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMacroTableDefine(t *testing.T) {
	tbl := NewMacroTable()
	tbl.DefineObject("PI", "3.14159")
	tbl.DefineFunc("SQUARE", []string{"x"}, "((x) * (x))")

	om, ok := tbl.Object("PI")
	if !ok || om.Body != "3.14159" {
		t.Errorf("Object(PI) = %+v, %v", om, ok)
	}
	fm, ok := tbl.Func("SQUARE")
	if !ok {
		t.Fatal("Func(SQUARE) not found")
	}
	if diff := cmp.Diff([]string{"x"}, fm.Params); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
	if !tbl.IsDefined("PI") || !tbl.IsDefined("SQUARE") || tbl.IsDefined("E") {
		t.Error("IsDefined answers wrong")
	}
}

func TestMacroTableRedefine(t *testing.T) {
	tbl := NewMacroTable()
	tbl.DefineObject("A", "1")
	tbl.DefineObject("A", "2")
	if om, _ := tbl.Object("A"); om.Body != "2" {
		t.Errorf("Object(A).Body = %q, want %q", om.Body, "2")
	}
}

func TestMacroTableCrossKindOverwrite(t *testing.T) {
	// A name holds at most one definition of one kind at any instant.
	tbl := NewMacroTable()
	tbl.DefineObject("M", "1")
	tbl.DefineFunc("M", []string{"x"}, "x")
	if _, ok := tbl.Object("M"); ok {
		t.Error("object definition survived function redefinition")
	}
	if _, ok := tbl.Func("M"); !ok {
		t.Error("function definition missing")
	}

	tbl.DefineObject("M", "2")
	if _, ok := tbl.Func("M"); ok {
		t.Error("function definition survived object redefinition")
	}
}

func TestMacroTableUndef(t *testing.T) {
	tbl := NewMacroTable()
	tbl.DefineObject("A", "1")
	tbl.DefineFunc("F", nil, "0")

	tbl.Undef("A")
	tbl.Undef("F")
	tbl.Undef("NEVER_DEFINED") // no-op
	if tbl.IsDefined("A") || tbl.IsDefined("F") {
		t.Error("Undef left a definition behind")
	}
}
