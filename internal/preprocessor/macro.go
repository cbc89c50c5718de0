package preprocessor

// ObjectMacro is a #define with no parameter list; its name is replaced
// verbatim by the stored text.
type ObjectMacro struct {
	Name string
	Body string
}

// FuncMacro is a #define with a parenthesized parameter list
// immediately after the name; it expands only at call syntax.
type FuncMacro struct {
	Name   string
	Params []string
	Body   string
}

// MacroTable maps macro names to their definitions. A name refers to at
// most one definition of one kind at any instant; redefinition
// overwrites without conflict checking.
type MacroTable struct {
	obj map[string]ObjectMacro
	fn  map[string]FuncMacro
}

func NewMacroTable() *MacroTable {
	return &MacroTable{
		obj: map[string]ObjectMacro{},
		fn:  map[string]FuncMacro{},
	}
}

func (t *MacroTable) DefineObject(name, body string) {
	delete(t.fn, name)
	t.obj[name] = ObjectMacro{Name: name, Body: body}
}

func (t *MacroTable) DefineFunc(name string, params []string, body string) {
	delete(t.obj, name)
	t.fn[name] = FuncMacro{Name: name, Params: params, Body: body}
}

// Undef removes the definition of name of either kind; an absent name
// is a no-op.
func (t *MacroTable) Undef(name string) {
	delete(t.obj, name)
	delete(t.fn, name)
}

func (t *MacroTable) Object(name string) (ObjectMacro, bool) {
	m, ok := t.obj[name]
	return m, ok
}

func (t *MacroTable) Func(name string) (FuncMacro, bool) {
	m, ok := t.fn[name]
	return m, ok
}

func (t *MacroTable) IsDefined(name string) bool {
	_, ok1 := t.obj[name]
	_, ok2 := t.fn[name]
	return ok1 || ok2
}
