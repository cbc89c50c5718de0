package preprocessor

import "testing"

func TestEvalCondition(t *testing.T) {
	macros := NewMacroTable()
	macros.DefineObject("DEBUG", "1")
	macros.DefineObject("RELEASE", "0")
	macros.DefineObject("MASK", "0xFF")
	macros.DefineObject("NAME", "foo")
	macros.DefineFunc("SQ", []string{"x"}, "((x) * (x))")

	tests := []struct {
		expr string
		want bool
	}{
		{"1", true},
		{"0", false},
		{"42", true},
		{"-1", true},
		{"0x0", false},
		{"0x10", true},
		{"", false},
		{"DEBUG", true},
		{"RELEASE", false},
		{"MASK", true},
		{"NAME", false},      // replacement text is not an integer
		{"UNDEFINED", false}, // undefined name
		{"SQ", false},        // function-like names do not evaluate
		{"defined(DEBUG)", true},
		{"defined(SQ)", true},
		{"defined( DEBUG )", true},
		{"defined(NOPE)", false},
		{"1 + 2", false}, // arbitrary expressions are unsupported
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			if got := evalCondition(tt.expr, macros); got != tt.want {
				t.Errorf("evalCondition(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestCondStack(t *testing.T) {
	var c condStack
	if c.depth() != 0 || c.top() != nil {
		t.Fatal("empty stack not empty")
	}

	c.push(condActive, 0)
	c.push(condSkipToElse, 10)
	if c.depth() != 2 {
		t.Errorf("depth = %d, want 2", c.depth())
	}
	if top := c.top(); top == nil || top.state != condSkipToElse || top.begin != 10 {
		t.Errorf("top = %+v", c.top())
	}

	c.top().state = condActive
	if c.top().state != condActive {
		t.Error("top mutation not visible")
	}

	c.pop()
	if top := c.top(); top == nil || top.begin != 0 {
		t.Errorf("top after pop = %+v", top)
	}
	c.pop()
	c.pop() // popping an empty stack is a no-op
	if c.depth() != 0 {
		t.Errorf("depth = %d, want 0", c.depth())
	}
}
