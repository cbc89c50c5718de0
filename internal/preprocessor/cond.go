package preprocessor

import (
	"regexp"
	"strconv"
	"strings"
)

// ---------------- Conditionals ----------------

// condState tracks how one open #if treats the tokens under it.
type condState int

const (
	// condActive: tokens are processed and emitted normally, including
	// nested directives.
	condActive condState = iota
	// condSkipToElse: suppressing the taken-false branch while scanning
	// for this level's #else or #endif.
	condSkipToElse
	// condSkipAfterElse: suppressing the non-taken branch after #else
	// was resolved, scanning only for #endif.
	condSkipAfterElse
)

// condFrame is the state of one open #if through its #else/#endif
// resolution. Frames nest; only the innermost governs emission.
type condFrame struct {
	state condState
	begin int // offset of the opening #if, for diagnostics
}

type condStack struct {
	frames []condFrame
}

// depth equals the current conditional nesting level.
func (c *condStack) depth() int { return len(c.frames) }

func (c *condStack) push(state condState, begin int) {
	c.frames = append(c.frames, condFrame{state: state, begin: begin})
}

func (c *condStack) pop() {
	if len(c.frames) > 0 {
		c.frames = c.frames[:len(c.frames)-1]
	}
}

func (c *condStack) top() *condFrame {
	if len(c.frames) == 0 {
		return nil
	}
	return &c.frames[len(c.frames)-1]
}

// ---------------- Condition evaluation ----------------

var reDefined = regexp.MustCompile(`^defined\(\s*([A-Za-z_][A-Za-z0-9_]*)\s*\)$`)

// evalCondition decides an #if condition. Supported forms: defined(NAME),
// a single macro name (its replacement text is then read as a literal),
// and an integer literal. Arbitrary expressions are not supported; an
// unparseable condition is false.
func evalCondition(expr string, macros *MacroTable) bool {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return false
	}
	if m := reDefined.FindStringSubmatch(expr); m != nil {
		return macros.IsDefined(m[1])
	}
	if isIdentText(expr) {
		om, ok := macros.Object(expr)
		if !ok {
			return false
		}
		return parseLiteral(strings.TrimSpace(om.Body))
	}
	return parseLiteral(expr)
}

// parseLiteral reads a decimal or 0x-prefixed hex integer with an
// optional leading '-'. Nonzero is true; zero or unparseable is false.
func parseLiteral(s string) bool {
	s = strings.TrimPrefix(s, "-")
	var v uint64
	var err error
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err = strconv.ParseUint(s[2:], 16, 64)
	} else {
		v, err = strconv.ParseUint(s, 10, 64)
	}
	return err == nil && v != 0
}

func isIdentText(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentPart(s[i]) {
			return false
		}
	}
	return true
}
