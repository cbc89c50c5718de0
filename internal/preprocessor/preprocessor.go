package preprocessor

import (
	"fmt"
	"strings"
)

// ---------------- PreProcessor ----------------

// IncludeResolver supplies the text of an included header. The core
// validates the quoted name and splices whatever the resolver returns;
// path search and file I/O stay outside the core.
type IncludeResolver interface {
	Resolve(name string) (string, error)
}

// PreProcessor owns one source buffer for the lifetime of one
// processing pass. All state (macro table, conditional frames, cursor)
// is scoped to the value, so independent sessions can run side by side;
// a single value is not safe for concurrent use.
type PreProcessor struct {
	sc       *scanner
	macros   *MacroTable
	cond     condStack
	resolver IncludeResolver
}

func New(src string) *PreProcessor {
	return &PreProcessor{sc: newScanner(src), macros: NewMacroTable()}
}

// SetResolver installs the collaborator that loads #include texts. With
// no resolver, #include is validated and otherwise ignored.
func (p *PreProcessor) SetResolver(r IncludeResolver) { p.resolver = r }

// Define installs an object macro before a pass (a -D style predefine).
func (p *PreProcessor) Define(name, value string) { p.macros.DefineObject(name, value) }

// Undef removes a macro of either kind.
func (p *PreProcessor) Undef(name string) { p.macros.Undef(name) }

// Macros exposes the session's macro table.
func (p *PreProcessor) Macros() *MacroTable { return p.macros }

// Next returns the next raw token without directive or macro handling.
func (p *PreProcessor) Next() Token { return p.sc.next() }

// Text returns the buffer text a token refers to.
func (p *PreProcessor) Text(t Token) string { return p.sc.text(t) }

// Buffer returns the current source text, including any spliced
// includes.
func (p *PreProcessor) Buffer() string { return p.sc.buf }

// LineCol maps a byte offset to a 1-based line and column.
func (p *PreProcessor) LineCol(off int) (line, col int) { return p.sc.lines.LineCol(off) }

// CondDepth reports the number of open conditional frames.
func (p *PreProcessor) CondDepth() int { return p.cond.depth() }

// Process runs a full pass applying #define/#undef/#if/#else/#endif
// semantics without producing substituted output text.
func (p *PreProcessor) Process() error { return p.run(nil) }

// Expand runs a full pass performing directive handling, conditional
// pruning and macro substitution, returning the resulting text.
func (p *PreProcessor) Expand() (string, error) {
	var out strings.Builder
	if err := p.run(&out); err != nil {
		return "", err
	}
	return strings.TrimRight(out.String(), " \t"), nil
}

// run is the main loop. With out == nil only directive semantics are
// applied; plain tokens are consumed without expansion or emission.
func (p *PreProcessor) run(out *strings.Builder) error {
	for {
		tok := p.sc.next()
		switch tok.Kind {
		case EOF:
			if top := p.cond.top(); top != nil {
				return &SyntaxError{Offset: top.begin, Msg: "unterminated conditional"}
			}
			return nil
		case Newline:
			// Visible to directive readers, excluded from output.
		case Hash:
			if err := p.directive(tok); err != nil {
				return err
			}
		case Ident:
			if out != nil {
				p.expandIdent(out, tok)
			}
		default:
			p.emit(out, p.sc.text(tok), respaceAfter(tok.Kind))
		}
	}
}

// ---------------- Directives ----------------

func (p *PreProcessor) directive(hash Token) error {
	name := p.sc.next()
	if name.Kind != Ident {
		return &UnknownDirectiveError{Offset: hash.Begin, Name: p.sc.text(name)}
	}
	switch directiveFor(p.sc.text(name)) {
	case dirInclude:
		return p.handleInclude()
	case dirDefine:
		return p.handleDefine()
	case dirUndef:
		return p.handleUndef()
	case dirIf:
		return p.handleIf(hash)
	case dirElse:
		return p.handleElse()
	case dirEndif:
		// A dangling #endif with no open frame is a no-op.
		p.cond.pop()
		return nil
	default:
		return &UnknownDirectiveError{Offset: hash.Begin, Name: p.sc.text(name)}
	}
}

func (p *PreProcessor) handleDefine() error {
	name := p.sc.next()
	if name.Kind != Ident {
		return &SyntaxError{Offset: name.Begin, Msg: "expected identifier after #define"}
	}
	macro := p.sc.text(name)

	// Function-like only when '(' immediately follows the name, with no
	// intervening whitespace.
	if name.End() < len(p.sc.buf) && p.sc.buf[name.End()] == '(' {
		p.sc.next() // consume '('
		params, err := p.parseParams()
		if err != nil {
			return err
		}
		p.macros.DefineFunc(macro, params, trimText(p.readLineRest()))
		return nil
	}
	p.macros.DefineObject(macro, trimText(p.readLineRest()))
	return nil
}

// parseParams reads a comma-separated identifier list terminated by ')'.
func (p *PreProcessor) parseParams() ([]string, error) {
	params := []string{}
	tok := p.sc.next()
	if tok.Kind == RParen {
		return params, nil
	}
	for {
		if tok.Kind != Ident {
			return nil, &SyntaxError{Offset: tok.Begin, Msg: "expected parameter name in macro definition"}
		}
		params = append(params, p.sc.text(tok))
		tok = p.sc.next()
		if tok.Kind == RParen {
			return params, nil
		}
		if tok.Kind != Comma {
			return nil, &SyntaxError{Offset: tok.Begin, Msg: "expected ',' or ')' in macro parameter list"}
		}
		tok = p.sc.next()
	}
}

func (p *PreProcessor) handleUndef() error {
	name := p.sc.next()
	if name.Kind != Ident {
		return &SyntaxError{Offset: name.Begin, Msg: "expected identifier after #undef"}
	}
	p.macros.Undef(p.sc.text(name))
	return nil
}

func (p *PreProcessor) handleInclude() error {
	header := p.sc.next()
	if header.Kind != StringLit {
		return &SyntaxError{Offset: header.Begin, Msg: "expected header name after #include"}
	}
	if p.resolver == nil {
		return nil
	}
	name := strings.Trim(p.sc.text(header), `"`)
	text, err := p.resolver.Resolve(name)
	if err != nil {
		return fmt.Errorf("include %q: %w", name, err)
	}
	p.readLineRest() // discard the rest of the directive line
	p.sc.splice(text)
	return nil
}

func (p *PreProcessor) handleIf(hash Token) error {
	cond := trimText(p.readLineRest())
	if evalCondition(cond, p.macros) {
		p.cond.push(condActive, hash.Begin)
		return nil
	}
	p.cond.push(condSkipToElse, hash.Begin)
	return p.skipBranch(true)
}

func (p *PreProcessor) handleElse() error {
	// Reaching #else while active means this frame's first branch was
	// taken; the else branch is suppressed. A dangling #else is not
	// validated and skips ahead the same way.
	if top := p.cond.top(); top != nil {
		top.state = condSkipAfterElse
	}
	return p.skipBranch(false)
}

// skipBranch suppresses tokens until the innermost frame's #else (when
// stopAtElse) or #endif. Nested #if/#endif pairs are depth-counted so a
// nested block's terminator is never mistaken for this frame's;
// directives inside the skipped range are counted but not executed.
func (p *PreProcessor) skipBranch(stopAtElse bool) error {
	depth := 0
	for {
		tok := p.sc.next()
		switch tok.Kind {
		case EOF:
			off := tok.Begin
			if top := p.cond.top(); top != nil {
				off = top.begin
			}
			return &SyntaxError{Offset: off, Msg: "unterminated conditional"}
		case Hash:
			name := p.sc.next()
			if name.Kind != Ident {
				continue
			}
			switch directiveFor(p.sc.text(name)) {
			case dirIf:
				depth++
			case dirElse:
				if depth == 0 && stopAtElse {
					if top := p.cond.top(); top != nil {
						top.state = condActive
					}
					return nil
				}
			case dirEndif:
				if depth == 0 {
					p.cond.pop()
					return nil
				}
				depth--
			}
		}
	}
}

// readLineRest returns the raw text from the cursor to the end of the
// current line, leaving the cursor at the line break.
func (p *PreProcessor) readLineRest() string {
	start := p.sc.cur
	for p.sc.cur < len(p.sc.buf) && p.sc.buf[p.sc.cur] != '\n' {
		p.sc.cur++
	}
	return p.sc.buf[start:p.sc.cur]
}

// ---------------- Expansion ----------------

func (p *PreProcessor) expandIdent(out *strings.Builder, tok Token) {
	name := p.sc.text(tok)
	if fm, ok := p.macros.Func(name); ok {
		if p.atCallParen() {
			args := p.scanArgs()
			p.emit(out, substitute(fm, args), true)
			return
		}
		// Function-like macros only expand at call syntax.
		p.emit(out, name, true)
		return
	}
	if om, ok := p.macros.Object(name); ok {
		p.emit(out, om.Body, true)
		return
	}
	p.emit(out, name, true)
}

// atCallParen looks ahead for '(' on the same line, skipping spaces and
// block comments. The cursor is consumed through the paren on a match
// and restored otherwise.
func (p *PreProcessor) atCallParen() bool {
	save := p.sc.cur
	for p.sc.cur < len(p.sc.buf) {
		c := p.sc.buf[p.sc.cur]
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			p.sc.cur++
		case c == '/' && strings.HasPrefix(p.sc.buf[p.sc.cur:], "/*"):
			end := strings.Index(p.sc.buf[p.sc.cur+2:], "*/")
			if end < 0 {
				p.sc.cur = save
				return false
			}
			p.sc.cur += 2 + end + 2
		case c == '(':
			p.sc.cur++
			return true
		default:
			p.sc.cur = save
			return false
		}
	}
	p.sc.cur = save
	return false
}

// scanArgs reads a call's arguments after the opening paren by raw
// character scanning. A comma at depth zero separates arguments; nested
// parentheses and quoted literals are retained verbatim inside the
// current argument. The end of the buffer closes the call permissively.
func (p *PreProcessor) scanArgs() []string {
	var args []string
	var cur strings.Builder
	depth := 0
	for p.sc.cur < len(p.sc.buf) {
		c := p.sc.buf[p.sc.cur]
		p.sc.cur++
		switch {
		case c == '(':
			depth++
			cur.WriteByte(c)
		case c == ')':
			if depth == 0 {
				return append(args, strings.TrimSpace(cur.String()))
			}
			depth--
			cur.WriteByte(c)
		case c == ',' && depth == 0:
			args = append(args, strings.TrimSpace(cur.String()))
			cur.Reset()
		case c == '"' || c == '\'':
			cur.WriteByte(c)
			p.copyQuoted(&cur, c)
		default:
			cur.WriteByte(c)
		}
	}
	return append(args, strings.TrimSpace(cur.String()))
}

func (p *PreProcessor) copyQuoted(b *strings.Builder, quote byte) {
	for p.sc.cur < len(p.sc.buf) {
		c := p.sc.buf[p.sc.cur]
		p.sc.cur++
		b.WriteByte(c)
		if c == '\\' && p.sc.cur < len(p.sc.buf) {
			b.WriteByte(p.sc.buf[p.sc.cur])
			p.sc.cur++
			continue
		}
		if c == quote {
			return
		}
	}
}

// substitute replaces whole-identifier occurrences of each parameter in
// the replacement text with the corresponding trimmed argument, leaving
// string/char literals and comments untouched. Parameters without a
// matching argument stay literal; extra arguments are ignored. The
// result is emitted as-is: it is not re-scanned for further macro names.
func substitute(m FuncMacro, args []string) string {
	repl := make(map[string]string, len(m.Params))
	for i, param := range m.Params {
		if i < len(args) {
			repl[param] = args[i]
		}
	}
	if len(repl) == 0 {
		return m.Body
	}

	var b strings.Builder
	s := m.Body
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '"' || c == '\'':
			start := i
			for i++; i < len(s); i++ {
				if s[i] == '\\' {
					i++
					continue
				}
				if s[i] == c {
					i++
					break
				}
			}
			b.WriteString(s[start:i])
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			b.WriteString(s[i:])
			i = len(s)
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			start := i
			if j := strings.Index(s[i+2:], "*/"); j >= 0 {
				i += 2 + j + 2
			} else {
				i = len(s)
			}
			b.WriteString(s[start:i])
		case isIdentStart(c):
			j := i + 1
			for j < len(s) && isIdentPart(s[j]) {
				j++
			}
			name := s[i:j]
			if arg, ok := repl[name]; ok {
				b.WriteString(arg)
			} else {
				b.WriteString(name)
			}
			i = j
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// ---------------- Output respacing ----------------

// emit writes text followed by a single space under the respacing
// policy, unless the immediately following raw byte is ';', '(' or ')'.
// Cosmetic normalization only; any deterministic policy would do.
func (p *PreProcessor) emit(out *strings.Builder, text string, respace bool) {
	if out == nil || text == "" {
		return
	}
	out.WriteString(text)
	if !respace || p.sc.cur >= len(p.sc.buf) {
		return
	}
	switch p.sc.buf[p.sc.cur] {
	case ';', '(', ')':
		return
	}
	out.WriteByte(' ')
}

func respaceAfter(k Kind) bool {
	switch k {
	case Ident, PPNumber, StringLit, CharLit, Semicolon, Comma,
		Assign, Plus, Minus, Star, Slash, Percent,
		Less, Greater, LessEq, GreaterEq, EqEq, NotEq,
		AndAnd, OrOr, Question, Colon:
		return true
	}
	return false
}

// ---------------- Replacement-text trimming ----------------

// trimText strips surrounding whitespace, a trailing line comment, and
// complete block comments at either end of a replacement text. Interior
// comments are retained.
func trimText(s string) string {
	s = cutLineComment(s)
	for {
		s = strings.TrimSpace(s)
		if strings.HasPrefix(s, "/*") {
			if j := strings.Index(s, "*/"); j >= 0 {
				s = s[j+2:]
				continue
			}
		}
		if strings.HasSuffix(s, "*/") {
			if j := strings.LastIndex(s, "/*"); j >= 0 && strings.Index(s[j+2:], "*/")+j+4 == len(s) {
				s = s[:j]
				continue
			}
		}
		return s
	}
}

// cutLineComment removes a // comment, ignoring markers inside quoted
// literals and inside block comments.
func cutLineComment(s string) string {
	for i := 0; i+1 < len(s); i++ {
		switch s[i] {
		case '"', '\'':
			q := s[i]
			for i++; i < len(s); i++ {
				if s[i] == '\\' {
					i++
					continue
				}
				if s[i] == q {
					break
				}
			}
		case '/':
			if s[i+1] == '/' {
				return s[:i]
			}
			if s[i+1] == '*' {
				j := strings.Index(s[i+2:], "*/")
				if j < 0 {
					return s
				}
				i += 2 + j + 1
			}
		}
	}
	return s
}
