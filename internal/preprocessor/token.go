package preprocessor

import "fmt"

// Kind classifies one lexical unit of the source buffer.
type Kind int

const (
	EOF Kind = iota
	Newline
	Unknown
	Ident
	PPNumber
	CharLit
	StringLit

	// Punctuators
	LBracket // [
	RBracket // ]
	LParen   // (
	RParen   // )
	LBrace   // {
	RBrace   // }
	Dot      // .
	Arrow    // ->
	PlusPlus // ++
	MinusMinus
	Amp  // &
	Star // *
	Plus
	Minus
	Tilde // ~
	Not   // !
	Slash // /
	Percent
	Shl // <<
	Shr // >>
	Less
	Greater
	LessEq
	GreaterEq
	EqEq  // ==
	NotEq // !=
	Caret // ^
	Pipe  // |
	AndAnd
	OrOr
	Question
	Colon
	Semicolon
	Ellipsis // ...
	Assign
	StarAssign
	SlashAssign
	PercentAssign
	PlusAssign
	MinusAssign
	ShlAssign // <<=
	ShrAssign // >>=
	AmpAssign
	CaretAssign
	PipeAssign
	Comma

	Hash     // #
	HashHash // ##
)

// Token is a view into the source buffer, never an owned copy. For any
// token other than EOF, Begin+Len never exceeds the buffer length.
type Token struct {
	Begin int
	Len   int
	Kind  Kind
}

// End returns the offset just past the token.
func (t Token) End() int { return t.Begin + t.Len }

// Punctuator lookup, longest form first (maximal munch).
var punct3 = map[string]Kind{
	"<<=": ShlAssign,
	">>=": ShrAssign,
	"...": Ellipsis,
}

var punct2 = map[string]Kind{
	"->": Arrow,
	"++": PlusPlus,
	"--": MinusMinus,
	"<<": Shl,
	">>": Shr,
	"<=": LessEq,
	">=": GreaterEq,
	"==": EqEq,
	"!=": NotEq,
	"&&": AndAnd,
	"||": OrOr,
	"*=": StarAssign,
	"/=": SlashAssign,
	"%=": PercentAssign,
	"+=": PlusAssign,
	"-=": MinusAssign,
	"&=": AmpAssign,
	"^=": CaretAssign,
	"|=": PipeAssign,
}

var punct1 = map[byte]Kind{
	'[': LBracket,
	']': RBracket,
	'(': LParen,
	')': RParen,
	'{': LBrace,
	'}': RBrace,
	'.': Dot,
	'&': Amp,
	'*': Star,
	'+': Plus,
	'-': Minus,
	'~': Tilde,
	'!': Not,
	'/': Slash,
	'%': Percent,
	'<': Less,
	'>': Greater,
	'^': Caret,
	'|': Pipe,
	'?': Question,
	':': Colon,
	';': Semicolon,
	'=': Assign,
	',': Comma,
}

var kindNames = map[Kind]string{
	EOF:       "EOF",
	Newline:   "NEWLINE",
	Unknown:   "UNKNOWN",
	Ident:     "IDENT",
	PPNumber:  "PPNUMBER",
	CharLit:   "CHAR",
	StringLit: "STRING",
	Hash:      "#",
	HashHash:  "##",
}

func init() {
	for s, k := range punct3 {
		kindNames[k] = s
	}
	for s, k := range punct2 {
		kindNames[k] = s
	}
	for b, k := range punct1 {
		kindNames[k] = string(b)
	}
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// directive identifies a recognized #-keyword. The scanner itself is
// keyword-agnostic: it always emits Ident, and the dispatcher
// reclassifies the identifier only when it is the first token after an
// unconsumed '#'. An identifier spelled "if" in ordinary text is plain
// text.
type directive int

const (
	dirNone directive = iota
	dirInclude
	dirDefine
	dirUndef
	dirIf
	dirElse
	dirEndif
)

var directives = map[string]directive{
	"include": dirInclude,
	"define":  dirDefine,
	"undef":   dirUndef,
	"if":      dirIf,
	"else":    dirElse,
	"endif":   dirEndif,
}

func directiveFor(name string) directive { return directives[name] }
