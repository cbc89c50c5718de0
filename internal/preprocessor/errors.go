package preprocessor

import "fmt"

// SyntaxError reports a malformed directive: a missing identifier after
// #define/#undef, a bad parameter list, a missing header name after
// #include, or an unterminated conditional. Offset is a byte offset
// into the buffer; translate it with LineCol for reporting.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Offset, e.Msg)
}

// UnknownDirectiveError reports '#' followed by a keyword outside the
// recognized directive set.
type UnknownDirectiveError struct {
	Offset int
	Name   string
}

func (e *UnknownDirectiveError) Error() string {
	return fmt.Sprintf("unknown directive %q at offset %d", e.Name, e.Offset)
}
