package cond

import "fmt"

// ParseError reports a lexical or syntactic failure, carrying the byte span
// [L,R) of the offending input.
type ParseError struct {
	Msg  string
	L, R int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at byte %d..%d: %s", e.L, e.R, e.Msg)
}

func parseErr(msg string, l, r int) *ParseError {
	return &ParseError{Msg: msg, L: l, R: r}
}
