package match

import "fmt"

// CompileError reports a matcher constraint violated during lowering.
type CompileError struct {
	Msg string
}

func (e *CompileError) Error() string {
	return "compile error: " + e.Msg
}

// EvalError reports a strategy that cannot evaluate a subtree, e.g. a
// conjunction inside a regex rendering.
type EvalError struct {
	Strategy string
	Msg      string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("eval error in %s: %s", e.Strategy, e.Msg)
}
