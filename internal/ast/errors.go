package ast

import "fmt"

// MalformedAST reports an ingested or transformed node that lacks an
// expected field or carries an invalid value (spec.md §7).
type MalformedAST struct {
	Node Kind
	Msg  string
}

func (e *MalformedAST) Error() string {
	return fmt.Sprintf("malformed AST at %s: %s", e.Node, e.Msg)
}

// NewMalformedAST wraps a node kind and message into a MalformedAST error.
func NewMalformedAST(k Kind, format string, args ...any) error {
	return &MalformedAST{Node: k, Msg: fmt.Sprintf(format, args...)}
}

// UnsupportedConstruct reports a node kind or literal form the source
// builder does not know how to emit. It is a warning-level condition:
// the builder emits nothing for the offending node and continues
// (spec.md §7), so this type is carried for logging, not propagated as
// a fatal pipeline error.
type UnsupportedConstruct struct {
	Node Kind
	Msg  string
}

func (e *UnsupportedConstruct) Error() string {
	return fmt.Sprintf("unsupported construct at %s: %s", e.Node, e.Msg)
}

func NewUnsupportedConstruct(k Kind, format string, args ...any) error {
	return &UnsupportedConstruct{Node: k, Msg: fmt.Sprintf(format, args...)}
}
