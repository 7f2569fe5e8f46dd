package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors for construction and evaluation contract violations.
// All are surfaced synchronously by the call that violates the contract;
// a failed call never leaves partial state behind.
var (
	ErrDuplicateName    = errors.New("duplicate node name")
	ErrUnknownOperation = errors.New("unknown operation")
	ErrArityMismatch    = errors.New("arity mismatch")
	ErrUnknownUpstream  = errors.New("unknown upstream node")
	ErrUnknownNode      = errors.New("unknown node")
)

// OpError reports an operation failure during evaluation, identifying the
// failing node. Values cached before the failure remain cached.
type OpError struct {
	Node string
	Op   string
	Err  error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("node %s: operation %s: %v", e.Node, e.Op, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }
