package types

import "errors"

// Attribute errors.
var (
	ErrNotDeclared      = errors.New("attribute not declared")
	ErrInvalidPromotion = errors.New("instance is not promoted")
	ErrInvalidName      = errors.New("invalid name")
)

// Registry errors.
var (
	ErrTypeNotFound     = errors.New("type not found")
	ErrInstanceNotFound = errors.New("instance not found")
	ErrDuplicateName    = errors.New("duplicate name")
	ErrCycle            = errors.New("type hierarchy contains a cycle")
)
