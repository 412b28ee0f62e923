package domain

import "errors"

// Build validation errors
var (
	ErrBuildNameRequired = errors.New("build name is required")
	ErrInvalidVisibility = errors.New("invalid visibility")
	ErrInvalidTier       = errors.New("invalid tier")
	ErrInvalidDifficulty = errors.New("difficulty must be between 0 and 64")
)

// Build errors
var (
	ErrBuildNotFound = errors.New("build not found")
	ErrNotBuildOwner = errors.New("only the build owner can perform this action")
)
