package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid execution context")

	// Case submission flow
	ErrUnknownService       = errors.New("unknown service type")
	ErrUnknownDocumentSlot  = errors.New("unknown document slot")
	ErrNotAtReview          = errors.New("flow is not at the review step")
	ErrIncompleteFlow       = errors.New("flow is missing required input")
	ErrSubmissionInProgress = errors.New("submission already in progress")
	ErrTooManySubmissions   = errors.New("too many submissions")
	ErrFlowChanged          = errors.New("flow changed during submission")

	// Case registry
	ErrInvalidStatus = errors.New("invalid case status")
)
