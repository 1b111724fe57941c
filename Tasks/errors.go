package Tasks

import "errors"

var (
	// ErrClientNotFound: the referenced client id does not exist.
	ErrClientNotFound = errors.New("client not found")
	// ErrTaskNotFound: a monthly task id does not exist or belongs to a
	// different client than claimed.
	ErrTaskNotFound = errors.New("monthly task not found")
	// ErrTemplateNotFound: the propagation source year has no stored
	// template, or an empty one.
	ErrTemplateNotFound = errors.New("no task template for source year")
	// ErrYearFinalized: a direct template edit targeted a finalized year.
	ErrYearFinalized = errors.New("year is finalized")
	// ErrValidation: malformed request, rejected before any lock is taken.
	ErrValidation = errors.New("invalid request")
)
