package quotewatch

import "errors"

var (
	// Work item errors.
	ErrMissingAPITag    = errors.New("quotewatch: missing api tag")
	ErrUnknownRequest   = errors.New("quotewatch: unknown request variant")
	ErrAmbiguousRequest = errors.New("quotewatch: more than one request payload populated")
	ErrTagMismatch      = errors.New("quotewatch: api tag does not match queue tag")

	// Store errors.
	ErrStoreClosed = errors.New("quotewatch: store closed")

	// Configuration errors.
	ErrInvalidConfig = errors.New("quotewatch: invalid configuration")
)
