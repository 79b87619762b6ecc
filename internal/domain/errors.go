package domain

import "errors"

var (
	// ErrNotFound is returned when an id does not exist in the repository.
	ErrNotFound = errors.New("not found")

	// ErrValidation covers rejected drafts: missing name/price, non-positive
	// price, unknown category, image payload over the ceiling.
	ErrValidation = errors.New("validation failed")

	// ErrRetrieval covers ListAll transport or service failures.
	ErrRetrieval = errors.New("retrieval failed")

	// ErrWrite covers create/update/delete transport or service failures.
	ErrWrite = errors.New("write failed")

	// ErrDecode covers unreadable image files during ingestion.
	ErrDecode = errors.New("image decode failed")
)
