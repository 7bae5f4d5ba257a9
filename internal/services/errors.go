package services

import "errors"

// Terminal request outcomes. Controllers map these onto the opaque HTTP
// surface; anything else is a storage failure and surfaces as a server error,
// never as one of the access outcomes.
var (
	// ErrAccessDenied covers every credential mismatch: wrong admin token,
	// wrong sync token, unknown public_id, wrong secret. The causes are
	// deliberately not distinguished.
	ErrAccessDenied = errors.New("access denied")

	// ErrNotFound means the identifier never existed.
	ErrNotFound = errors.New("not found")

	// ErrPartialApply means a snapshot push failed mid-apply and was rolled
	// back. It must never be reported as success.
	ErrPartialApply = errors.New("snapshot not applied")
)
