package shared

import "errors"

var (
	// ErrInvalidSignature occurs when a webhook payload fails verification.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrStaleTimestamp occurs when a webhook timestamp is outside the
	// accepted tolerance window.
	ErrStaleTimestamp = errors.New("webhook timestamp outside tolerance")
)
