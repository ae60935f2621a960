// Package common defines shared constants and sentinel errors used across
// the pipeline stages. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Input validation errors (bad or missing request fields).
	ErrValidation = errors.New("validation error")

	// Blob storage errors. ErrNotFound means the source object does not
	// exist; ErrTransfer covers every other fetch failure.
	ErrNotFound = errors.New("not found")
	ErrTransfer = errors.New("transfer error")

	// Credential resolution / refresh errors.
	ErrAuth = errors.New("auth error")

	// Resumable upload errors (terminal, never retried by the orchestrator).
	ErrUpload = errors.New("upload error")
)
