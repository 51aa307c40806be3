package apperrors

import "errors"

var (
	ErrMissingInput = errors.New("input feed not found")
	ErrBadHeader    = errors.New("input feed has no header row")
	ErrWriteOutput  = errors.New("failed to write output artifact")
)
