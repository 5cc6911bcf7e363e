package domain

import "errors"

var (
	// ErrInternalServerError will throw if any the Internal Server Error happen
	ErrInternalServerError = errors.New("Internal Server Error")
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("Not found")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput = errors.New("Given Param is not valid")

	// ErrRecordNotFound means the name carries no usable text record
	ErrRecordNotFound = errors.New("no mapping found for this name")
	// ErrInvalidMapping means the text record exists but cannot be parsed
	ErrInvalidMapping = errors.New("invalid mapping format")
	// ErrResolutionFailed means the naming chain could not be reached
	ErrResolutionFailed = errors.New("resolution failed")
	// ErrInvalidName is returned for names that are not ENS names
	ErrInvalidName = errors.New("invalid ens name")

	// ErrConfiguration is fatal at start
	ErrConfiguration = errors.New("invalid configuration")
)
