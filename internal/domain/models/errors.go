package models

import "errors"

// Unit errors.
var (
	ErrInvalidName         = errors.New("invalid unit name")
	ErrDuplicateName       = errors.New("unit name already exists")
	ErrInvalidIPFormat     = errors.New("invalid ip address format")
	ErrDuplicateIP         = errors.New("ip address already assigned")
	ErrMissingIP           = errors.New("ip address required")
	ErrPrimaryUserNotFound = errors.New("primary user not found")
	ErrUnitNotFound        = errors.New("unit not found")
)

// Inventory errors.
var (
	ErrInvalidLocation = errors.New("unknown location")
	ErrDuplicateItem   = errors.New("inventory item already exists at location")
	ErrItemNotFound    = errors.New("inventory item not found")
)

// Cable stock errors.
var (
	ErrInvalidFilename  = errors.New("file name does not match the cable stock pattern")
	ErrHeaderNotFound   = errors.New("cable stock header row not found")
	ErrHeaderValidation = errors.New("cable stock header mismatch")
	ErrNoValidItems     = errors.New("no stock rows found in workbook")
	ErrSnapshotNotFound = errors.New("cable stock snapshot not found")
)

// ErrInvalidField indicates a record field failed schema validation.
var ErrInvalidField = errors.New("invalid field value")
