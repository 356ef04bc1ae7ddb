package desk

import "errors"

var (
	ErrFormInvalid      = errors.New("form has invalid fields")
	ErrPhotoTooLarge    = errors.New("photo exceeds the size limit")
	ErrPhotoUnreadable  = errors.New("photo could not be read")
	ErrActionNotAllowed = errors.New("action not allowed for this request")
	ErrSubmitInProgress = errors.New("a submission is already in progress")
	ErrUnknownView      = errors.New("unknown view")
	ErrNoDialog         = errors.New("no quantity dialog is open")
	ErrUnknownField     = errors.New("unknown form field")
	ErrInvalidValue     = errors.New("invalid field value")
	ErrRowNotFound      = errors.New("request is not in the active table")
	ErrNotPermitted     = errors.New("operation not permitted for this operator")
	ErrNoTable          = errors.New("no table is displayed")
)
