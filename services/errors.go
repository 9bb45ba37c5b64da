package services

import (
	"errors"

	"gorm.io/gorm"
)

// ErrorKind classifies a ServiceError so handlers can pick a status code
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindForbidden
	KindNotFound
	KindConflict
	KindUnauthorized
	KindUnavailable
)

// ServiceError is a business-rule failure with a stable machine-readable code
type ServiceError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func validationError(code, message string) *ServiceError {
	return &ServiceError{Kind: KindValidation, Code: code, Message: message}
}

func forbiddenError(code, message string) *ServiceError {
	return &ServiceError{Kind: KindForbidden, Code: code, Message: message}
}

func notFoundError(code, message string) *ServiceError {
	return &ServiceError{Kind: KindNotFound, Code: code, Message: message}
}

func conflictError(code, message string) *ServiceError {
	return &ServiceError{Kind: KindConflict, Code: code, Message: message}
}

func unauthorizedError(code, message string) *ServiceError {
	return &ServiceError{Kind: KindUnauthorized, Code: code, Message: message}
}

func unavailableError(code, message string) *ServiceError {
	return &ServiceError{Kind: KindUnavailable, Code: code, Message: message}
}

// AsServiceError unwraps err into a *ServiceError when it is one
func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsDuplicateKey reports whether err is a unique constraint violation. The
// connection must be opened with TranslateError so the dialect maps its
// native error to gorm.ErrDuplicatedKey.
func IsDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// translateWriteError turns unique violations into a conflict carrying code and message
func translateWriteError(err error, code, message string) error {
	if IsDuplicateKey(err) {
		return conflictError(code, message)
	}
	return err
}
