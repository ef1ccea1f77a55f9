package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrAlreadyInCart     = errors.New("package is already in the cart")
	ErrAlreadySubscribed = errors.New("package is already an active subscription")
	ErrUnauthenticated   = errors.New("unauthenticated")
)

// ValidationError reports a missing or malformed input field. It is raised
// before any storage call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

type AuthorizationError struct {
	Action string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("not allowed to %s", e.Action)
}

// PartialFailure is returned when a step of a multi-step operation failed.
// The surrounding transaction has been rolled back.
type PartialFailure struct {
	Step string
	Err  error
}

func (e *PartialFailure) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Step, e.Err)
}

func (e *PartialFailure) Unwrap() error {
	return e.Err
}

// notFound maps a storage miss onto NotFoundError and wraps anything else.
func notFound(err error, entity, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return fmt.Errorf("load %s %s: %w", entity, id, err)
}
