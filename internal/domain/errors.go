package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidActivityType is returned when the activity type is not one of the accepted tags.
	ErrInvalidActivityType = errors.New("unknown activity type")
	// ErrQuantityTooLarge is returned when a quantity exceeds MaxQuantity.
	ErrQuantityTooLarge = fmt.Errorf("quantity must be at most %d", MaxQuantity)
	// ErrStorageFailure matches any *StorageError via errors.Is.
	ErrStorageFailure = errors.New("storage failure")
)

// StorageError wraps a document store failure. Its message is the store's own message.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrStorageFailure) match.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorageFailure
}
