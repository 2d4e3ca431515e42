package repositories

import "errors"

var (
	ErrNotFound = errors.New("record not found")
)

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
