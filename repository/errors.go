package repository

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrDuplicate is returned when an insert or update violates a unique index,
// e.g. a second attendance record for the same user and day.
var ErrDuplicate = errors.New("duplicate key")

func wrapWriteError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func pageOptions(page, limit int64) (skip int64, size int64) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if page <= 0 {
		page = 1
	}
	return (page - 1) * limit, limit
}
