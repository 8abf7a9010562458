package db

import (
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// Operation is a function that performs an action and returns an error if it fails.
type Operation func() error

// IsDuplicateKeyError is a function that checks if an error is a duplicate key error.
type IsDuplicateKeyError func(err error) bool

const DefaultMaxRetries = 3

// Try executes an operation with default retry settings for duplicate key errors.
func Try(op Operation) error {
	return WithRetries(op, DefaultMaxRetries, IsMongoDuplicateKeyError)
}

// WithRetries executes an operation, retrying on duplicate key errors with a
// small incremental backoff. Document IDs are random 6-byte values, so a
// duplicate _id collision is rare but possible; regenerating the ID inside op
// and retrying resolves it.
func WithRetries(op Operation, maxRetries int, isDuplicateKey IsDuplicateKeyError) error {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		if attempt == maxRetries {
			break
		}
		if isDuplicateKey(err) {
			time.Sleep(time.Duration(50*(attempt+1)) * time.Millisecond)
		} else {
			return err
		}
	}
	return err
}

// IsMongoDuplicateKeyError checks if an error from MongoDB is a duplicate key
// error (code 11000). Delegates to the driver, which recognizes the shapes the
// server uses for different operations: InsertOne reports a WriteException,
// while findAndModify (FindOneAndUpdate) reports a CommandError.
func IsMongoDuplicateKeyError(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

// dupIndexPattern extracts the index name from an E11000 error message, e.g.
// "E11000 duplicate key error collection: db.listings index: project_url_1 dup key: ...".
var dupIndexPattern = regexp.MustCompile(`index: (\S+?)_1`)

// DuplicateKeyField returns the field backing the unique index that a
// duplicate key error tripped on, or "" if the error is not one or the
// field cannot be determined.
func DuplicateKeyField(err error) string {
	if !IsMongoDuplicateKeyError(err) {
		return ""
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code != 11000 {
				continue
			}
			if m := dupIndexPattern.FindStringSubmatch(e.Message); m != nil {
				return m[1]
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		if m := dupIndexPattern.FindStringSubmatch(ce.Message); m != nil {
			return m[1]
		}
	}
	return ""
}
