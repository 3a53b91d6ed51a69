package domain

import "errors"

// ErrQuestionNotFound indicates a referenced question ID is invalid.
// Absent users and answer records are normal outcomes and are signalled
// with nil instead of an error.
var ErrQuestionNotFound = errors.New("question not found")
