package domain

import "errors"

var (
	ErrNotFound        = errors.New("resource not found")
	ErrEmptyDocument   = errors.New("document has zero pages")
	ErrElementNotFound = errors.New("element not found")
)
