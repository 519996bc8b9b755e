// Package pdfdoc counts pages in raw document bytes, keyed by file kind
// (C10). Only "pdf" is implemented; the registry leaves room for future
// kinds without touching callers.
package pdfdoc

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"

	"docingest/internal/domain"
)

// DecodeError reports a PDF that could not be parsed; never retryable.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("decoding pdf: %v", e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

type counterFunc func(raw []byte) (int, error)

var counters = map[domain.FileKind]counterFunc{
	domain.FileKindPDF: countPDFPages,
}

// CountPages returns the page count for raw bytes of the given kind.
// An empty byte slice always yields 0 with no error.
func CountPages(kind domain.FileKind, raw []byte) (int, error) {
	if len(raw) == 0 {
		return 0, nil
	}
	counter, ok := counters[kind]
	if !ok {
		return 0, fmt.Errorf("pdfdoc.CountPages: no counter registered for kind %q", kind)
	}
	return counter(raw)
}

func countPDFPages(raw []byte) (int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return 0, &DecodeError{Err: err}
	}
	return reader.NumPage(), nil
}
