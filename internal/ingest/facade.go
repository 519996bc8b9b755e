// Package ingest implements IngestionFacade (C8): the top-level entry
// point that detects file kind, drives the parse/merge/persist pipeline,
// and returns a summary report.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"docingest/internal/concurrentparser"
	"docingest/internal/domain"
	"docingest/internal/mapper"
	"docingest/internal/merger"
	"docingest/internal/partition"
	"docingest/internal/persist"
)

// PageCounter returns the page count for raw bytes of the given kind. The
// production wiring supplies pdfdoc.CountPages; tests can stub it.
type PageCounter func(kind domain.FileKind, raw []byte) (int, error)

// UnsupportedKindError reports a file extension with no registered parser.
type UnsupportedKindError struct {
	Extension string
}

func (e *UnsupportedKindError) Error() string {
	return fmt.Sprintf("unsupported file kind: %q", e.Extension)
}

// Stage names the IngestionFacade's state machine position when a document
// fails.
type Stage string

const (
	StageReceived   Stage = "received"
	StagePartitioned Stage = "partitioned"
	StageParsing    Stage = "parsing"
	StageMerging    Stage = "merging"
	StageMapping    Stage = "mapping"
	StagePersisting Stage = "persisting"
)

// StageError wraps a pipeline error with the stage it occurred in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("ingest failed at %s: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

var kindsByExtension = map[string]domain.FileKind{
	"pdf": domain.FileKindPDF,
}

// Facade drives one document through the full ingestion pipeline.
type Facade struct {
	parser      *concurrentparser.Parser
	persister   *persist.Persister
	countPages  PageCounter
}

// New builds a Facade over an already-configured parser and persister.
func New(parser *concurrentparser.Parser, persister *persist.Persister, countPages PageCounter) *Facade {
	return &Facade{parser: parser, persister: persister, countPages: countPages}
}

// Ingest runs the received -> partitioned -> parsing -> merging -> mapping
// -> persisting -> done state machine for one document.
func (f *Facade) Ingest(ctx context.Context, fileBytes []byte, fileName string, ref domain.KnowledgeRef, creator string) (*domain.IngestionReport, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
	kind, ok := kindsByExtension[ext]
	if !ok {
		return nil, &UnsupportedKindError{Extension: ext}
	}

	pageCount, err := f.countPages(kind, fileBytes)
	if err != nil {
		return nil, &StageError{Stage: StageReceived, Err: err}
	}

	report := &domain.IngestionReport{
		FileName: fileName,
		FileKind: kind,
		ByType:   map[domain.ElementType]int{},
	}

	if pageCount == 0 {
		log.Printf("ingest.Ingest: %s has zero pages, no service call made", fileName)
		return report, nil
	}

	partials, err := f.parser.Parse(ctx, fileBytes, fileName, pageCount)
	if err != nil {
		var partErr *partition.Error
		if errors.As(err, &partErr) {
			return nil, &StageError{Stage: StagePartitioned, Err: err}
		}
		return nil, &StageError{Stage: StageParsing, Err: err}
	}

	doc, err := merger.Merge(partials)
	if err != nil {
		return nil, &StageError{Stage: StageMerging, Err: err}
	}

	metaRows, contentRows, err := mapper.Map(doc, ref)
	if err != nil {
		return nil, &StageError{Stage: StageMapping, Err: err}
	}

	metaWritten, contentWritten, imagesStored, err := f.persister.Persist(ctx, metaRows, contentRows, doc, creator)
	if err != nil {
		return nil, &StageError{Stage: StagePersisting, Err: err}
	}

	report.TotalPages = len(doc.Pages)
	for _, page := range doc.Pages {
		for _, el := range page.Elements {
			report.TotalElements++
			report.ByType[el.ElementType]++
		}
	}
	report.MetaWritten = metaWritten
	report.ContentWritten = contentWritten
	report.ImagesStored = imagesStored

	return report, nil
}
