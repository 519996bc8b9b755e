package port

import (
	"context"
	"time"
)

// SubmitOptions configures one parse-service task submission.
type SubmitOptions struct {
	Backend       string // "pipeline" | "ocr"
	Lang          string
	Method        string
	FormulaEnable bool
	TableEnable   bool
	Priority      int
	StartPage     *int
	EndPage       *int
}

// TaskData is the raw structured payload returned by fetchData, carrying
// just enough to drive ElementMapper and ResultMerger.
type TaskData struct {
	Markdown    string
	ContentList []RawContentItem
	Pages       []RawPage
	Images      map[string][]byte
}

// RawPage is one page's pre-processing output from the parse service.
type RawPage struct {
	PageIndex int
	Width     float64
	Height    float64
	Blocks    []RawBlock
}

// RawBlock is one structural block reported for a page (bbox + type).
type RawBlock struct {
	Type      string
	BBox      [4]float64
	TextLevel *int
}

// RawContentItem is one flat, ordered content-list entry from the service,
// zipped against RawBlock by ResultMerger.
type RawContentItem struct {
	Type      string
	Text      string
	Captions  []string
	Footnotes []string
	ImageName string
	TableHTML string
}

// ParseServiceClient is the external OCR/layout-analysis service's
// submit/poll/fetch contract (C2).
type ParseServiceClient interface {
	Submit(ctx context.Context, fileBytes []byte, fileName string, opts SubmitOptions) (taskID string, err error)
	WaitForCompletion(ctx context.Context, taskID string, pollInterval, overallTimeout time.Duration) error
	FetchData(ctx context.Context, taskID string) (*TaskData, error)
}
