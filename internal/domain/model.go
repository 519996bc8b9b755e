// Package domain holds the core types shared across the ingestion pipeline.
package domain

import "time"

// FileKind identifies the binary format of an ingested document.
type FileKind string

const (
	FileKindPDF FileKind = "pdf"
)

// Document describes one binary input for the lifetime of a single
// ingestion. It is immutable once constructed.
type Document struct {
	SourceName string
	Kind       FileKind
	PageCount  int
	SHA256     string
}

// PageRange is a disjoint, ordered slice of a Document's pages submitted to
// the parse service as one unit. Start and End are inclusive, 0-based.
type PageRange struct {
	Start int
	End   int
	Index int
}

// TaskStatus is the closed set of states a parse Task can be observed in.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
	TaskCancelled TaskStatus = "cancelled"
)

// Task is the external parse-service job created by submit and observed by
// poll.
type Task struct {
	ID           string
	Status       TaskStatus
	ErrorMessage string
}

// ElementType is the closed set of structural kinds an Element can carry.
type ElementType string

const (
	ElementText      ElementType = "text"
	ElementImage     ElementType = "image"
	ElementTable     ElementType = "table"
	ElementDiscarded ElementType = "discarded"
)

// BBox is a bounding box in a page's own coordinate space.
type BBox struct {
	X float64
	Y float64
	W float64
	H float64
}

// TextPayload backs ElementText and ElementDiscarded.
type TextPayload struct {
	Text string
}

// ImagePayload backs ElementImage.
type ImagePayload struct {
	Captions      []string
	Footnotes     []string
	FileRef       string
	ImageBytesRef []byte
}

// TablePayload backs ElementTable.
type TablePayload struct {
	Captions  []string
	Footnotes []string
	Body      string // HTML
}

// Element is one self-contained unit of extracted content, stable for the
// lifetime of the ingestion that produced it.
type Element struct {
	ElementID   string
	PageIndex   int
	ElementType ElementType
	BBox        *BBox
	TextLevel   *int
	Order       int

	Text  *TextPayload
	Image *ImagePayload
	Table *TablePayload
}

// Page is an ordered collection of Elements sharing one PageIndex.
type Page struct {
	PageIndex int
	Width     float64
	Height    float64
	Elements  []Element
}

// ParsedDocument is the fully reassembled output of one ingestion's parse
// phase, before mapping into persistence rows.
type ParsedDocument struct {
	Pages      []Page
	Markdown   string
	ImageBlobs map[string][]byte
}

// KnowledgeRef is the tagging tuple carried end-to-end onto every persisted
// row.
type KnowledgeRef struct {
	KBID           string
	KBName         string
	ParentKBID     string
	ParentKBName   string
	KnowledgeType  string
	Role           string
}

// AuditFields are the audit columns every persisted row carries, set by the
// persister rather than the mapper.
type AuditFields struct {
	Creator    string
	Updater    string
	CreateTime time.Time
	UpdateTime time.Time
	Status     int
	Deleted    int
}

// IngestionReport summarizes one completed ingestion.
type IngestionReport struct {
	FileName       string
	FileKind       FileKind
	TotalPages     int
	TotalElements  int
	ByType         map[ElementType]int
	MetaWritten    int
	ContentWritten int
	ImagesStored   int
}
