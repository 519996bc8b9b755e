// Package persist implements DualStorePersister (C7): writes element
// metadata and element content across two independent stores with defined
// compensation on partial failure.
package persist

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"docingest/internal/domain"
	"docingest/internal/mapper"
	"docingest/internal/port"
)

// PartialWriteError reports that the metadata write committed but the
// content write failed, along with the compensation outcome.
type PartialWriteError struct {
	ContentErr       error
	CompensationErr  error
	SurvivingIDs     []string
}

func (e *PartialWriteError) Error() string {
	if e.CompensationErr != nil {
		return fmt.Sprintf("content write failed (%v); compensation also failed (%v), surviving ids: %v",
			e.ContentErr, e.CompensationErr, e.SurvivingIDs)
	}
	return fmt.Sprintf("content write failed (%v); metadata compensated", e.ContentErr)
}
func (e *PartialWriteError) Unwrap() error { return e.ContentErr }

// Config controls the optional image-upload side effect.
type Config struct {
	StoreImages bool
	Bucket      string
}

// Persister writes one document's mapped rows to the relational and
// document stores.
type Persister struct {
	meta    port.MetaStore
	content port.ContentStore
	objects port.ObjectStorage
	cfg     Config
}

// New builds a Persister. objects may be nil when StoreImages is false.
func New(meta port.MetaStore, content port.ContentStore, objects port.ObjectStorage, cfg Config) *Persister {
	return &Persister{meta: meta, content: content, objects: objects, cfg: cfg}
}

// Persist writes one document's already-mapped rows into the two stores.
// doc is only needed to locate image bytes for upload; audit fields are
// stamped onto metaRows here.
func (p *Persister) Persist(ctx context.Context, metaRows []mapper.MetaRow, contentRows []mapper.ContentRow, doc *domain.ParsedDocument, creator string) (metaWritten, contentWritten, imagesStored int, err error) {
	now := time.Now()
	for i := range metaRows {
		metaRows[i].Audit = domain.AuditFields{Creator: creator, Updater: creator, CreateTime: now, UpdateTime: now}
	}

	if p.cfg.StoreImages {
		stored, uploadErr := p.uploadImages(ctx, metaRows, doc)
		if uploadErr != nil {
			return 0, 0, 0, uploadErr
		}
		imagesStored = stored
	}

	if err := p.meta.InsertBatch(ctx, metaRows); err != nil {
		return 0, 0, 0, fmt.Errorf("persist.Persist: metadata write: %w", err)
	}

	if err := p.content.InsertBatch(ctx, contentRows); err != nil {
		ids := make([]string, len(metaRows))
		for i, row := range metaRows {
			ids[i] = row.ElementID
		}
		compErr := p.meta.DeleteByIDs(ctx, ids)
		if compErr != nil {
			log.Printf("persist.Persist: compensation failed: %v", compErr)
			return len(metaRows), 0, imagesStored, &PartialWriteError{ContentErr: err, CompensationErr: compErr, SurvivingIDs: ids}
		}
		return 0, 0, imagesStored, &PartialWriteError{ContentErr: err}
	}

	return len(metaRows), len(contentRows), imagesStored, nil
}

func (p *Persister) uploadImages(ctx context.Context, metaRows []mapper.MetaRow, doc *domain.ParsedDocument) (int, error) {
	stored := 0
	byElementID := map[string]*mapper.MetaRow{}
	for i := range metaRows {
		byElementID[metaRows[i].ElementID] = &metaRows[i]
	}

	for _, page := range doc.Pages {
		for _, el := range page.Elements {
			if el.ElementType != domain.ElementImage || el.Image == nil || len(el.Image.ImageBytesRef) == 0 {
				continue
			}
			row, ok := byElementID[el.ElementID]
			if !ok {
				continue
			}
			key := fmt.Sprintf("elements/%s/%s", el.ElementID, el.Image.FileRef)
			_, err := p.objects.Upload(ctx, port.UploadInput{
				Bucket: p.cfg.Bucket,
				Key:    key,
				Body:   bytes.NewReader(el.Image.ImageBytesRef),
				Size:   int64(len(el.Image.ImageBytesRef)),
			})
			if err != nil {
				return 0, fmt.Errorf("persist.uploadImages: element %s: %w", el.ElementID, err)
			}
			row.ImageFileName = el.Image.FileRef
			stored++
		}
	}
	return stored, nil
}
