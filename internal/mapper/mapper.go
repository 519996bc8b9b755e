// Package mapper projects a ParsedDocument's elements into the two
// persistence-row shapes DualStorePersister writes (C6).
package mapper

import (
	"fmt"

	"docingest/internal/domain"
)

// Error reports a structural inconsistency found while projecting a
// document's elements into persistence rows, e.g. a duplicate ElementID
// (both stores key inserts and compensation by ElementID, so a collision
// would break either write).
type Error struct {
	Reason string
}

func (e *Error) Error() string { return fmt.Sprintf("mapper: %s", e.Reason) }

// MetaRow is the relational-store projection of one Element.
type MetaRow struct {
	ElementID       string
	PageIndex       int
	ElementType     domain.ElementType
	BBox            *[4]float64
	TextLevel       *int
	ImageFileName   string
	ImageFileSuffix string
	ImageFileType   string
	KnowledgeRef    domain.KnowledgeRef
	Audit           domain.AuditFields
}

// ContentRow is the document-store projection of one Element.
type ContentRow struct {
	ID      string
	Type    domain.ElementType
	Content map[string]any
}

// Map is a pure function: the same ParsedDocument and KnowledgeRef always
// produce equal MetaRows/ContentRows (ignoring audit timestamps, which the
// persister, not the mapper, assigns).
func Map(doc *domain.ParsedDocument, ref domain.KnowledgeRef) ([]MetaRow, []ContentRow, error) {
	var metaRows []MetaRow
	var contentRows []ContentRow
	seen := make(map[string]struct{})

	for _, page := range doc.Pages {
		for _, el := range page.Elements {
			if el.ElementID == "" {
				return nil, nil, &Error{Reason: fmt.Sprintf("page %d: element has empty ElementID", page.PageIndex)}
			}
			if _, dup := seen[el.ElementID]; dup {
				return nil, nil, &Error{Reason: fmt.Sprintf("duplicate ElementID %q", el.ElementID)}
			}
			seen[el.ElementID] = struct{}{}

			metaRows = append(metaRows, mapMeta(el, ref))
			contentRows = append(contentRows, mapContent(el))
		}
	}
	return metaRows, contentRows, nil
}

func mapMeta(el domain.Element, ref domain.KnowledgeRef) MetaRow {
	row := MetaRow{
		ElementID:   el.ElementID,
		PageIndex:   el.PageIndex,
		ElementType: el.ElementType,
		TextLevel:   el.TextLevel,
		KnowledgeRef: ref,
	}
	if el.BBox != nil {
		row.BBox = &[4]float64{el.BBox.X, el.BBox.Y, el.BBox.W, el.BBox.H}
	}
	if el.ElementType == domain.ElementImage && el.Image != nil && el.Image.FileRef != "" {
		row.ImageFileName = el.Image.FileRef
		row.ImageFileSuffix = suffixOf(el.Image.FileRef)
		row.ImageFileType = "image"
	}
	return row
}

func mapContent(el domain.Element) ContentRow {
	content := map[string]any{}
	switch el.ElementType {
	case domain.ElementText, domain.ElementDiscarded:
		if el.Text != nil {
			content["text"] = el.Text.Text
		}
	case domain.ElementImage:
		if el.Image != nil {
			content["captions"] = el.Image.Captions
			content["footnotes"] = el.Image.Footnotes
			content["fileRef"] = el.Image.FileRef
		}
	case domain.ElementTable:
		if el.Table != nil {
			content["captions"] = el.Table.Captions
			content["footnotes"] = el.Table.Footnotes
			content["body"] = el.Table.Body
		}
	}
	return ContentRow{
		ID:   el.ElementID,
		Type: el.ElementType,
		Content: content,
	}
}

func suffixOf(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[i+1:]
		}
	}
	return ""
}
