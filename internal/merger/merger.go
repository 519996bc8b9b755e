// Package merger reassembles K ordered partial parse results into one
// continuous ParsedDocument (C5), zipping each page's structural blocks
// against its content-list items to mint Elements.
package merger

import (
	"fmt"
	"log"
	"path"

	"github.com/google/uuid"

	"docingest/internal/domain"
	"docingest/internal/port"
)

// MergeError is returned when partial results cannot be reassembled into a
// single consistent document.
type MergeError struct {
	Reason string
}

func (e *MergeError) Error() string { return fmt.Sprintf("merge: %s", e.Reason) }

// Merge combines partials, already ordered by partition index, into one
// ParsedDocument. Warnings (unresolved image refs, image-name collisions)
// are logged, not returned as errors.
func Merge(partials []*port.TaskData) (*domain.ParsedDocument, error) {
	doc := &domain.ParsedDocument{
		ImageBlobs: map[string][]byte{},
	}

	var markdownParts []string
	nextWantPage := 0

	for _, partial := range partials {
		if partial == nil {
			continue
		}
		if partial.Markdown != "" {
			markdownParts = append(markdownParts, partial.Markdown)
		}

		cursor := 0
		for _, rawPage := range partial.Pages {
			if rawPage.PageIndex != nextWantPage {
				return nil, &MergeError{Reason: fmt.Sprintf(
					"page index %d is not the expected next page %d (overlap or gap)",
					rawPage.PageIndex, nextWantPage,
				)}
			}
			blockCount := len(rawPage.Blocks)
			if cursor+blockCount > len(partial.ContentList) {
				return nil, &MergeError{Reason: fmt.Sprintf(
					"page %d: block count %d exceeds remaining content-list items",
					rawPage.PageIndex, blockCount,
				)}
			}
			items := partial.ContentList[cursor : cursor+blockCount]
			cursor += blockCount

			page, err := buildPage(rawPage, items, partial.Images, doc.ImageBlobs)
			if err != nil {
				return nil, err
			}
			doc.Pages = append(doc.Pages, page)
			nextWantPage++
		}
		if cursor != len(partial.ContentList) {
			return nil, &MergeError{Reason: fmt.Sprintf(
				"content-list has %d leftover items not claimed by any page",
				len(partial.ContentList)-cursor,
			)}
		}

		for name, blob := range partial.Images {
			if _, exists := doc.ImageBlobs[name]; exists {
				log.Printf("merger.Merge: image %q already present, first-seen wins", name)
				continue
			}
			doc.ImageBlobs[name] = blob
		}
	}

	joined := ""
	for i, part := range markdownParts {
		if i > 0 {
			joined += "\n\n"
		}
		joined += part
	}
	doc.Markdown = joined

	return doc, nil
}

func buildPage(raw port.RawPage, items []port.RawContentItem, images map[string][]byte, merged map[string][]byte) (domain.Page, error) {
	if len(raw.Blocks) != len(items) {
		return domain.Page{}, &MergeError{Reason: fmt.Sprintf(
			"page %d: block count %d != content-list slice length %d",
			raw.PageIndex, len(raw.Blocks), len(items),
		)}
	}

	page := domain.Page{PageIndex: raw.PageIndex, Width: raw.Width, Height: raw.Height}
	for i, block := range raw.Blocks {
		item := items[i]
		el, err := buildElement(raw.PageIndex, i, block, item, images, merged)
		if err != nil {
			return domain.Page{}, err
		}
		page.Elements = append(page.Elements, el)
	}
	return page, nil
}

func buildElement(pageIndex, order int, block port.RawBlock, item port.RawContentItem, images, merged map[string][]byte) (domain.Element, error) {
	elType := domain.ElementType(item.Type)
	switch elType {
	case domain.ElementText, domain.ElementImage, domain.ElementTable, domain.ElementDiscarded:
	default:
		return domain.Element{}, &MergeError{Reason: fmt.Sprintf("page %d: unrecognized element type %q", pageIndex, item.Type)}
	}

	el := domain.Element{
		ElementID:   uuid.NewString(),
		PageIndex:   pageIndex,
		ElementType: elType,
		Order:       order,
		BBox:        &domain.BBox{X: block.BBox[0], Y: block.BBox[1], W: block.BBox[2], H: block.BBox[3]},
	}
	if elType == domain.ElementText && block.TextLevel != nil {
		lvl := *block.TextLevel
		el.TextLevel = &lvl
	}

	switch elType {
	case domain.ElementText, domain.ElementDiscarded:
		el.Text = &domain.TextPayload{Text: item.Text}
	case domain.ElementImage:
		// img_path may carry a directory component; the images map is
		// keyed by bare name, so resolve against the basename.
		name := path.Base(item.ImageName)
		payload := &domain.ImagePayload{
			Captions:  item.Captions,
			Footnotes: item.Footnotes,
			FileRef:   name,
		}
		if item.ImageName != "" {
			if blob, ok := images[name]; ok {
				payload.ImageBytesRef = blob
				if _, already := merged[name]; !already {
					merged[name] = blob
				}
			} else {
				log.Printf("merger.buildElement: page %d: unresolved image reference %q", pageIndex, item.ImageName)
			}
		}
		el.Image = payload
	case domain.ElementTable:
		el.Table = &domain.TablePayload{
			Captions:  item.Captions,
			Footnotes: item.Footnotes,
			Body:      item.TableHTML,
		}
	}
	return el, nil
}
