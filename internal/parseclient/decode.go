package parseclient

import (
	"encoding/base64"
	"fmt"

	"docingest/internal/port"
)

func decodeTaskData(parsed *fetchResponse) (*port.TaskData, error) {
	images := make(map[string][]byte, len(parsed.Images))
	for name, b64 := range parsed.Images {
		raw, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return nil, &DecodeError{Err: fmt.Errorf("image %s: %w", name, err)}
		}
		images[name] = raw
	}

	pages := make([]port.RawPage, 0, len(parsed.Middle.PDFInfo))
	for _, p := range parsed.Middle.PDFInfo {
		blocks := make([]port.RawBlock, 0, len(p.Blocks))
		for _, b := range p.Blocks {
			blocks = append(blocks, port.RawBlock{
				Type:      b.Type,
				BBox:      b.BBox,
				TextLevel: b.TextLevel,
			})
		}
		pages = append(pages, port.RawPage{
			PageIndex: p.PageIdx,
			Width:     p.Width,
			Height:    p.Height,
			Blocks:    blocks,
		})
	}

	items := make([]port.RawContentItem, 0, len(parsed.ContentList))
	for _, item := range parsed.ContentList {
		items = append(items, port.RawContentItem{
			Type:      item.Type,
			Text:      item.Text,
			Captions:  item.Captions,
			Footnotes: item.Footnotes,
			ImageName: item.ImageName,
			TableHTML: item.TableHTML,
		})
	}

	return &port.TaskData{
		Markdown:    parsed.Markdown.Content,
		ContentList: items,
		Pages:       pages,
		Images:      images,
	}, nil
}
