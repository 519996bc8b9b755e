package merger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docingest/internal/domain"
	"docingest/internal/merger"
	"docingest/internal/port"
)

func TestMerge_SinglePartialHappyPath(t *testing.T) {
	partials := []*port.TaskData{
		{
			Markdown: "# doc",
			Pages: []port.RawPage{
				{PageIndex: 0, Blocks: []port.RawBlock{
					{Type: "text", BBox: [4]float64{0, 0, 1, 1}},
					{Type: "image", BBox: [4]float64{1, 1, 2, 2}},
				}},
			},
			ContentList: []port.RawContentItem{
				{Type: "text", Text: "hello"},
				{Type: "image", ImageName: "fig1.png"},
			},
			Images: map[string][]byte{"fig1.png": []byte("bytes")},
		},
	}

	doc, err := merger.Merge(partials)
	require.NoError(t, err)
	require.Len(t, doc.Pages, 1)
	require.Len(t, doc.Pages[0].Elements, 2)
	assert.Equal(t, domain.ElementText, doc.Pages[0].Elements[0].ElementType)
	assert.Equal(t, domain.ElementImage, doc.Pages[0].Elements[1].ElementType)
	assert.Equal(t, "bytes", string(doc.Pages[0].Elements[1].Image.ImageBytesRef))
	assert.Equal(t, "# doc", doc.Markdown)
	assert.NotEmpty(t, doc.Pages[0].Elements[0].ElementID)
	assert.NotEqual(t, doc.Pages[0].Elements[0].ElementID, doc.Pages[0].Elements[1].ElementID)
}

func TestMerge_MultiplePartialsPreserveOrderAndConcatenateMarkdown(t *testing.T) {
	partials := []*port.TaskData{
		{
			Markdown: "part1",
			Pages:    []port.RawPage{{PageIndex: 0, Blocks: []port.RawBlock{{Type: "text"}}}},
			ContentList: []port.RawContentItem{{Type: "text", Text: "a"}},
		},
		{
			Markdown: "part2",
			Pages:    []port.RawPage{{PageIndex: 1, Blocks: []port.RawBlock{{Type: "text"}}}},
			ContentList: []port.RawContentItem{{Type: "text", Text: "b"}},
		},
	}

	doc, err := merger.Merge(partials)
	require.NoError(t, err)
	assert.Equal(t, "part1\n\npart2", doc.Markdown)
	require.Len(t, doc.Pages, 2)
	assert.Equal(t, 0, doc.Pages[0].PageIndex)
	assert.Equal(t, 1, doc.Pages[1].PageIndex)
}

func TestMerge_BlockCountMismatchIsHardMergeError(t *testing.T) {
	partials := []*port.TaskData{
		{
			Pages: []port.RawPage{{PageIndex: 0, Blocks: []port.RawBlock{{Type: "text"}, {Type: "text"}}}},
			ContentList: []port.RawContentItem{{Type: "text", Text: "only one"}},
		},
	}
	_, err := merger.Merge(partials)
	require.Error(t, err)
	var me *merger.MergeError
	assert.ErrorAs(t, err, &me)
}

func TestMerge_OverlappingPageIndicesIsHardMergeError(t *testing.T) {
	partials := []*port.TaskData{
		{
			Pages:       []port.RawPage{{PageIndex: 0, Blocks: []port.RawBlock{{Type: "text"}}}},
			ContentList: []port.RawContentItem{{Type: "text", Text: "a"}},
		},
		{
			Pages:       []port.RawPage{{PageIndex: 0, Blocks: []port.RawBlock{{Type: "text"}}}},
			ContentList: []port.RawContentItem{{Type: "text", Text: "b"}},
		},
	}
	_, err := merger.Merge(partials)
	require.Error(t, err)
}

func TestMerge_EmptyPartialContributesZeroPages(t *testing.T) {
	partials := []*port.TaskData{
		{},
		{
			Pages:       []port.RawPage{{PageIndex: 0, Blocks: []port.RawBlock{{Type: "text"}}}},
			ContentList: []port.RawContentItem{{Type: "text", Text: "a"}},
		},
	}
	doc, err := merger.Merge(partials)
	require.NoError(t, err)
	assert.Len(t, doc.Pages, 1)
}

func TestMerge_ImageCollisionKeepsFirstSeen(t *testing.T) {
	partials := []*port.TaskData{
		{
			Pages:       []port.RawPage{{PageIndex: 0, Blocks: []port.RawBlock{{Type: "image"}}}},
			ContentList: []port.RawContentItem{{Type: "image", ImageName: "dup.png"}},
			Images:      map[string][]byte{"dup.png": []byte("first")},
		},
		{
			Pages:       []port.RawPage{{PageIndex: 1, Blocks: []port.RawBlock{{Type: "image"}}}},
			ContentList: []port.RawContentItem{{Type: "image", ImageName: "dup.png"}},
			Images:      map[string][]byte{"dup.png": []byte("second")},
		},
	}
	doc, err := merger.Merge(partials)
	require.NoError(t, err)
	assert.Equal(t, "first", string(doc.ImageBlobs["dup.png"]))
}

func TestMerge_ImageNameWithDirectoryComponentResolvesToBasename(t *testing.T) {
	partials := []*port.TaskData{
		{
			Pages:       []port.RawPage{{PageIndex: 0, Blocks: []port.RawBlock{{Type: "image"}}}},
			ContentList: []port.RawContentItem{{Type: "image", ImageName: "images/fig1.png"}},
			Images:      map[string][]byte{"fig1.png": []byte("bytes")},
		},
	}
	doc, err := merger.Merge(partials)
	require.NoError(t, err)
	require.Len(t, doc.Pages[0].Elements, 1)
	assert.Equal(t, "fig1.png", doc.Pages[0].Elements[0].Image.FileRef)
	assert.Equal(t, "bytes", string(doc.Pages[0].Elements[0].Image.ImageBytesRef))
}

func TestMerge_UnresolvedImageReferenceIsWarningNotFailure(t *testing.T) {
	partials := []*port.TaskData{
		{
			Pages:       []port.RawPage{{PageIndex: 0, Blocks: []port.RawBlock{{Type: "image"}}}},
			ContentList: []port.RawContentItem{{Type: "image", ImageName: "missing.png"}},
		},
	}
	doc, err := merger.Merge(partials)
	require.NoError(t, err)
	require.Len(t, doc.Pages[0].Elements, 1)
	assert.Nil(t, doc.Pages[0].Elements[0].Image.ImageBytesRef)
}
