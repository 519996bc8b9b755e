package persist_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docingest/internal/domain"
	"docingest/internal/mapper"
	"docingest/internal/persist"
	"docingest/mocks"
)

func sampleDoc() *domain.ParsedDocument {
	return &domain.ParsedDocument{
		Pages: []domain.Page{
			{PageIndex: 0, Elements: []domain.Element{
				{ElementID: "e1", ElementType: domain.ElementText, Text: &domain.TextPayload{Text: "hi"}},
			}},
		},
	}
}

func mappedSample(t *testing.T) ([]mapper.MetaRow, []mapper.ContentRow) {
	t.Helper()
	metaRows, contentRows, err := mapper.Map(sampleDoc(), domain.KnowledgeRef{})
	require.NoError(t, err)
	return metaRows, contentRows
}

func TestPersist_HappyPathWritesBoth(t *testing.T) {
	meta := new(mocks.MockMetaStore)
	content := new(mocks.MockContentStore)
	meta.On("InsertBatch", mock.Anything, mock.Anything).Return(nil)
	content.On("InsertBatch", mock.Anything, mock.Anything).Return(nil)

	metaRows, contentRows := mappedSample(t)
	p := persist.New(meta, content, nil, persist.Config{})
	metaN, contentN, imagesN, err := p.Persist(context.Background(), metaRows, contentRows, sampleDoc(), "tester")

	require.NoError(t, err)
	assert.Equal(t, 1, metaN)
	assert.Equal(t, 1, contentN)
	assert.Equal(t, 0, imagesN)
	meta.AssertExpectations(t)
	content.AssertExpectations(t)
}

func TestPersist_ContentFailureTriggersCompensation(t *testing.T) {
	meta := new(mocks.MockMetaStore)
	content := new(mocks.MockContentStore)
	meta.On("InsertBatch", mock.Anything, mock.Anything).Return(nil)
	content.On("InsertBatch", mock.Anything, mock.Anything).Return(errors.New("mongo down"))
	meta.On("DeleteByIDs", mock.Anything, []string{"e1"}).Return(nil)

	metaRows, contentRows := mappedSample(t)
	p := persist.New(meta, content, nil, persist.Config{})
	metaN, contentN, _, err := p.Persist(context.Background(), metaRows, contentRows, sampleDoc(), "tester")

	require.Error(t, err)
	var pwe *persist.PartialWriteError
	require.ErrorAs(t, err, &pwe)
	assert.Equal(t, 0, metaN)
	assert.Equal(t, 0, contentN)
	meta.AssertCalled(t, "DeleteByIDs", mock.Anything, []string{"e1"})
}

func TestPersist_CompensationFailureRecordsSurvivingIDs(t *testing.T) {
	meta := new(mocks.MockMetaStore)
	content := new(mocks.MockContentStore)
	meta.On("InsertBatch", mock.Anything, mock.Anything).Return(nil)
	content.On("InsertBatch", mock.Anything, mock.Anything).Return(errors.New("mongo down"))
	meta.On("DeleteByIDs", mock.Anything, []string{"e1"}).Return(errors.New("pg down too"))

	metaRows, contentRows := mappedSample(t)
	p := persist.New(meta, content, nil, persist.Config{})
	_, _, _, err := p.Persist(context.Background(), metaRows, contentRows, sampleDoc(), "tester")

	require.Error(t, err)
	var pwe *persist.PartialWriteError
	require.ErrorAs(t, err, &pwe)
	assert.Equal(t, []string{"e1"}, pwe.SurvivingIDs)
}

func TestPersist_MetaFailureAbortsBeforeContentWrite(t *testing.T) {
	meta := new(mocks.MockMetaStore)
	content := new(mocks.MockContentStore)
	meta.On("InsertBatch", mock.Anything, mock.Anything).Return(errors.New("pg down"))

	metaRows, contentRows := mappedSample(t)
	p := persist.New(meta, content, nil, persist.Config{})
	_, _, _, err := p.Persist(context.Background(), metaRows, contentRows, sampleDoc(), "tester")

	require.Error(t, err)
	content.AssertNotCalled(t, "InsertBatch", mock.Anything, mock.Anything)
}
