package queue_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docingest/internal/domain"
	"docingest/internal/port"
	"docingest/internal/queue"
	"docingest/mocks"
)

type countingIngester struct {
	calls int32
}

func (c *countingIngester) Ingest(ctx context.Context, fileBytes []byte, fileName string, ref domain.KnowledgeRef, creator string) (*domain.IngestionReport, error) {
	atomic.AddInt32(&c.calls, 1)
	return &domain.IngestionReport{FileName: fileName}, nil
}

func TestWorker_ClaimsAndDispatchesUnderConcurrencyCap(t *testing.T) {
	source := new(mocks.MockQueueSource)
	source.On("ClaimQueued", mock.Anything, mock.Anything).Return([]port.QueuedDocument{
		{ID: "d1", FileName: "a.pdf"},
		{ID: "d2", FileName: "b.pdf"},
	}, nil).Once()
	source.On("ClaimQueued", mock.Anything, mock.Anything).Return([]port.QueuedDocument{}, nil)

	ingester := &countingIngester{}
	w := queue.New(source, ingester, queue.Config{PollInterval: 5 * time.Millisecond, Concurrency: 2})

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()
	w.Start(ctx)

	require.Equal(t, int32(2), atomic.LoadInt32(&ingester.calls))
}

type slowIngester struct {
	finished int32
}

func (s *slowIngester) Ingest(ctx context.Context, fileBytes []byte, fileName string, ref domain.KnowledgeRef, creator string) (*domain.IngestionReport, error) {
	time.Sleep(50 * time.Millisecond)
	atomic.StoreInt32(&s.finished, 1)
	return &domain.IngestionReport{FileName: fileName}, nil
}

func TestWorker_ShutdownWaitsForInFlightWork(t *testing.T) {
	source := new(mocks.MockQueueSource)
	source.On("ClaimQueued", mock.Anything, mock.Anything).Return([]port.QueuedDocument{
		{ID: "d1", FileName: "a.pdf"},
	}, nil).Once()
	source.On("ClaimQueued", mock.Anything, mock.Anything).Return([]port.QueuedDocument{}, nil)

	// The ingestion outlives the 15ms context, so Start must wait for it.
	ingester := &slowIngester{}
	w := queue.New(source, ingester, queue.Config{PollInterval: 5 * time.Millisecond, Concurrency: 1})

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not shut down")
	}
	require.Equal(t, int32(1), atomic.LoadInt32(&ingester.finished))
}
