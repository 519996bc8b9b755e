// Package concurrentparser orchestrates PagePartitioner and
// ParseServiceClient under a bounded-concurrency semaphore, preserving
// result order (C4).
package concurrentparser

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"docingest/internal/partition"
	"docingest/internal/port"
	"docingest/internal/retry"
)

// Config controls one document's concurrent parse.
type Config struct {
	BatchSize      int
	Concurrency    int64
	PollInterval   time.Duration
	OverallTimeout time.Duration
	SubmitOptions  port.SubmitOptions
	Retry          retry.Config
}

// Parser runs ConcurrentParser.Parse for one document.
type Parser struct {
	client port.ParseServiceClient
	cfg    Config
}

// New builds a Parser over the given service client.
func New(client port.ParseServiceClient, cfg Config) *Parser {
	return &Parser{client: client, cfg: cfg}
}

type indexedResult struct {
	index int
	data  *port.TaskData
}

// Parse drives the full submit/poll/fetch cycle for one document, either
// as a single whole-file call (N<=B) or as K concurrent ranged calls,
// reassembled in ascending index order. It emits exactly one []port.TaskData
// (ordered) or one error.
func (p *Parser) Parse(ctx context.Context, fileBytes []byte, fileName string, pageCount int) ([]*port.TaskData, error) {
	if pageCount <= p.cfg.BatchSize {
		data, err := p.runOne(ctx, fileBytes, fileName, nil, nil)
		if err != nil {
			return nil, err
		}
		return []*port.TaskData{data}, nil
	}

	if p.cfg.BatchSize <= 0 {
		return nil, &partition.Error{Reason: fmt.Sprintf(
			"batch size must be positive to split %d pages across workers, got %d", pageCount, p.cfg.BatchSize,
		)}
	}
	ranges := partition.Split(pageCount, p.cfg.BatchSize)
	results := make([]*port.TaskData, len(ranges))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := semaphore.NewWeighted(p.cfg.Concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, r := range ranges {
		r := r
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			mu.Unlock()
			break
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			start, end := r.Start, r.End
			data, err := p.runOne(ctx, fileBytes, fileName, &start, &end)
			if err != nil {
				log.Printf("concurrentparser.Parse: range [%d,%d] failed: %v", r.Start, r.End, err)
				mu.Lock()
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				mu.Unlock()
				return
			}
			results[r.Index] = data
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

func (p *Parser) runOne(ctx context.Context, fileBytes []byte, fileName string, start, end *int) (*port.TaskData, error) {
	opts := p.cfg.SubmitOptions
	opts.StartPage = start
	opts.EndPage = end

	runner := retry.New(p.cfg.Retry)
	var data *port.TaskData

	err := runner.Do(ctx, func(ctx context.Context) error {
		taskID, err := p.client.Submit(ctx, fileBytes, fileName, opts)
		if err != nil {
			return err
		}
		if err := p.client.WaitForCompletion(ctx, taskID, p.cfg.PollInterval, p.cfg.OverallTimeout); err != nil {
			return err
		}
		fetched, err := p.client.FetchData(ctx, taskID)
		if err != nil {
			return err
		}
		data = fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}
