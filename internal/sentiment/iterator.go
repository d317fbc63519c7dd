package sentiment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spacesedan/vidinsight/internal/models"
)

// ErrStreamExhausted terminates a fully consumed result iterator.
var ErrStreamExhausted = errors.New("result stream exhausted")

// BatchItem pairs one comment's classification with the progress snapshot of
// the batch that produced it.
type BatchItem struct {
	Result   models.SentimentResult
	Progress models.BatchProgress
}

// ResultIterator is a forward-only cursor over progressive batch
// classification. Each underlying batch is classified when the first of its
// items is requested, so a consumer observes progress between batches without
// waiting for the full set. Consuming the iterator twice is not possible;
// callers needing replay must materialize the results themselves.
type ResultIterator struct {
	analyzer     *Analyzer
	ctx          context.Context
	texts        []string
	batchSize    int
	totalBatches int

	pending   []BatchItem
	cursor    int
	batchNum  int
	processed int
}

func (it *ResultIterator) Next() (*BatchItem, error) {
	if len(it.pending) == 0 {
		if err := it.advance(); err != nil {
			return nil, err
		}
	}

	item := it.pending[0]
	it.pending = it.pending[1:]
	return &item, nil
}

// advance classifies the next batch and stages its items. This is the
// iterator's only suspension point.
func (it *ResultIterator) advance() error {
	if it.cursor >= len(it.texts) {
		return ErrStreamExhausted
	}

	select {
	case <-it.ctx.Done():
		return it.ctx.Err()
	default:
	}

	end := it.cursor + it.batchSize
	if end > len(it.texts) {
		end = len(it.texts)
	}
	batch := it.texts[it.cursor:end]

	start := time.Now()
	results := it.analyzer.classify(it.ctx, batch)
	batchTimeMS := float64(time.Since(start).Microseconds()) / 1000

	tokens := 0
	for _, text := range batch {
		tokens += len(strings.Fields(text))
	}

	it.batchNum++
	for _, result := range results {
		it.processed++
		it.pending = append(it.pending, BatchItem{
			Result: result,
			Progress: models.BatchProgress{
				BatchNum:      it.batchNum,
				TotalBatches:  it.totalBatches,
				Processed:     it.processed,
				Total:         len(it.texts),
				BatchTimeMS:   batchTimeMS,
				TokensInBatch: tokens,
			},
		})
	}
	it.cursor = end
	return nil
}
