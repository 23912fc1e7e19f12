package extraction

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ontoforge/ontoforge-go/pkg/models"
)

// BatchItem is one extraction outcome. Exactly one of Result and Err
// is set; a per-item timeout surfaces as that item's Err without
// touching the others.
type BatchItem struct {
	Index  int
	Result *models.ExtractionResult
	Err    error
}

// BatchExtractor fans extraction out over many documents with a
// bounded concurrency window and an independent timeout per item.
type BatchExtractor struct {
	extractor      Extractor
	maxConcurrent  int
	timeoutPerItem time.Duration
}

// NewBatchExtractor creates a batch runner. maxConcurrent and
// timeoutPerItem must be positive.
func NewBatchExtractor(extractor Extractor, maxConcurrent int, timeoutPerItem time.Duration) (*BatchExtractor, error) {
	if extractor == nil {
		return nil, fmt.Errorf("extractor is required")
	}
	if maxConcurrent < 1 {
		return nil, fmt.Errorf("max concurrent must be positive, got %d", maxConcurrent)
	}
	if timeoutPerItem <= 0 {
		return nil, fmt.Errorf("timeout per item must be positive, got %s", timeoutPerItem)
	}
	return &BatchExtractor{
		extractor:      extractor,
		maxConcurrent:  maxConcurrent,
		timeoutPerItem: timeoutPerItem,
	}, nil
}

// ExtractBatch runs extraction over all texts, admitting at most
// maxConcurrent in-flight items. The returned slice is ordered by
// input index and always has one element per input.
func (b *BatchExtractor) ExtractBatch(ctx context.Context, texts []string, confidenceThreshold float64) []BatchItem {
	items := make([]BatchItem, len(texts))
	semaphore := make(chan struct{}, b.maxConcurrent)
	var wg sync.WaitGroup

	for i, text := range texts {
		wg.Add(1)
		go func(index int, text string) {
			defer wg.Done()

			select {
			case semaphore <- struct{}{}:
				defer func() { <-semaphore }()
			case <-ctx.Done():
				items[index] = BatchItem{Index: index, Err: fmt.Errorf("batch aborted: %w", ctx.Err())}
				return
			}

			itemCtx, cancel := context.WithTimeout(ctx, b.timeoutPerItem)
			defer cancel()

			result, err := b.extractor.Extract(itemCtx, text, confidenceThreshold)
			if err != nil {
				items[index] = BatchItem{Index: index, Err: fmt.Errorf("item %d failed: %w", index, err)}
				return
			}
			items[index] = BatchItem{Index: index, Result: result}
		}(i, text)
	}
	wg.Wait()
	return items
}
