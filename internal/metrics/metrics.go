// Package metrics fetches per-stage performance documents after a job
// reaches a terminal status.
package metrics

import (
	"context"
	"sync"

	"github.com/sivacor/sivacor-cli/internal/models"
)

// Service is the slice of the API client the fetcher needs.
type Service interface {
	GetStageMetrics(ctx context.Context, fileID string) (*models.StageMetrics, error)
}

// StageResult pairs a metrics document with the zero-based stage index it
// belongs to.
type StageResult struct {
	Stage   int
	Metrics models.StageMetrics
}

// FetchAll retrieves the metrics artifact for every stage concurrently and
// returns the successful results in stage order. A failed fetch for one
// stage never blocks or fails the others; failures are dropped, and the
// caller simply sees fewer results.
func FetchAll(ctx context.Context, svc Service, fileIDs []string) []StageResult {
	if len(fileIDs) == 0 {
		return nil
	}

	results := make([]*models.StageMetrics, len(fileIDs))

	var wg sync.WaitGroup
	for i, id := range fileIDs {
		if id == "" {
			continue
		}
		wg.Add(1)
		go func(idx int, fileID string) {
			defer wg.Done()
			m, err := svc.GetStageMetrics(ctx, fileID)
			if err != nil {
				return
			}
			results[idx] = m
		}(i, id)
	}
	wg.Wait()

	var out []StageResult
	for i, m := range results {
		if m != nil {
			out = append(out, StageResult{Stage: i, Metrics: *m})
		}
	}
	return out
}
