package modeler

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// BatchResult pairs a batch request with its outcome.
type BatchResult struct {
	ModelName string
	Result    *Result
	Err       error
}

// CreateModels runs independent syntheses concurrently with bounded
// parallelism. Results keep request order; a failed request does not stop
// the others.
func (s *Service) CreateModels(ctx context.Context, reqs []CreateModelRequest) []BatchResult {
	out := make([]BatchResult, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchLimit)

	for i := range reqs {
		req := reqs[i]
		g.Go(func() error {
			res, err := s.CreateModel(gctx, req)
			out[i] = BatchResult{ModelName: req.ModelName, Result: res, Err: err}
			if err != nil {
				s.logger.Warn("model synthesis failed", "model", req.ModelName, "error", err)
			}
			return nil // one failure must not cancel the rest
		})
	}
	_ = g.Wait()
	return out
}
