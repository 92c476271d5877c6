package consensus

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/x402resolve/oracle/internal/model"
)

// AssessmentFetcher retrieves one oracle's independent assessment of a
// dispute. Implementations dial out to the selected oracle (a remote
// process out of this system's scope) and return its signed contribution.
type AssessmentFetcher func(ctx context.Context, oraclePubkey string) (model.OracleAssessment, error)

// maxConcurrentFetches bounds how many oracle assessments are requested at
// once, mirroring the bounded worker pool shape used for backfill scoring
// elsewhere in the corpus.
const maxConcurrentFetches = 8

// CollectAssessments dispatches fetch to every oracle in pubkeys
// concurrently (bounded by maxConcurrentFetches) and returns every
// assessment that arrived before ctx's deadline, plus the pubkeys whose
// fetch failed or timed out. It never returns early on a single oracle's
// failure — the aggregator only needs MinOracles usable assessments, so a
// partial round is still valid input to Aggregate.
func CollectAssessments(ctx context.Context, pubkeys []string, fetch AssessmentFetcher) ([]model.OracleAssessment, []string) {
	results := make([]model.OracleAssessment, len(pubkeys))
	ok := make([]bool, len(pubkeys))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)

	for i, key := range pubkeys {
		i, key := i, key
		g.Go(func() error {
			a, err := fetch(gCtx, key)
			if err != nil {
				return nil //nolint:nilerr // per-oracle failure; collected below, never aborts the round
			}
			results[i] = a
			ok[i] = true
			return nil
		})
	}
	_ = g.Wait()

	collected := make([]model.OracleAssessment, 0, len(pubkeys))
	var failed []string
	for i, key := range pubkeys {
		if ok[i] {
			collected = append(collected, results[i])
		} else {
			failed = append(failed, key)
		}
	}
	return collected, failed
}
