package usecase

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/roshannn-07/fairpass/internal/domain"
)

const defaultBulkConcurrency = 8

// BulkVerify runs VerifyTicket over a batch with bounded parallelism.
// Verdicts come back in input order.
type BulkVerify struct {
	Verify      *VerifyTicket
	Concurrency int
}

func (uc *BulkVerify) Execute(ctx context.Context, tickets []SignedTicket) []domain.Verdict {
	verdicts := make([]domain.Verdict, len(tickets))
	limit := uc.Concurrency
	if limit <= 0 {
		limit = defaultBulkConcurrency
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i, ticket := range tickets {
		i, ticket := i, ticket // per-iteration copies (go directive < 1.22)
		g.Go(func() error {
			verdicts[i] = uc.Verify.Execute(ctx, ticket)
			return nil
		})
	}
	_ = g.Wait()
	return verdicts
}
