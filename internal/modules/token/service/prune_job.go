package token

import (
	"context"

	"anoa.com/pengaduan/pkg/logger"
	"go.uber.org/zap"
)

const PruneJobName = "prune-expired-tokens"

// PruneJob removes expired auth_tokens rows on a schedule.
type PruneJob struct {
	tokens Service
}

func NewPruneJob(tokens Service) *PruneJob {
	return &PruneJob{tokens: tokens}
}

func (j *PruneJob) Name() string {
	return PruneJobName
}

func (j *PruneJob) Execute(ctx context.Context) error {
	n, err := j.tokens.PruneExpired(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Named("token").Info("expired tokens pruned", zap.Int64("count", n))
	}
	return nil
}
