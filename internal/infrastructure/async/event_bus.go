package async

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ptalsvc/internal/domain"
)

// Handler is the subscriber side of the bus; in this service it is the PTAL
// event fan-out.
type Handler func(ctx context.Context, e domain.Event)

// AsyncEventBus decouples webhook ingestion from reconciliation: Publish
// returns immediately, the handler runs on the pool.
type AsyncEventBus struct {
	pool    *WorkerPool
	handler Handler
	log     *zap.Logger
}

func NewAsyncEventBus(ctx context.Context, poolSize int, taskTimeout time.Duration, handler Handler, log *zap.Logger) *AsyncEventBus {
	return &AsyncEventBus{
		pool:    NewWorkerPool(ctx, poolSize, taskTimeout, log),
		handler: handler,
		log:     log,
	}
}

func (b *AsyncEventBus) Publish(_ context.Context, e domain.Event) {
	b.pool.Submit(func(taskCtx context.Context) {
		b.log.Info("pr_event",
			zap.String("kind", string(e.Kind)),
			zap.String("owner", e.Owner),
			zap.String("repo", e.Repo),
			zap.Int("pr_number", e.PRNumber),
		)
		b.handler(taskCtx, e)
	})
}

func (b *AsyncEventBus) Close() {
	b.pool.Shutdown()
}
