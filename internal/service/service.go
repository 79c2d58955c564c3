// Package service implements the CRM use cases on top of the repositories.
// Mutations run inside one unit of work and publish a domain event after
// the commit.
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/sidago/crm-api/internal/queue"
)

// TxRunner runs fn inside a transaction carried by the context it receives.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// publish sends ev and only logs a failure: the mutation is already
// committed.
func publish(ctx context.Context, p queue.Publisher, log *zap.Logger, ev queue.Event) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, ev); err != nil {
		log.Warn("publish event failed", zap.String("type", ev.Type), zap.Uint64("entity_id", ev.EntityID), zap.Error(err))
	}
}
