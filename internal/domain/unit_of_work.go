package domain

import "context"

// UnitOfWork scopes store writes to one transaction. Remote calls must never
// happen inside fn.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
