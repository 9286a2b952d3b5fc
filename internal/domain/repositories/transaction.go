package repositories

import "context"

// TxFn runs inside a transaction. Repositories called with the ctx it
// receives join that transaction.
type TxFn func(ctx context.Context) error

// TransactionManager runs a unit of work atomically. A non-nil error from
// fn rolls the whole unit back.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
