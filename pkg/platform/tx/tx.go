// Package tx lets the data stat store join the transaction opened by the
// stats service. postgres.RunInTx stores the transaction here, and
// postgres.Conn picks it up in each store call made under that context.
package tx

import (
	"context"
	"database/sql"
)

type txKey struct{}

// With returns ctx carrying tx. A nil tx leaves ctx unchanged.
func With(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey{}, tx)
}

// From returns the transaction opened by postgres.RunInTx, if ctx is inside one.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok
}
