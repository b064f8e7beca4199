package adapter

import (
	"context"

	"github.com/leapstack-labs/dbcleaner/pkg/core"
	"golang.org/x/sync/errgroup"
)

// DefaultCountConcurrency bounds RowCounts when no limit is given.
const DefaultCountConcurrency = 4

// TableCount pairs a table with its row count.
type TableCount struct {
	Table core.TableRef
	Rows  int64
}

// RowCounts counts rows in every table concurrently, at most limit queries at
// a time (DefaultCountConcurrency when limit <= 0). Results keep the input order.
func RowCounts(ctx context.Context, a Adapter, tables []core.TableRef, limit int) ([]TableCount, error) {
	if limit <= 0 {
		limit = DefaultCountConcurrency
	}

	counts := make([]TableCount, len(tables))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, t := range tables {
		g.Go(func() error {
			n, err := a.RowCount(gctx, t)
			if err != nil {
				return err
			}
			counts[i] = TableCount{Table: t, Rows: n}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return counts, nil
}
