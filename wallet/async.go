package wallet

import (
	"context"

	"github.com/findy-network/findy-wallet/async"
)

// MARK: the long running operations as futures. The futures hold the same
// results the blocking versions return.

// OpenAsync opens the wallet in its own goroutine. The value of the Future is
// the Handle, use Future.Int to read it.
func OpenAsync(ctx context.Context, cfg Config, creds Credentials) *async.Future {
	return async.Go(func() (any, error) {
		h, err := Open(ctx, cfg, creds)
		return int(h), err
	})
}

// ExportAsync exports the wallet in its own goroutine. The Future has no
// value.
func ExportAsync(ctx context.Context, h Handle, cfg ExportConfig) *async.Future {
	return async.Go(func() (any, error) {
		return nil, Export(ctx, h, cfg)
	})
}

// ImportAsync imports the archive in its own goroutine. The Future has no
// value.
func ImportAsync(ctx context.Context, cfg Config, creds Credentials, icfg ImportConfig) *async.Future {
	return async.Go(func() (any, error) {
		return nil, Import(ctx, cfg, creds, icfg)
	})
}

// FetchAsync fetches the next records of the search. The value of the Future
// is []Record.
func FetchAsync(ctx context.Context, h Handle, sh SearchHandle, count int) *async.Future {
	return async.Go(func() (any, error) {
		return FetchSearchNextRecords(ctx, h, sh, count)
	})
}
