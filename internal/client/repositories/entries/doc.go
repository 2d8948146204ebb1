// Package entries keeps the local copy of the user's shortened URLs.
//
// The backend is the source of truth: the cache is only ever replaced as a
// whole with the last list the server returned (ReplaceAll), and read back in
// the same order (GetAll). Entries are keyed by their short URL, falling back
// to the short code when the server omitted the URL.
//
// Typical usage
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    return entries.NewSQLiteRepository(tx).ReplaceAll(ctx, list)
//	})
//	list, _ := entries.NewSQLiteRepository(db).GetAll(ctx)
package entries
