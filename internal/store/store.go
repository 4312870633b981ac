// Package store defines the narrow append/full-read contract the bot
// has against the shared complaint record store. Issuance and status
// lookup deliberately work off full scans of these rows so they keep
// working when the back office reorders or adds columns.
package store

import "context"

// RecordStore is the append-only tabular store of submitted tickets.
// ReadAllRecords returns rows of cell strings, optionally led by a
// header row; callers must tolerate a missing header, ragged rows, and
// non-numeric cells.
type RecordStore interface {
	AppendRecord(ctx context.Context, row []string) error
	ReadAllRecords(ctx context.Context) ([][]string, error)
}

// Pinger is implemented by adapters that can cheaply verify
// connectivity; the ops readiness probe uses it when available.
type Pinger interface {
	Ping(ctx context.Context) error
}
