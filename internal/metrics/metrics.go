package metrics

import "expvar"

var (
	RatingsCreated = expvar.NewInt("ratings_created")
	MarketsCreated = expvar.NewInt("markets_created")
	JournalErrors  = expvar.NewInt("journal_errors")
	SnapshotSaves  = expvar.NewInt("snapshot_saves")
	RateLimited    = expvar.NewInt("rate_limited")
)
