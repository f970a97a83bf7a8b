// Package mem implements an in-memory history store, used for testing purposes.
/*
mem provides a full implementation of the [history.Store] interface.

Each write transaction operates on a copy of the recorded data, which replaces the current data on commit.
If a transaction fails, the copy is discarded.

Create a Store

Since testing must be deterministic, a mem store is created with a disabled history cleanup, not running a goroutine.
If a cleanup is needed, it can be configured via [mem.Options].Common.CleanupEnabled.

	s, err := mem.New(func(o *mem.Options) {
		o.Common.EngineId = "my-mem-engine"
		o.Common.HistoryLevel = history.HistoryAudit
	})
	if err != nil {
		log.Fatalf("failed to create mem store: %v", err)
	}

	defer s.Shutdown()
*/
package mem
