package testkit

import (
	"fmt"
	"time"

	"fortio.org/safecast"

	"callprof/internal/stats"
)

// CheckSnapshotInvariants runs the aggregate invariants every statistics
// snapshot must satisfy:
// 1) every entry has at least one completed call and non-empty naming
// 2) min <= avg <= max for every entry
// 3) calls*min <= total <= calls*max
func CheckSnapshotInvariants(snap stats.Snapshot) error {
	for id, e := range snap {
		if e.Calls == 0 {
			return fmt.Errorf("%v: entry with zero calls", id)
		}
		if e.Name == "" {
			return fmt.Errorf("%v: entry without a name", id)
		}
		if e.Min < 0 || e.Total < 0 {
			return fmt.Errorf("%v: negative timing: min=%v total=%v", id, e.Min, e.Total)
		}

		avg := e.Avg()
		if e.Min > avg || avg > e.Max {
			return fmt.Errorf("%v: min/avg/max out of order: %v / %v / %v", id, e.Min, avg, e.Max)
		}

		calls, err := safecast.Conv[int64](e.Calls)
		if err != nil {
			return fmt.Errorf("%v: call count overflow: %w", id, err)
		}
		if lo := time.Duration(calls) * e.Min; e.Total < lo {
			return fmt.Errorf("%v: total %v below calls*min %v", id, e.Total, lo)
		}
		if hi := time.Duration(calls) * e.Max; e.Total > hi {
			return fmt.Errorf("%v: total %v above calls*max %v", id, e.Total, hi)
		}
	}
	return nil
}
