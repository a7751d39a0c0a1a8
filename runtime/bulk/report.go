package bulk

import "time"

// Stage is a step of one Commit call.
type Stage int

const (
	StageIdle Stage = iota
	StageTxStarted
	StageLocked
	StageKeysAllocated
	StageInserted
	StageUnlocked
	StageUpdated
	StageReconciled
	StageCommitted
	StageRollingBack
	StageRolledBack
)

var stageNames = [...]string{
	StageIdle:          "idle",
	StageTxStarted:     "tx_started",
	StageLocked:        "locked",
	StageKeysAllocated: "keys_allocated",
	StageInserted:      "inserted",
	StageUnlocked:      "unlocked",
	StageUpdated:       "updated",
	StageReconciled:    "reconciled",
	StageCommitted:     "committed",
	StageRollingBack:   "rolling_back",
	StageRolledBack:    "rolled_back",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// Report summarises one Commit call.
type Report struct {
	CommitID      string
	Stage         Stage
	FailedAt      Stage
	Tables        []string
	RowsInserted  int
	Chunks        int
	Updates       int
	KeysAllocated int
	OwnTx         bool
	Duration      time.Duration
	Err           error
}

// Succeeded reports whether the commit reached StageCommitted
func (r Report) Succeeded() bool {
	return r.Stage == StageCommitted
}
