package roundqueue

// QueueRounds is the dedicated queue for round maintenance jobs.
const QueueRounds = "rounds"

// ExpireRoundArgs removes one round if it is still open with zero score
// cells when the job fires.
type ExpireRoundArgs struct {
	RoundID int64 `json:"round_id"`
}

// Kind returns the job type identifier for River.
func (ExpireRoundArgs) Kind() string { return "round_expiry" }

// SweepAbandonedArgs scans for scoreless rounds whose per-round expiry job
// was lost.
type SweepAbandonedArgs struct{}

// Kind returns the job type identifier for River.
func (SweepAbandonedArgs) Kind() string { return "round_sweep" }
