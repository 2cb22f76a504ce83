package seed

import (
	"fmt"
	"math/rand"
	"time"
)

// Sites and shifts a session can be attributed to.
var (
	sites  = []string{"alpha-plant", "beta-yard", "charlie-warehouse"}
	shifts = []string{"day", "swing", "night"}
)

// SessionContext is the set of labels shared by every record of one
// seeded session.
type SessionContext struct {
	Robot      string
	RunID      string
	StateID    string
	MissionID  string
	OperatorID string
	Site       string
	Shift      string
}

// Labels returns the context as record labels.
func (c SessionContext) Labels() map[string]string {
	return map[string]string{
		"robot":       c.Robot,
		"run_id":      c.RunID,
		"state_id":    c.StateID,
		"mission_id":  c.MissionID,
		"operator_id": c.OperatorID,
		"site":        c.Site,
		"shift":       c.Shift,
	}
}

// NewSessionContext draws a fresh session context from rng.
func NewSessionContext(robot string, rng *rand.Rand) SessionContext {
	return SessionContext{
		Robot:      robot,
		RunID:      fmt.Sprintf("%08x", rng.Uint32()),
		StateID:    fmt.Sprintf("state-%d", 1+rng.Intn(5)),
		MissionID:  fmt.Sprintf("mission-%d", 1000+rng.Intn(9000)),
		OperatorID: fmt.Sprintf("op-%d", 10+rng.Intn(90)),
		Site:       sites[rng.Intn(len(sites))],
		Shift:      shifts[rng.Intn(len(shifts))],
	}
}

// BuildSessionStarts returns the Unix-nanosecond start times of every
// session in the window [now+startOffset, now+endOffset], one session
// every interval.
func BuildSessionStarts(now time.Time, startOffset, endOffset, interval time.Duration) []int64 {
	if interval <= 0 {
		return nil
	}

	start := now.Add(startOffset).UTC()
	end := now.Add(endOffset).UTC()

	var out []int64
	for t := start; !t.After(end); t = t.Add(interval) {
		out = append(out, t.UnixNano())
	}
	return out
}
