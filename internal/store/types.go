// Package store owns the on-disk representation of session topology: the
// set of tracked Sessions, their Members, and the atomic load/save protocol
// that keeps the JSON document always either absent, empty, or complete.
package store

import "time"

// MemberStatus classifies the semantic state of one assistant pane.
type MemberStatus string

const (
	StatusIdle       MemberStatus = "idle"
	StatusWorking    MemberStatus = "working"
	StatusPermission MemberStatus = "permission"
	StatusError      MemberStatus = "error"
	StatusDone       MemberStatus = "done"
	StatusUnknown    MemberStatus = "unknown"
)

// priority orders MemberStatus for rollup: higher wins.
var priority = map[MemberStatus]int{
	StatusPermission: 4,
	StatusError:      3,
	StatusWorking:    2,
	StatusIdle:       1,
	StatusDone:       0,
	StatusUnknown:    -1,
}

// Priority returns a MemberStatus's rank in the rollup ordering
// Permission > Error > Working > Idle > Done > Unknown; higher wins. It is
// also how a hinted status (e.g. from Hooks Ingest) is compared against a
// Member's currently classified status to decide whether the hint refines
// it or would only downgrade it.
func Priority(status MemberStatus) int {
	return priority[status]
}

// Rollup computes SessionStatus from a set of MemberStatus values under the
// priority ordering Permission > Error > Working > Idle > Done, with an
// all-Unknown member set rolling up to Unknown and an empty member set
// rolling up to Idle.
func Rollup(statuses []MemberStatus) MemberStatus {
	if len(statuses) == 0 {
		return StatusIdle
	}
	best := statuses[0]
	allUnknown := true
	for _, s := range statuses {
		if s != StatusUnknown {
			allUnknown = false
		}
		if priority[s] > priority[best] {
			best = s
		}
	}
	if allUnknown {
		return StatusUnknown
	}
	if best == StatusUnknown {
		// Mixed set with no positively-classified member above Unknown:
		// fall back to the least alarming named state.
		return StatusIdle
	}
	return best
}

// SessionKind distinguishes a single-assistant Session from a multi-member team.
type SessionKind string

const (
	KindSolo SessionKind = "solo"
	KindTeam SessionKind = "team"
)

// Member is one assistant instance inside one multiplexer pane.
type Member struct {
	Role       string       `json:"role"`
	Pane       string       `json:"pane"`
	Status     MemberStatus `json:"status"`
	LastChange time.Time    `json:"last_change"`

	// Transient, never persisted.
	LastPolled    time.Time    `json:"-"`
	LastTail      string       `json:"-"`
	LastTailANSI  string       `json:"-"`
	Width, Height int          `json:"-"`
	WorkingSecs   int64        `json:"-"`
	SubAgents     []SubAgent   `json:"-"`
	StaleCycles   int          `json:"-"`
	ErrorCount    int          `json:"-"`
}

// SubAgent is a derived, non-persisted view of a background Task-tool agent
// spawned by a Member's assistant process.
type SubAgent struct {
	Type        string
	Description string
}

// Session (also "Pod" in the domain glossary) is a named unit of work bound
// to one multiplexer session.
type Session struct {
	Name         string      `json:"name"`
	Kind         SessionKind `json:"kind"`
	TmuxSession  string      `json:"tmux_session"`
	Worktree     string      `json:"worktree,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	Group        string      `json:"group,omitempty"`
	Members      []*Member   `json:"members"`

	// Transient.
	Status MemberStatus `json:"-"`
}

// RollupStatus recomputes and caches Session.Status from its Members.
func (s *Session) RollupStatus() MemberStatus {
	statuses := make([]MemberStatus, len(s.Members))
	for i, m := range s.Members {
		statuses[i] = m.Status
	}
	s.Status = Rollup(statuses)
	return s.Status
}

// MemberByPane returns the member owning pane, if any.
func (s *Session) MemberByPane(pane string) *Member {
	for _, m := range s.Members {
		if m.Pane == pane {
			return m
		}
	}
	return nil
}

// UpdateKind sets Kind from the current member count.
func (s *Session) UpdateKind() {
	if len(s.Members) <= 1 {
		s.Kind = KindSolo
	} else {
		s.Kind = KindTeam
	}
}

// Document is the exact on-disk schema, versioned so future changes can migrate.
type Document struct {
	Version  int        `json:"version"`
	Sessions []*Session `json:"sessions"`
}

// CurrentVersion is written by Save and accepted (along with earlier
// versions, unconditionally, since no migration exists yet) by Load.
const CurrentVersion = 1
