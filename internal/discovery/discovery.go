// Package discovery finds new panes belonging to known Sessions, recognizes
// assistant panes by signature, extracts role names, and retires stale
// Members. It never creates a top-level Session from nothing; it only
// expands Sessions the operator already created or adopted.
package discovery

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/kestrelio/apiary/internal/detect"
	"github.com/kestrelio/apiary/internal/store"
	"github.com/kestrelio/apiary/internal/tmux"
)

// StaleAfterCycles is how many consecutive reload cycles a Member's pane may
// be missing from the multiplexer before it is removed.
const StaleAfterCycles = 2

// signaturePatterns identify a pane as hosting the target assistant.
var signaturePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)claude`),
	regexp.MustCompile(`❯`),
	regexp.MustCompile(`(?i)tool use`),
	regexp.MustCompile(`(?i)\bBash\b.*\bRead\b`),
	regexp.MustCompile(`(?i)anthropic`),
	regexp.MustCompile(`(?m)^\s{2}(Read|Write|Edit|Grep|Glob|Bash|Task)\s`),
}

var (
	atNamePattern    = regexp.MustCompile(`@(\w+)`)
	leadWordPattern  = regexp.MustCompile(`(?i)\b(lead|team lead|leader)\b`)
	roleWordPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)agent:\s*(\w+)`),
		regexp.MustCompile(`(?i)teammate:\s*(\w+)`),
		regexp.MustCompile(`(?i)worker:\s*(\w+)`),
		regexp.MustCompile(`(?i)I am\s+(\w+)`),
	}
	roleStopwords = map[string]bool{
		"the": true, "a": true, "an": true, "this": true, "that": true,
		"claude": true, "code": true,
	}

	memberNumSuffix = regexp.MustCompile(`^member-(\d+)$`)
)

// DiscoveryTailLines is how much of a candidate pane's scrollback is
// captured to test the assistant signature and extract a role name.
const DiscoveryTailLines = 40

// looksLikeAssistant reports whether text matches the assistant signature.
func looksLikeAssistant(text string) bool {
	for _, p := range signaturePatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// extractRole derives a role name for a newly discovered pane, given the
// pane's captured text and the set of role names already used in its Session.
func extractRole(text string, used map[string]bool) string {
	if m := atNamePattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if leadWordPattern.MatchString(text) {
		if !used["lead"] {
			return "lead"
		}
	}
	for _, p := range roleWordPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			candidate := strings.ToLower(m[1])
			if !roleStopwords[candidate] {
				return candidate
			}
		}
	}
	return nextMemberName(used)
}

func nextMemberName(used map[string]bool) string {
	taken := map[int]bool{}
	for name := range used {
		if m := memberNumSuffix.FindStringSubmatch(name); m != nil {
			n := 0
			fmt.Sscanf(m[1], "%d", &n)
			taken[n] = true
		}
	}
	k := 0
	for taken[k] {
		k++
	}
	return fmt.Sprintf("member-%d", k)
}

// Run performs one discovery pass over sessions, mutating them in place:
// adding Members for newly recognized panes, incrementing StaleCycles for
// Members whose pane has vanished, and removing Members stale for
// StaleAfterCycles consecutive passes. rules classifies a newly discovered
// pane's initial status, so config-supplied detection patterns apply from
// a Member's very first cycle onward, not just subsequent reclassification.
//
// When promoteTeammates is set, a Session's Members beyond the first are
// split into sibling child Sessions ("<parent>/<role>") sharing the
// parent's tmux session and Group, so each teammate gets its own dashboard
// card. This can grow sessions, so Run returns the (possibly reallocated)
// slice alongside whether anything changed.
func Run(adapter *tmux.Client, sessions []*store.Session, rules detect.Rules, promoteTeammates bool) ([]*store.Session, bool, error) {
	changed := false

	byTmux := make(map[string][]*store.Session)
	for _, s := range sessions {
		byTmux[s.TmuxSession] = append(byTmux[s.TmuxSession], s)
	}

	for tmuxSession, group := range byTmux {
		parent := parentOf(group)
		if parent == nil {
			// Every Session sharing this tmux session is an orphaned child
			// (its parent was dropped/forgotten); pruning below cleans these
			// up once they run out of members.
			continue
		}

		panes, err := adapter.ListPanes(tmuxSession)
		if err != nil {
			// Multiplexer session vanished mid-cycle: leave it for the next
			// LoadAndReconcile pass rather than erroring the whole run.
			continue
		}

		live := make(map[string]bool, len(panes))
		for _, p := range panes {
			live[p.ID] = true
		}

		// Mark/retire stale members across every Session sharing this tmux
		// session, parent and any already-promoted children alike.
		for _, s := range group {
			kept := s.Members[:0]
			for _, m := range s.Members {
				if live[m.Pane] {
					m.StaleCycles = 0
					kept = append(kept, m)
					continue
				}
				m.StaleCycles++
				if m.StaleCycles < StaleAfterCycles {
					kept = append(kept, m)
					changed = true
					continue
				}
				changed = true // dropped
			}
			s.Members = kept
		}

		// Discover new panes against roles/panes already claimed anywhere
		// in the group, so a promoted teammate isn't rediscovered by the
		// parent on the next cycle.
		used := make(map[string]bool)
		owned := make(map[string]bool)
		for _, s := range group {
			for _, m := range s.Members {
				used[m.Role] = true
				owned[m.Pane] = true
			}
		}

		for _, p := range panes {
			if owned[p.ID] {
				continue
			}
			text, err := adapter.CapturePane(p.ID, DiscoveryTailLines)
			if err != nil || !looksLikeAssistant(text) {
				continue
			}
			role := extractRole(text, used)
			used[role] = true
			owned[p.ID] = true

			status, _ := detect.Classify(text, true, rules)
			member := &store.Member{
				Role:       role,
				Pane:       p.ID,
				Status:     status,
				LastChange: time.Now(),
			}

			if promoteTeammates && len(parent.Members) > 0 {
				if parent.Group == "" {
					parent.Group = parent.Name
				}
				child := &store.Session{
					Name:        parent.Name + "/" + role,
					Kind:        store.KindSolo,
					TmuxSession: tmuxSession,
					CreatedAt:   time.Now(),
					Group:       parent.Group,
					Members:     []*store.Member{member},
				}
				sessions = append(sessions, child)
				group = append(group, child)
			} else {
				parent.Members = append(parent.Members, member)
			}
			changed = true
		}

		for _, s := range group {
			before := s.Kind
			s.UpdateKind()
			if s.Kind != before {
				changed = true
			}
			s.RollupStatus()
		}
	}

	if promoteTeammates {
		sessions, changed = pruneOrphanedChildren(sessions, changed)
	}

	return sessions, changed, nil
}

// parentOf returns the Session in group that owns the group (Group unset,
// or Group equal to its own Name), or nil if the group consists entirely
// of orphaned children.
func parentOf(group []*store.Session) *store.Session {
	for _, s := range group {
		if s.Group == "" || s.Group == s.Name {
			return s
		}
	}
	return nil
}

// pruneOrphanedChildren drops promoted child Sessions (Group set, Group
// differs from Name) that have lost every Member, e.g. because their
// parent Session was dropped or forgotten out from under them.
func pruneOrphanedChildren(sessions []*store.Session, changed bool) ([]*store.Session, bool) {
	kept := sessions[:0]
	for _, s := range sessions {
		if s.Group != "" && s.Group != s.Name && len(s.Members) == 0 {
			changed = true
			continue
		}
		kept = append(kept, s)
	}
	return kept, changed
}
