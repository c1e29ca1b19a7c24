package discovery

import (
	"testing"

	"github.com/kestrelio/apiary/internal/store"
)

func TestLooksLikeAssistant(t *testing.T) {
	if !looksLikeAssistant("Claude Code\n❯ ") {
		t.Error("expected assistant signature match")
	}
	if looksLikeAssistant("just a bash prompt\n$ ") {
		t.Error("did not expect assistant signature match")
	}
}

func TestExtractRoleAtName(t *testing.T) {
	role := extractRole("roster: @impl @lead\nworking now", map[string]bool{})
	if role != "impl" {
		t.Errorf("role = %q, want impl", role)
	}
}

func TestExtractRoleLead(t *testing.T) {
	role := extractRole("I am the team lead for this session", map[string]bool{})
	if role != "lead" {
		t.Errorf("role = %q, want lead", role)
	}
}

func TestExtractRoleAgentColon(t *testing.T) {
	role := extractRole("agent: reviewer\nsome text", map[string]bool{})
	if role != "reviewer" {
		t.Errorf("role = %q, want reviewer", role)
	}
}

func TestExtractRoleFallback(t *testing.T) {
	role := extractRole("nothing distinguishing here", map[string]bool{"member-0": true})
	if role != "member-1" {
		t.Errorf("role = %q, want member-1", role)
	}
}

func TestNextMemberNameFillsGaps(t *testing.T) {
	used := map[string]bool{"member-0": true, "member-2": true}
	if got := nextMemberName(used); got != "member-1" {
		t.Errorf("got %q, want member-1", got)
	}
}

func TestParentOfPrefersUngroupedSession(t *testing.T) {
	parent := &store.Session{Name: "demo"}
	group := []*store.Session{parent}
	if got := parentOf(group); got != parent {
		t.Errorf("parentOf(ungrouped) = %v, want %v", got, parent)
	}
}

func TestParentOfPrefersSessionThatIsItsOwnGroup(t *testing.T) {
	child := &store.Session{Name: "demo/impl", Group: "demo"}
	parent := &store.Session{Name: "demo", Group: "demo"}
	group := []*store.Session{child, parent}
	if got := parentOf(group); got != parent {
		t.Errorf("parentOf = %v, want %v", got, parent)
	}
}

func TestParentOfReturnsNilForAllOrphans(t *testing.T) {
	group := []*store.Session{{Name: "demo/impl", Group: "demo"}}
	if got := parentOf(group); got != nil {
		t.Errorf("parentOf(all-orphan group) = %v, want nil", got)
	}
}

func TestPruneOrphanedChildrenDropsEmptyChild(t *testing.T) {
	parent := &store.Session{Name: "demo", Group: "demo", Members: []*store.Member{{Role: "lead"}}}
	emptyChild := &store.Session{Name: "demo/impl", Group: "demo"}
	sessions := []*store.Session{parent, emptyChild}

	kept, changed := pruneOrphanedChildren(sessions, false)
	if !changed {
		t.Error("expected changed=true after dropping an orphaned child")
	}
	if len(kept) != 1 || kept[0] != parent {
		t.Errorf("kept = %+v, want only the parent", kept)
	}
}

func TestPruneOrphanedChildrenKeepsPopulatedChild(t *testing.T) {
	parent := &store.Session{Name: "demo", Group: "demo", Members: []*store.Member{{Role: "lead"}}}
	child := &store.Session{Name: "demo/impl", Group: "demo", Members: []*store.Member{{Role: "impl"}}}
	sessions := []*store.Session{parent, child}

	kept, changed := pruneOrphanedChildren(sessions, false)
	if changed {
		t.Error("expected changed=false, nothing was dropped")
	}
	if len(kept) != 2 {
		t.Errorf("kept = %+v, want both sessions retained", kept)
	}
}
