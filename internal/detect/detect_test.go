package detect

import (
	"regexp"
	"testing"

	"github.com/kestrelio/apiary/internal/store"
)

func TestClassifyEmptyIsUnknown(t *testing.T) {
	status, _ := Classify("   \n\n  ", true, DefaultRules())
	if status != store.StatusUnknown {
		t.Errorf("got %v, want Unknown", status)
	}
}

func TestClassifyAdapterFailureIsUnknown(t *testing.T) {
	status, _ := Classify("anything", false, DefaultRules())
	if status != store.StatusUnknown {
		t.Errorf("got %v, want Unknown", status)
	}
}

func TestClassifyPermissionBeatsError(t *testing.T) {
	text := "Error: previous step failed\nAllow this action? (y/n)"
	status, req := Classify(text, true, DefaultRules())
	if status != store.StatusPermission {
		t.Fatalf("got %v, want Permission", status)
	}
	if req == nil {
		t.Fatal("expected a parsed permission request")
	}
}

func TestClassifyError(t *testing.T) {
	status, _ := Classify("Error: could not reach the network", true, DefaultRules())
	if status != store.StatusError {
		t.Errorf("got %v, want Error", status)
	}
}

func TestClassifyDone(t *testing.T) {
	status, _ := Classify("goodbye\nsession ended", true, DefaultRules())
	if status != store.StatusDone {
		t.Errorf("got %v, want Done", status)
	}
}

func TestClassifyIdleOnlyLastLine(t *testing.T) {
	status, _ := Classify("some working output\n❯ ", true, DefaultRules())
	if status != store.StatusIdle {
		t.Errorf("got %v, want Idle", status)
	}
}

func TestClassifyIdleRequiresLastLine(t *testing.T) {
	// The prompt glyph appears, but not on the last line: should not be Idle.
	status, _ := Classify("❯ previous command\nstill producing output", true, DefaultRules())
	if status != store.StatusWorking {
		t.Errorf("got %v, want Working", status)
	}
}

func TestClassifyDefaultWorking(t *testing.T) {
	status, _ := Classify("compiling module foo...\nlinking...", true, DefaultRules())
	if status != store.StatusWorking {
		t.Errorf("got %v, want Working", status)
	}
}

func TestWithExtraErrorPatternTakesEffect(t *testing.T) {
	rules := DefaultRules()
	status, _ := Classify("deploy stopped: quota exceeded", true, rules)
	if status != store.StatusWorking {
		t.Fatalf("got %v, want Working before the extra pattern is added", status)
	}

	extended := rules.WithExtra(nil, []*regexp.Regexp{regexp.MustCompile(`(?i)quota exceeded`)}, nil)
	status, _ = Classify("deploy stopped: quota exceeded", true, extended)
	if status != store.StatusError {
		t.Errorf("got %v, want Error once the config pattern is layered on", status)
	}
}

func TestWithExtraDoesNotMutateBase(t *testing.T) {
	rules := DefaultRules()
	_ = rules.WithExtra(nil, []*regexp.Regexp{regexp.MustCompile("anything")}, nil)
	status, _ := Classify("deploy stopped: quota exceeded", true, rules)
	if status != store.StatusWorking {
		t.Errorf("base Rules must stay unaffected by WithExtra, got %v", status)
	}
}

func TestParsePermissionRequestTool(t *testing.T) {
	text := "I'd like to run Bash.\nDo you want to proceed?\n```\nrm -rf build/\n```"
	status, req := Classify(text, true, DefaultRules())
	if status != store.StatusPermission {
		t.Fatalf("got %v, want Permission", status)
	}
	if req.Tool != "bash" {
		t.Errorf("tool = %q, want bash", req.Tool)
	}
	if req.Command != "rm -rf build/" {
		t.Errorf("command = %q, want %q", req.Command, "rm -rf build/")
	}
}

func TestParsePermissionRequestDefaultsToUnknownTool(t *testing.T) {
	status, req := Classify("do you want to continue?", true, DefaultRules())
	if status != store.StatusPermission {
		t.Fatalf("got %v, want Permission", status)
	}
	if req.Tool != "unknown" {
		t.Errorf("tool = %q, want unknown", req.Tool)
	}
	if req.Command != "" {
		t.Errorf("command = %q, want empty", req.Command)
	}
}

func TestClassifyIdempotent(t *testing.T) {
	text := "building...\n❯ "
	s1, r1 := Classify(text, true, DefaultRules())
	s2, r2 := Classify(text, true, DefaultRules())
	if s1 != s2 {
		t.Errorf("status not idempotent: %v vs %v", s1, s2)
	}
	if (r1 == nil) != (r2 == nil) {
		t.Errorf("permission request presence not idempotent")
	}
}

func TestParseSubAgentsCountOnly(t *testing.T) {
	agents := ParseSubAgents("Running 3 Task agents in parallel")
	if len(agents) != 3 {
		t.Fatalf("got %d agents, want 3", len(agents))
	}
}

func TestParseSubAgentsWithDetail(t *testing.T) {
	text := "2 agents running in the background\n" +
		"├─ explore the auth module · 4 tool uses · 12.3k tokens\n" +
		"└─ run the test suite · 2 tool uses · 1.1k tokens"
	agents := ParseSubAgents(text)
	if len(agents) != 2 {
		t.Fatalf("got %d agents, want 2", len(agents))
	}
	if agents[0].Type != "Explore" {
		t.Errorf("agents[0].Type = %q, want Explore", agents[0].Type)
	}
	if agents[1].Type != "Bash" {
		t.Errorf("agents[1].Type = %q, want Bash", agents[1].Type)
	}
}

func TestParseSubAgentsNoBanner(t *testing.T) {
	if agents := ParseSubAgents("nothing to see here"); agents != nil {
		t.Errorf("expected nil, got %v", agents)
	}
}

func TestRollupUsesRawStatuses(t *testing.T) {
	got := store.Rollup([]store.MemberStatus{store.StatusIdle, store.StatusPermission, store.StatusError})
	if got != store.StatusPermission {
		t.Errorf("got %v, want Permission", got)
	}
}
