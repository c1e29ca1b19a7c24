package tmux

import "testing"

func TestParseSessions(t *testing.T) {
	out := "demo|1|1700000000\nother|3|1700000500"
	got := parseSessions(out)
	if len(got) != 2 {
		t.Fatalf("got %d sessions, want 2", len(got))
	}
	if got[0].Name != "demo" || got[0].Windows != 1 || got[0].Created != 1700000000 {
		t.Errorf("unexpected first session: %+v", got[0])
	}
	if got[1].Name != "other" || got[1].Windows != 3 {
		t.Errorf("unexpected second session: %+v", got[1])
	}
}

func TestParseSessionsEmpty(t *testing.T) {
	if got := parseSessions("  \n"); got != nil {
		t.Errorf("expected nil for blank input, got %v", got)
	}
}

func TestParsePanes(t *testing.T) {
	out := "%3|demo|0|0|1|claude|1234\n%4|demo|0|1|0|zsh|1235"
	got := parsePanes(out)
	if len(got) != 2 {
		t.Fatalf("got %d panes, want 2", len(got))
	}
	if got[0].ID != "%3" || !got[0].Active || got[0].PID != 1234 {
		t.Errorf("unexpected first pane: %+v", got[0])
	}
	if got[1].ID != "%4" || got[1].Active {
		t.Errorf("unexpected second pane: %+v", got[1])
	}
}

func TestParsePanesSkipsMalformedLines(t *testing.T) {
	out := "%3|demo|0|0|1|claude|1234\nnot-enough-fields"
	got := parsePanes(out)
	if len(got) != 1 {
		t.Fatalf("got %d panes, want 1", len(got))
	}
}
