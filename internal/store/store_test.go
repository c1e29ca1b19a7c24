package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testSession(name string) *Session {
	return &Session{
		Name:        name,
		Kind:        KindSolo,
		TmuxSession: "apiary-" + name,
		CreatedAt:   time.Now(),
		Members: []*Member{{
			Role:       "lead",
			Pane:       "%0",
			Status:     StatusIdle,
			LastChange: time.Now(),
		}},
	}
}

func TestLoadNonexistentFile(t *testing.T) {
	dir := t.TempDir()
	s, err := WithPath(filepath.Join(dir, "pods.json"))
	if err != nil {
		t.Fatal(err)
	}
	sessions, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("expected no sessions, got %d", len(sessions))
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	s, err := WithPath(filepath.Join(dir, "pods.json"))
	if err != nil {
		t.Fatal(err)
	}

	sessions := []*Session{testSession("one"), testSession("two")}
	if err := s.Save(sessions); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("got %d sessions, want 2", len(loaded))
	}
	if loaded[0].Name != "one" || loaded[1].Name != "two" {
		t.Errorf("unexpected session order/names: %+v", loaded)
	}
	if loaded[0].Status != StatusIdle {
		t.Errorf("expected rollup Idle, got %v", loaded[0].Status)
	}
}

func TestLoadEmptyFileIsNoSessions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pods.json")
	if err := os.WriteFile(path, []byte{}, 0600); err != nil {
		t.Fatal(err)
	}
	s, err := WithPath(path)
	if err != nil {
		t.Fatal(err)
	}
	sessions, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("expected empty, got %d", len(sessions))
	}
}

func TestAddAndRemoveSession(t *testing.T) {
	dir := t.TempDir()
	s, err := WithPath(filepath.Join(dir, "pods.json"))
	if err != nil {
		t.Fatal(err)
	}

	var sessions []*Session
	sessions, err = s.AddSession(sessions, testSession("new"))
	if err != nil {
		t.Fatalf("AddSession: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(sessions))
	}

	reloaded, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(reloaded) != 1 || reloaded[0].Name != "new" {
		t.Fatalf("unexpected reload result: %+v", reloaded)
	}

	sessions, removed, err := s.RemoveSession(sessions, "new")
	if err != nil {
		t.Fatalf("RemoveSession: %v", err)
	}
	if !removed || len(sessions) != 0 {
		t.Fatalf("expected removal, got removed=%v len=%d", removed, len(sessions))
	}

	_, removed, err = s.RemoveSession(sessions, "missing")
	if err != nil {
		t.Fatalf("RemoveSession: %v", err)
	}
	if removed {
		t.Fatalf("expected no-op removal for unknown name")
	}
}

func TestReconcileDropsSessionsRemovedOnDisk(t *testing.T) {
	dir := t.TempDir()
	s, err := WithPath(filepath.Join(dir, "pods.json"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save([]*Session{testSession("one")}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	current := []*Session{testSession("one"), testSession("two")}

	// The store file is replaced out-of-band with an empty document, as if
	// another instance or an operator cleared it while this one is running.
	if err := os.WriteFile(s.path, []byte{}, 0600); err != nil {
		t.Fatal(err)
	}

	merged, removed, err := s.Reconcile(current)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(merged) != 0 {
		t.Fatalf("expected no sessions after external clear, got %d", len(merged))
	}
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
}

func TestReconcilePreservesTransientFieldsForSurvivors(t *testing.T) {
	dir := t.TempDir()
	s, err := WithPath(filepath.Join(dir, "pods.json"))
	if err != nil {
		t.Fatal(err)
	}

	sess := testSession("one")
	sess.Members[0].LastTail = "hello from claude"
	sess.Members[0].ErrorCount = 2

	if err := s.Save([]*Session{sess}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	merged, removed, err := s.Reconcile([]*Session{sess})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if removed != 0 {
		t.Fatalf("removed = %d, want 0", removed)
	}
	if len(merged) != 1 {
		t.Fatalf("got %d sessions, want 1", len(merged))
	}
	if merged[0] != sess {
		t.Fatalf("expected the in-memory Session pointer to survive, got a different one")
	}
	if merged[0].Members[0].LastTail != "hello from claude" {
		t.Errorf("LastTail lost across reconcile: %q", merged[0].Members[0].LastTail)
	}
	if merged[0].Members[0].ErrorCount != 2 {
		t.Errorf("ErrorCount lost across reconcile: %d", merged[0].Members[0].ErrorCount)
	}
}

func TestReconcileAddsSessionCreatedOnDiskOnly(t *testing.T) {
	dir := t.TempDir()
	s, err := WithPath(filepath.Join(dir, "pods.json"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save([]*Session{testSession("one"), testSession("two")}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	merged, removed, err := s.Reconcile([]*Session{testSession("one")})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if removed != 0 {
		t.Fatalf("removed = %d, want 0", removed)
	}
	if len(merged) != 2 {
		t.Fatalf("got %d sessions, want 2", len(merged))
	}
}

func TestRollupPriority(t *testing.T) {
	cases := []struct {
		in   []MemberStatus
		want MemberStatus
	}{
		{nil, StatusIdle},
		{[]MemberStatus{StatusIdle, StatusWorking}, StatusWorking},
		{[]MemberStatus{StatusWorking, StatusError}, StatusError},
		{[]MemberStatus{StatusError, StatusPermission}, StatusPermission},
		{[]MemberStatus{StatusPermission, StatusDone}, StatusPermission},
		{[]MemberStatus{StatusUnknown, StatusUnknown}, StatusUnknown},
		{[]MemberStatus{StatusUnknown, StatusIdle}, StatusIdle},
	}
	for _, tc := range cases {
		if got := Rollup(tc.in); got != tc.want {
			t.Errorf("Rollup(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
