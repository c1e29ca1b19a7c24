package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kestrelio/apiary/internal/tmux"
	"github.com/kestrelio/apiary/internal/util"
)

// Store is the atomic load/save point for one pods.json document.
type Store struct {
	path string
}

// DefaultPath returns <user-config>/apiary/pods.json, honoring APIARY_CONFIG
// as a directory override the same way Config does.
func DefaultPath() (string, error) {
	if dir := os.Getenv("APIARY_CONFIG"); dir != "" {
		return filepath.Join(dir, "pods.json"), nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("determine config directory: %w", err)
	}
	return filepath.Join(dir, "apiary", "pods.json"), nil
}

// New creates a Store at the default path, ensuring its directory exists.
func New() (*Store, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return WithPath(path)
}

// WithPath creates a Store at an explicit path, used by tests.
func WithPath(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	return &Store{path: path}, nil
}

// Load reads the document. A missing or empty file is treated as no
// sessions rather than an error, guarding against a concurrent writer
// observed mid-cycle.
func (s *Store) Load() ([]*Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read store %q: %w", s.path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse store %q: %w", s.path, err)
	}
	for _, sess := range doc.Sessions {
		sess.RollupStatus()
	}
	return doc.Sessions, nil
}

// Save serializes sessions and writes them atomically.
func (s *Store) Save(sessions []*Session) error {
	doc := Document{Version: CurrentVersion, Sessions: sessions}
	data, err := json.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize store: %w", err)
	}
	if err := util.AtomicWriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write store %q: %w", s.path, err)
	}
	return nil
}

// LoadAndReconcile loads the document, drops Sessions whose tmux session no
// longer exists and Members whose pane no longer exists, then re-saves the
// reconciled result. It never returns an error solely because the
// multiplexer is unreachable; it degrades to trusting the on-disk document.
func (s *Store) LoadAndReconcile(adapter *tmux.Client) ([]*Session, error) {
	sessions, err := s.Load()
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return sessions, nil
	}

	allPanes, paneErr := adapter.ListAllPanes()
	if paneErr != nil {
		// Multiplexer is unreachable this cycle: trust the document as-is.
		return sessions, nil
	}
	livePanes := make(map[string]bool, len(allPanes))
	for _, p := range allPanes {
		livePanes[p.ID] = true
	}
	liveSessionNames := make(map[string]bool)
	for _, p := range allPanes {
		liveSessionNames[p.Session] = true
	}

	kept := sessions[:0]
	for _, sess := range sessions {
		if !liveSessionNames[sess.TmuxSession] {
			continue
		}
		members := sess.Members[:0]
		for _, m := range sess.Members {
			if livePanes[m.Pane] {
				members = append(members, m)
			}
		}
		sess.Members = members
		if len(sess.Members) == 0 {
			continue
		}
		sess.RollupStatus()
		sess.UpdateKind()
		kept = append(kept, sess)
	}

	if err := s.Save(kept); err != nil {
		return kept, err
	}
	return kept, nil
}

// Reconcile re-reads the on-disk document and merges it against the
// caller's in-memory sessions, producing the three-way delta the reload
// cycle needs: a Session present only on disk is added; a Session present
// only in memory has vanished from disk (an out-of-band replacement of
// the store file, e.g. by another instance or an operator) and is
// dropped; a Session present in both keeps its in-memory pointer so
// transient, never-persisted per-member fields (LastPolled, LastTail,
// ErrorCount, StaleCycles, SubAgents, WorkingSecs) survive, with its
// Members reconciled the same way by pane. It returns the merged slice
// and how many previously-tracked Sessions were dropped, so the caller
// can decide whether that's worth a visible warning.
func (s *Store) Reconcile(current []*Session) ([]*Session, int, error) {
	onDisk, err := s.Load()
	if err != nil {
		return current, 0, err
	}

	byName := make(map[string]*Session, len(current))
	for _, sess := range current {
		byName[sess.Name] = sess
	}

	merged := make([]*Session, 0, len(onDisk))
	for _, diskSess := range onDisk {
		sess, ok := byName[diskSess.Name]
		if !ok {
			merged = append(merged, diskSess)
			continue
		}
		delete(byName, diskSess.Name)

		membersByPane := make(map[string]*Member, len(sess.Members))
		for _, m := range sess.Members {
			membersByPane[m.Pane] = m
		}
		mergedMembers := make([]*Member, 0, len(diskSess.Members))
		for _, dm := range diskSess.Members {
			if m, ok := membersByPane[dm.Pane]; ok {
				mergedMembers = append(mergedMembers, m)
				continue
			}
			mergedMembers = append(mergedMembers, dm)
		}
		sess.Members = mergedMembers
		sess.Worktree = diskSess.Worktree
		sess.Group = diskSess.Group
		sess.RollupStatus()
		sess.UpdateKind()
		merged = append(merged, sess)
	}

	// Whatever is left in byName was tracked in memory but no longer
	// appears in the on-disk document at all.
	removed := len(byName)

	return merged, removed, nil
}

// AddSession appends a Session and saves.
func (s *Store) AddSession(sessions []*Session, sess *Session) ([]*Session, error) {
	sessions = append(sessions, sess)
	return sessions, s.Save(sessions)
}

// RemoveSession drops a Session by name and saves if it was present.
func (s *Store) RemoveSession(sessions []*Session, name string) ([]*Session, bool, error) {
	out := sessions[:0]
	removed := false
	for _, sess := range sessions {
		if sess.Name == name {
			removed = true
			continue
		}
		out = append(out, sess)
	}
	if !removed {
		return sessions, false, nil
	}
	if err := s.Save(out); err != nil {
		return sessions, true, err
	}
	return out, true, nil
}
