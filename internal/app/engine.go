// Package app wires the multiplexer adapter, the on-disk Store, pane
// classification, discovery, hook ingestion, and notification delivery into
// the single reload cycle the Tick Engine drives. Nothing in this package
// depends on bubbletea: it is the model layer the TUI (and, for one-shot
// commands, the CLI) both sit on top of.
package app

import (
	"fmt"
	"regexp"
	"time"

	"github.com/kestrelio/apiary/internal/config"
	"github.com/kestrelio/apiary/internal/detect"
	"github.com/kestrelio/apiary/internal/discovery"
	"github.com/kestrelio/apiary/internal/hooksingest"
	"github.com/kestrelio/apiary/internal/notify"
	"github.com/kestrelio/apiary/internal/store"
	"github.com/kestrelio/apiary/internal/tmux"
)

// Engine holds everything one reload cycle needs and nothing that outlives
// the process: sessions themselves are supplied by and returned to the
// caller so the TUI's Model remains the single owner of that state.
type Engine struct {
	Client *tmux.Client
	Store  *store.Store
	Config *config.Config
	Notify *notify.Notifier
	Hooks  *hooksingest.Receiver

	rules detect.Rules

	// Permissions holds the most recently derived PermissionRequest for
	// every member currently in the Permission state, keyed by
	// "session/pane". It is not part of Store since PermissionRequest is
	// deliberately never persisted.
	Permissions map[string]*detect.PermissionRequest
}

// New builds an Engine from its already-constructed collaborators, compiling
// the configured extra detection patterns once up front.
func New(client *tmux.Client, st *store.Store, cfg *config.Config, notifier *notify.Notifier, hooks *hooksingest.Receiver) *Engine {
	return &Engine{
		Client: client,
		Store:  st,
		Config: cfg,
		Notify: notifier,
		Hooks:  hooks,
		rules: detect.DefaultRules().WithExtra(
			compilePatterns(cfg.Detection.PermissionPatterns),
			compilePatterns(cfg.Detection.ErrorPatterns),
			compilePatterns(cfg.Detection.IdlePatterns),
		),
		Permissions: make(map[string]*detect.PermissionRequest),
	}
}

func compilePatterns(pats []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(pats))
	for _, p := range pats {
		if re, err := regexp.Compile(p); err == nil {
			out = append(out, re)
		}
	}
	return out
}

// Reload runs one full cycle: re-read the Store and fold its on-disk state
// back into the in-memory sessions, re-capture and reclassify whichever
// already-known Members are due for a poll, run discovery (which finds new
// panes, retires ones that vanished, and — when configured — promotes
// teammates into sibling Sessions, which can grow the slice) and save the
// Store whenever discovery changed anything, apply any
// hooks-file overrides, and recompute each Session's rollup. focusedSession
// is the Name of the Session currently focused in the UI, if any, so a
// Member's due-for-a-poll check can use the Focused cadence instead of its
// status-driven one; pass "" when nothing is focused (e.g. from the CLI). It
// returns the (possibly reallocated) sessions slice and the transitions
// worth notifying on; the caller is responsible for calling Notify.Notify
// for each and for keeping its own reference to sessions pointed at the
// returned slice.
//
// A non-nil error here is not necessarily fatal to the cycle: it may just
// be a warning that the on-disk document changed out from under the
// running process (e.g. replaced by another instance, or by an operator),
// in which case sessions has already been reduced to match and the caller
// should surface the message without treating the reload as failed.
func (e *Engine) Reload(sessions []*store.Session, focusedSession string) ([]*store.Session, []notify.Event, error) {
	var warn error
	if e.Store != nil {
		merged, removed, err := e.Store.Reconcile(sessions)
		if err != nil {
			return sessions, nil, err
		}
		sessions = merged
		if removed > 0 {
			warn = fmt.Errorf("store file changed externally: %d session(s) no longer present", removed)
		}
	}

	prev := snapshotStatuses(sessions)

	e.reclassifyMembers(sessions, focusedSession)

	sessions, changed, err := discovery.Run(e.Client, sessions, e.rules, e.Config.Discovery.PromoteTeammates)
	if err != nil {
		return sessions, nil, err
	}
	// Persist discovery's structural changes (new or retired Members,
	// promoted teammates) so the next cycle's Reconcile finds them on disk.
	if changed && e.Store != nil {
		if err := e.Store.Save(sessions); err != nil {
			warn = fmt.Errorf("save store after discovery: %w", err)
		}
	}

	e.applyHookEvents(sessions)

	for _, sess := range sessions {
		sess.RollupStatus()
	}

	return sessions, diffStatuses(prev, sessions), warn
}

// MemberErrorThreshold is how many consecutive capture failures a Member
// must accumulate before its errors are worth surfacing in the status
// line; a single timeout is common enough (multiplexer under load, pane
// briefly unavailable) that flagging it immediately would just be noise.
const MemberErrorThreshold = 3

// reclassifyMembers re-captures and re-classifies whichever already-tracked
// Members are due for a poll: a Member is skipped this cycle unless
// time.Since(m.LastPolled) has reached the cadence e.Interval says its
// current status (and whether its Session is focused) calls for. This is
// the selective-refresh half of the polling design — the reload cycle
// itself always runs on a single collapsed timer (see DESIGN.md's Open
// Question on that), but that timer only bounds how *often* this function
// is called, not which Members it actually re-captures; without the gate
// here every Member would be captured every cycle regardless of how idle
// it is, defeating the point of a per-status cadence. Discovery's own pass
// only classifies newly found panes, so this is what keeps a long-lived
// Member's status current from cycle to cycle.
func (e *Engine) reclassifyMembers(sessions []*store.Session, focusedSession string) {
	now := time.Now()
	for _, sess := range sessions {
		focused := sess.Name == focusedSession
		for _, m := range sess.Members {
			if !m.LastPolled.IsZero() && now.Sub(m.LastPolled) < e.Interval(m.Status, focused) {
				continue
			}

			text, err := e.Client.CapturePane(m.Pane, detect.PermissionScanWindow)
			ok := err == nil
			if ok {
				m.ErrorCount = 0
			} else {
				m.ErrorCount++
			}

			status, perm := detect.Classify(text, ok, e.rules)
			if status != m.Status {
				m.LastChange = time.Now()
				// Best-effort: colors the pane's own tmux border so status
				// is visible even when looking at the multiplexer directly
				// instead of the dashboard.
				go e.Client.SetPaneBorderStyle(m.Pane, borderColor(status))
			}
			m.Status = status
			m.LastPolled = time.Now()
			if ok {
				m.LastTail = text
			}
			m.SubAgents = detect.ParseSubAgents(text)

			key := sess.Name + "/" + m.Pane
			if perm != nil {
				e.Permissions[key] = perm
			} else {
				delete(e.Permissions, key)
			}
		}
	}
}

// borderColor maps a Member's status to the tmux pane-border-style color
// used to reflect it directly on the multiplexer pane.
func borderColor(status store.MemberStatus) string {
	switch status {
	case store.StatusPermission:
		return "magenta"
	case store.StatusError:
		return "red"
	case store.StatusWorking:
		return "yellow"
	case store.StatusDone:
		return "green"
	case store.StatusIdle:
		return "cyan"
	default:
		return "colour240"
	}
}

func snapshotStatuses(sessions []*store.Session) map[string]store.MemberStatus {
	snap := make(map[string]store.MemberStatus)
	for _, sess := range sessions {
		for _, m := range sess.Members {
			snap[sess.Name+"/"+m.Pane] = m.Status
		}
	}
	return snap
}

func diffStatuses(prev map[string]store.MemberStatus, sessions []*store.Session) []notify.Event {
	var events []notify.Event
	now := time.Now()
	for _, sess := range sessions {
		for _, m := range sess.Members {
			key := sess.Name + "/" + m.Pane
			old, existed := prev[key]
			if !existed || old == m.Status {
				continue
			}
			events = append(events, notify.Event{
				Session:   sess.Name,
				Member:    m.Role,
				From:      old,
				To:        m.Status,
				Timestamp: now,
			})
		}
	}
	return events
}

// applyHookEvents drains any hooks written since the last poll and, for
// each one that names a status transition, applies the hint to every
// Member of the matching Session — but only where it strictly upgrades
// the Member's current status in the Permission > Error > Working > Idle >
// Done > Unknown ordering, per Hooks Ingest's rule that a hint refines
// precision and never downgrades an already-stronger classification (a
// stale tool_start/tool_end line must not demote a Member the Detector has
// already classified Permission or Error back to Working). A hook event
// whose session name matches no tracked Session (an assistant running
// outside any adopted pane) is ignored.
func (e *Engine) applyHookEvents(sessions []*store.Session) {
	if e.Hooks == nil || !e.Hooks.IsAvailable() {
		return
	}
	for _, ev := range e.Hooks.Poll() {
		hint, ok := ev.InferredStatus()
		if !ok {
			continue
		}
		for _, sess := range sessions {
			if sess.Name != ev.Session {
				continue
			}
			for _, m := range sess.Members {
				if store.Priority(hint) <= store.Priority(m.Status) {
					continue
				}
				m.Status = hint
				m.LastChange = time.Now()
			}
		}
	}
}

// Interval returns the polling cadence for a Member's status per the
// configured Polling table. Focused takes priority over every state
// since the operator is actively watching that pane; the remaining states
// follow the same Permission > Error > Working > Idle priority used by
// rollup, since the state that dominates the rollup is also the state that
// should dominate how eagerly it gets re-polled.
func (e *Engine) Interval(status store.MemberStatus, focused bool) time.Duration {
	p := e.Config.Polling
	switch {
	case focused:
		return p.Interval(p.FocusedIntervalMs)
	case status == store.StatusPermission:
		return p.Interval(p.PermissionIntervalMs)
	case status == store.StatusError:
		return p.Interval(p.ErrorIntervalMs)
	case status == store.StatusWorking:
		return p.Interval(p.WorkingIntervalMs)
	default:
		return p.Interval(p.IdleIntervalMs)
	}
}
