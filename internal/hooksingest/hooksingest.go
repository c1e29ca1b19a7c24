// Package hooksingest tails a newline-delimited JSON event file that an
// assistant's own hook configuration can append to, and turns new lines
// into advisory MemberStatus hints. Hints upgrade the Detector's precision;
// they never override a stronger classification.
package hooksingest

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"

	"github.com/kestrelio/apiary/internal/store"
)

// DefaultPath is the well-known location a hook script appends events to.
const DefaultPath = "/tmp/apiary-hooks.jsonl"

// Event is one line of the hooks file.
type Event struct {
	Event     string `json:"event"` // tool_start, tool_end, permission, error
	Tool      string `json:"tool,omitempty"`
	Session   string `json:"session,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// InferredStatus maps an event kind to the status hint it implies, or ""
// (with ok=false) if the event kind carries no status hint.
func (e Event) InferredStatus() (store.MemberStatus, bool) {
	switch e.Event {
	case "tool_start", "tool_end":
		return store.StatusWorking, true
	case "permission":
		return store.StatusPermission, true
	case "error":
		return store.StatusError, true
	default:
		return "", false
	}
}

// Receiver tails DefaultPath (or an overridden path), tracking a byte offset
// so repeated polls only return newly appended lines.
type Receiver struct {
	path         string
	lastPosition int64
}

// NewReceiver creates a Receiver for path. An empty path uses DefaultPath.
func NewReceiver(path string) *Receiver {
	if path == "" {
		path = DefaultPath
	}
	return &Receiver{path: path}
}

// Init records the file's current end-of-file offset, so the first Poll only
// sees events appended after startup.
func (r *Receiver) Init() {
	if info, err := os.Stat(r.path); err == nil {
		r.lastPosition = info.Size()
	}
}

// IsAvailable reports whether the hooks file currently exists.
func (r *Receiver) IsAvailable() bool {
	_, err := os.Stat(r.path)
	return err == nil
}

// Poll reads and parses every complete line appended since the last call.
// A file that shrank since the last poll (rotated or truncated) resets the
// offset to the start. Malformed lines are skipped, not fatal.
func (r *Receiver) Poll() []Event {
	f, err := os.Open(r.path)
	if err != nil {
		return nil
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil
	}
	if info.Size() < r.lastPosition {
		r.lastPosition = 0
	}
	if _, err := f.Seek(r.lastPosition, 0); err != nil {
		return nil
	}

	var events []Event
	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			// No newline before EOF: an unterminated trailing line stays
			// unread until a later poll finds it completed.
			break
		}
		r.lastPosition += int64(len(line))
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		var ev Event
		if err := json.Unmarshal([]byte(trimmed), &ev); err == nil {
			events = append(events, ev)
		}
	}
	return events
}
