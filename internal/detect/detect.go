package detect

import (
	"regexp"
	"strings"

	"github.com/kestrelio/apiary/internal/store"
)

// Window is how many trailing lines of a pane's scrollback the classifier
// considers. The Rust original this repository's status model is ported
// from calls this the "tail".
const Window = 15

// PermissionScanWindow is the wider window searched for a permission
// prompt's tool/command/detail once Classify has already found Permission.
const PermissionScanWindow = 20

// PermissionRequest is a derived, non-persisted description of an
// outstanding tool-use permission prompt.
type PermissionRequest struct {
	Tool    string
	Command string
	Detail  string
}

// Rules bundles the compiled regex sets a Classifier evaluates, so tests and
// Config-supplied extensions can inject their own without touching globals.
type Rules struct {
	Permission []*regexp.Regexp
	Error      []*regexp.Regexp
	Done       []*regexp.Regexp
	Idle       []*regexp.Regexp
}

// DefaultRules returns the built-in classification rule set.
func DefaultRules() Rules {
	return Rules{
		Permission: PermissionPatterns,
		Error:      ErrorPatterns,
		Done:       DonePatterns,
		Idle:       IdlePatterns,
	}
}

// WithExtra returns a copy of r with additional user-supplied patterns
// appended to each bucket. Unparseable patterns are skipped by the caller
// (Config validation), not here.
func (r Rules) WithExtra(permission, errs, idle []*regexp.Regexp) Rules {
	out := r
	out.Permission = append(append([]*regexp.Regexp{}, r.Permission...), permission...)
	out.Error = append(append([]*regexp.Regexp{}, r.Error...), errs...)
	out.Idle = append(append([]*regexp.Regexp{}, r.Idle...), idle...)
	return out
}

func lastLines(text string, n int) []string {
	trimmed := strings.TrimRight(text, "\n")
	if trimmed == "" {
		return nil
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}

func matchAny(text string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// Classify inspects the trailing Window lines of raw pane output (which may
// still contain ANSI escapes) and returns the resulting status plus, when
// the status is Permission, the parsed request.
//
// Classification order: an adapter-level capture failure (signaled by the
// caller passing ok=false) or a tail that is empty after trimming yields
// Unknown; every other case resolves to one of the five named states.
// Otherwise: Permission patterns (checked first, so a permission prompt wins
// even if it also contains the word "error"); Error patterns; Done patterns;
// Idle (last line only); default Working.
func Classify(rawText string, ok bool, rules Rules) (store.MemberStatus, *PermissionRequest) {
	if !ok {
		return store.StatusUnknown, nil
	}

	clean := strings.TrimSpace(StripANSI(rawText))
	if clean == "" {
		return store.StatusUnknown, nil
	}

	lines := lastLines(clean, Window)
	tail := strings.Join(lines, "\n")

	if matchAny(tail, rules.Permission) {
		return store.StatusPermission, parsePermissionRequest(clean)
	}
	if matchAny(tail, rules.Error) {
		return store.StatusError, nil
	}
	if matchAny(tail, rules.Done) {
		return store.StatusDone, nil
	}
	if len(lines) > 0 && matchAny(lines[len(lines)-1], rules.Idle) {
		return store.StatusIdle, nil
	}
	return store.StatusWorking, nil
}

// parsePermissionRequest extracts tool/command/detail from the wider
// PermissionScanWindow of the same capture.
func parsePermissionRequest(clean string) *PermissionRequest {
	lines := lastLines(clean, PermissionScanWindow)
	detail := strings.Join(lines, "\n")

	tool := "unknown"
	if m := ToolPatterns.FindStringSubmatch(detail); m != nil {
		tool = strings.ToLower(m[1])
	}

	command := ""
	if m := codeBlockPattern.FindStringSubmatch(detail); m != nil {
		command = strings.TrimSpace(m[1])
	}

	return &PermissionRequest{Tool: tool, Command: command, Detail: detail}
}

// ParseSubAgents recognizes a "N Task agents running" style banner and, when
// present, the per-agent tree-drawn detail lines beneath it. It supplements
// the state model with visibility into an assistant's own background
// parallel-task agents; absence of a banner yields a nil slice.
func ParseSubAgents(rawText string) []store.SubAgent {
	clean := StripANSI(rawText)

	count := 0
	for _, p := range subAgentCountPatterns {
		if m := p.FindStringSubmatch(clean); m != nil {
			if n := atoiSafe(m[1]); n > count {
				count = n
			}
		}
	}
	if count == 0 {
		return nil
	}

	details := subAgentDetailPattern.FindAllStringSubmatch(clean, -1)
	if len(details) == 0 {
		agents := make([]store.SubAgent, count)
		for i := range agents {
			agents[i] = store.SubAgent{Type: "Task", Description: ""}
		}
		return agents
	}

	agents := make([]store.SubAgent, 0, len(details))
	for _, d := range details {
		desc := strings.TrimSpace(d[1])
		agents = append(agents, store.SubAgent{Type: inferAgentType(desc), Description: desc})
	}
	return agents
}

func inferAgentType(desc string) string {
	lower := strings.ToLower(desc)
	switch {
	case strings.Contains(lower, "explore") || strings.Contains(lower, "search") || strings.Contains(lower, "find"):
		return "Explore"
	case strings.Contains(lower, "plan") || strings.Contains(lower, "design"):
		return "Plan"
	case strings.Contains(lower, "test") || strings.Contains(lower, "build") || strings.Contains(lower, "run"):
		return "Bash"
	default:
		return "Task"
	}
}

func atoiSafe(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}
