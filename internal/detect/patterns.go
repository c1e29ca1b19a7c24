// Package detect classifies a pane's captured scrollback tail into a
// MemberStatus, and pulls structured detail (permission prompts, background
// sub-agent banners) out of the same text.
package detect

import "regexp"

// Built-in classification rules. Config may append to each list.
var (
	PermissionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)allow.*\(y/n\)`),
		regexp.MustCompile(`(?i)allow.*\by\b.*\bn\b`),
		regexp.MustCompile(`(?i)\bapprove\b.*\bdeny\b`),
		regexp.MustCompile(`(?i)do you want to\b`),
		regexp.MustCompile(`(?i)permission requested`),
		regexp.MustCompile(`(?i)allow\s+(once|always)`),
	}

	ErrorPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?m)^.*\bError:.*$`),
		regexp.MustCompile(`(?m)^.*\berror:.*$`),
		regexp.MustCompile(`(?i)\bfailed\b`),
		regexp.MustCompile(`(?i)\bpanic\b`),
		regexp.MustCompile(`(?i)thread\s+'.*'\s+panicked`),
	}

	DonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)session ended`),
		regexp.MustCompile(`(?i)process exited`),
		regexp.MustCompile(`(?i)connection closed`),
	}

	// IdlePatterns are matched only against the tail's last line.
	IdlePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^\s*[❯❱>]\s*$`),
		regexp.MustCompile(`^\s*\$\s*$`),
		regexp.MustCompile(`^\s*%\s*$`),
	}

	// ToolPatterns identify the tool named inside a permission prompt.
	ToolPatterns = regexp.MustCompile(`(?i)\b(bash|write|read|edit|grep|glob|search|notebook)\b`)

	// codeBlockPattern extracts the first fenced code block from a permission prompt.
	codeBlockPattern = regexp.MustCompile("(?s)```[^\n]*\n(.*?)```")

	// ansiPattern strips terminal escape sequences before classification.
	ansiPattern = regexp.MustCompile(`\x1b\[[0-9;?]*[a-zA-Z]|\x1b\][^\a\x1b]*(\a|\x1b\\)`)

	// subAgentCountPatterns recognize a banner announcing background Task agents.
	subAgentCountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d+)\s+agents?\s+running\s+in\s+the\s+background`),
		regexp.MustCompile(`(?i)(\d+)\s+local\s+agents?`),
		regexp.MustCompile(`(?i)running\s+(\d+)\s+task\s+agents?`),
		regexp.MustCompile(`(?i)running\s+(\d+)\s+agents?`),
	}

	// subAgentDetailPattern extracts one tree-drawn sub-agent description line,
	// e.g. "├─ explore the auth module · 4 tool uses · 12.3k tokens".
	subAgentDetailPattern = regexp.MustCompile(`(?m)^\s*[├└]─\s*(.+?)(?:\s+·\s+\d+\s+tool\s+uses?)?(?:\s+·\s+[\d.]+k?\s+tokens?)?\s*$`)
)

// StripANSI removes terminal escape sequences from s.
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}
