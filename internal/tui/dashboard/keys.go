package dashboard

import "github.com/charmbracelet/bubbles/key"

// KeyMap is the per-mode key-binding table. Not every binding is active in
// every Mode; Update consults Mode before dispatching a key.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Enter   key.Binding
	Chat    key.Binding
	Next    key.Binding // jump to next Permission/Error session
	Approve key.Binding // 'a' in Permission mode
	Deny    key.Binding // 'd' in Permission mode
	Skip    key.Binding // 's' in Permission mode
	Command key.Binding // '/' opens command line
	Help    key.Binding
	Back    key.Binding
	Quit    key.Binding
}

var keys = KeyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "left")),
	Right:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "right")),
	Enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open detail")),
	Chat:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "chat")),
	Next:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next needing attention")),
	Approve: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "approve")),
	Deny:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "deny")),
	Skip:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "skip")),
	Command: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "command")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}
