package ui

import "github.com/charmbracelet/bubbles/key"

// carouselKeys are active on the user carousel.
type carouselKeys struct {
	Left  key.Binding
	Right key.Binding
	First key.Binding
	Last  key.Binding
	Open  key.Binding
	Retry key.Binding
	Debug key.Binding
	Quit  key.Binding
}

// ShortHelp implements help.KeyMap.
func (k carouselKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Open, k.Retry, k.Debug, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k carouselKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.First, k.Last}}
}

// playerKeys are active in the full-screen player.
type playerKeys struct {
	Next     key.Binding
	Prev     key.Binding
	NextUser key.Binding
	PrevUser key.Binding
	Like     key.Binding
	Pause    key.Binding
	Close    key.Binding
	Debug    key.Binding
	Quit     key.Binding
}

// ShortHelp implements help.KeyMap.
func (k playerKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Prev, k.Next, k.PrevUser, k.NextUser, k.Like, k.Pause, k.Close}
}

// FullHelp implements help.KeyMap.
func (k playerKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Debug, k.Quit}}
}

func defaultCarouselKeys() carouselKeys {
	return carouselKeys{
		Left:  key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "prev")),
		Right: key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l/→", "next")),
		First: key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first")),
		Last:  key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last")),
		Open:  key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "open")),
		Retry: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
		Debug: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "debug")),
		Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func defaultPlayerKeys() playerKeys {
	return playerKeys{
		Next:     key.NewBinding(key.WithKeys("l", "right", " "), key.WithHelp("l/→", "next")),
		Prev:     key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/←", "prev")),
		NextUser: key.NewBinding(key.WithKeys("j", "down", "tab"), key.WithHelp("j", "next user")),
		PrevUser: key.NewBinding(key.WithKeys("k", "up", "shift+tab"), key.WithHelp("k", "prev user")),
		Like:     key.NewBinding(key.WithKeys("L", "f"), key.WithHelp("f", "like")),
		Pause:    key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Close:    key.NewBinding(key.WithKeys("esc", "q", "backspace"), key.WithHelp("esc", "close")),
		Debug:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "debug")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}
