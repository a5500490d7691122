package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/turfbook/turfbook/pkg/client"
	"github.com/turfbook/turfbook/pkg/domain"
)

// showTurfMsg asks the app to open a turf's detail view.
type showTurfMsg struct {
	slug string
}

type turfsLoadedMsg struct {
	turfs []domain.Turf
	meta  *client.Meta
	err   error
}

type turfsModel struct {
	client *client.Client

	turfs   []domain.Turf
	meta    *client.Meta
	cursor  int
	page    int
	search  string
	searching bool
	loading bool
	failure string
	width   int
	height  int
}

func newTurfsModel(c *client.Client) turfsModel {
	return turfsModel{client: c, page: 1}
}

func (m turfsModel) Init() tea.Cmd {
	return m.load()
}

func (m turfsModel) load() tea.Cmd {
	c := m.client
	opts := client.ListTurfsOptions{Page: m.page, Limit: pageSize, Search: m.search}
	return func() tea.Msg {
		turfs, meta, err := c.ListTurfs(context.Background(), opts)
		return turfsLoadedMsg{turfs: turfs, meta: meta, err: err}
	}
}

func (m turfsModel) Update(msg tea.Msg) (turfsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case turfsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.failure = client.UserMessage(msg.err, "Could not load turfs")
			return m, nil
		}
		m.failure = ""
		m.turfs = msg.turfs
		m.meta = msg.meta
		if m.cursor >= len(m.turfs) {
			m.cursor = 0
		}
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			switch msg.String() {
			case "enter":
				m.searching = false
				m.page = 1
				m.loading = true
				return m, m.load()
			case "esc":
				m.searching = false
				m.search = ""
				m.page = 1
				m.loading = true
				return m, m.load()
			default:
				m.search = editRune(m.search, msg.String())
				return m, nil
			}
		}
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.turfs)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "g":
			m.cursor = 0
		case "G":
			m.cursor = len(m.turfs) - 1
			if m.cursor < 0 {
				m.cursor = 0
			}
		case "/":
			m.searching = true
		case "n":
			if m.meta != nil && m.page < m.meta.TotalPages {
				m.page++
				m.loading = true
				return m, m.load()
			}
		case "p":
			if m.page > 1 {
				m.page--
				m.loading = true
				return m, m.load()
			}
		case "r":
			m.loading = true
			return m, m.load()
		case "enter":
			if m.cursor < len(m.turfs) {
				slug := m.turfs[m.cursor].Slug
				return m, func() tea.Msg { return showTurfMsg{slug: slug} }
			}
		}
	}
	return m, nil
}

func (m turfsModel) View() string {
	var b strings.Builder
	b.WriteString("\n")

	if m.searching {
		b.WriteString(" " + inputPromptStyle.Render("search: ") + m.search + inputPromptStyle.Render("_") + "\n\n")
	} else if m.search != "" {
		b.WriteString(" " + dimStyle.Render("search: ") + accentStyle.Render(m.search) + dimStyle.Render("  (/ to change, esc clears)") + "\n\n")
	}

	switch {
	case m.failure != "":
		b.WriteString(" " + errStyle.Render(m.failure) + "\n")
	case m.loading:
		b.WriteString(" " + dimStyle.Render("Loading turfs...") + "\n")
	case len(m.turfs) == 0:
		b.WriteString(" " + dimStyle.Render("No turfs found.") + "\n")
	default:
		for i, t := range m.turfs {
			line := t.Name
			loc := t.Location.City
			if t.Location.Address != "" {
				loc = t.Location.Address + ", " + loc
			}
			if i == m.cursor {
				b.WriteString(" " + selectedStyle.Render("> "+line) + "  " + metaStyle.Render(loc) + "\n")
			} else {
				b.WriteString("   " + normalStyle.Render(line) + "  " + dimStyle.Render(loc) + "\n")
			}
		}
	}

	if m.meta != nil && m.meta.TotalPages > 1 {
		b.WriteString("\n " + metaStyle.Render(fmt.Sprintf("page %d/%d · %d turfs", m.meta.CurrentPage, m.meta.TotalPages, m.meta.TotalItems)) + "\n")
	}
	return b.String()
}
