package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/turfbook/turfbook/pkg/client"
	"github.com/turfbook/turfbook/pkg/domain"
)

type manageLoadedMsg struct {
	turfs []domain.Turf
	meta  *client.Meta
	err   error
}

// manageModel is the admin inventory view: every turf with its active
// flag and pricing at a glance.
type manageModel struct {
	client *client.Client

	turfs   []domain.Turf
	meta    *client.Meta
	cursor  int
	page    int
	loading bool
	failure string
	width   int
	height  int
}

func newManageModel(c *client.Client) manageModel {
	return manageModel{client: c, page: 1}
}

func (m manageModel) Init() tea.Cmd {
	c := m.client
	opts := client.ListTurfsOptions{Page: m.page, Limit: pageSize}
	return func() tea.Msg {
		turfs, meta, err := c.ListTurfs(context.Background(), opts)
		return manageLoadedMsg{turfs: turfs, meta: meta, err: err}
	}
}

func (m manageModel) Update(msg tea.Msg) (manageModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case manageLoadedMsg:
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
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.turfs)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "n":
			if m.meta != nil && m.page < m.meta.TotalPages {
				m.page++
				m.loading = true
				return m, m.Init()
			}
		case "p":
			if m.page > 1 {
				m.page--
				m.loading = true
				return m, m.Init()
			}
		case "r":
			m.loading = true
			return m, m.Init()
		}
	}
	return m, nil
}

func (m manageModel) View() string {
	var b strings.Builder
	b.WriteString("\n " + accentStyle.Render("Turf inventory") + "\n\n")

	switch {
	case m.failure != "":
		b.WriteString(" " + errStyle.Render(m.failure) + "\n")
	case m.loading:
		b.WriteString(" " + dimStyle.Render("Loading...") + "\n")
	case len(m.turfs) == 0:
		b.WriteString(" " + dimStyle.Render("No turfs.") + "\n")
	default:
		for i, t := range m.turfs {
			state := okStyle.Render("active")
			if !t.Active {
				state = errStyle.Render("inactive")
			}
			line := fmt.Sprintf("%-28s %s  %s  %s",
				t.Name, state,
				priceStyle.Render(fmt.Sprintf("%.0f BDT/slot", t.DefaultPricePerSlot)),
				dimStyle.Render(fmt.Sprintf("%s-%s", t.OperatingHours.Start, t.OperatingHours.End)))
			if i == m.cursor {
				b.WriteString(" " + selectedStyle.Render("> ") + line + "\n")
			} else {
				b.WriteString("   " + line + "\n")
			}
		}
	}

	if m.meta != nil && m.meta.TotalPages > 1 {
		b.WriteString("\n " + metaStyle.Render(fmt.Sprintf("page %d/%d", m.meta.CurrentPage, m.meta.TotalPages)) + "\n")
	}
	return b.String()
}
