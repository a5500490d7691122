package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/turfbook/turfbook/internal/session"
	"github.com/turfbook/turfbook/pkg/client"
	"github.com/turfbook/turfbook/pkg/domain"
)

type resetDoneMsg struct {
	res *client.AuthResult
	err error
}

// resetModel takes the emailed reset token plus a new password. A
// successful reset signs the user in with the returned tokens.
type resetModel struct {
	client *client.Client
	store  *session.Store

	token    string
	password string
	confirm  string
	focus    int
	errs     domain.FieldErrors
	failure  string
	width    int
	height   int
}

func newResetModel(c *client.Client, store *session.Store) resetModel {
	return resetModel{client: c, store: store}
}

func (m resetModel) Init() tea.Cmd { return nil }

func (m resetModel) submit() (resetModel, tea.Cmd) {
	if m.store.IsLoading(session.FlowResetPassword) {
		return m, nil
	}
	m.failure = ""
	in := domain.ResetPasswordInput{Password: m.password}
	m.errs = domain.Validate(in)
	if strings.TrimSpace(m.token) == "" {
		if m.errs == nil {
			m.errs = domain.FieldErrors{}
		}
		m.errs["token"] = "reset token is required"
	}
	if m.confirm != m.password {
		if m.errs == nil {
			m.errs = domain.FieldErrors{}
		}
		m.errs["confirm"] = "passwords do not match"
	}
	if m.errs != nil {
		return m, nil
	}
	c := m.client
	st := m.store
	token := strings.TrimSpace(m.token)
	st.SetFlowPending(session.FlowResetPassword, true)
	return m, func() tea.Msg {
		res, err := c.ResetPassword(context.Background(), token, in)
		st.SetFlowPending(session.FlowResetPassword, false)
		return resetDoneMsg{res: res, err: err}
	}
}

func (m resetModel) Update(msg tea.Msg) (resetModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case resetDoneMsg:
		if msg.err != nil {
			m.failure = client.UserMessage(msg.err, "Password reset failed")
			return m, nil
		}
		m.store.Login(msg.res.User, msg.res.AccessToken, msg.res.RefreshToken)
		return m, func() tea.Msg { return authSuccessMsg{message: "Password updated"} }

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			m.focus = (m.focus + 1) % 3
			return m, nil
		case "shift+tab", "up":
			m.focus = (m.focus + 2) % 3
			return m, nil
		case "enter":
			return m.submit()
		case "esc":
			return m, func() tea.Msg { return gotoAuthMsg{} }
		default:
			switch m.focus {
			case 0:
				m.token = editRune(m.token, msg.String())
				delete(m.errs, "token")
			case 1:
				m.password = editRune(m.password, msg.String())
				delete(m.errs, "password")
			case 2:
				m.confirm = editRune(m.confirm, msg.String())
				delete(m.errs, "confirm")
			}
			return m, nil
		}
	}
	return m, nil
}

func (m resetModel) View() string {
	var b strings.Builder
	b.WriteString("\n " + selectedStyle.Render("Reset password") + "\n\n")
	b.WriteString(" " + dimStyle.Render("Paste the token from the reset email.") + "\n\n")

	if m.failure != "" {
		b.WriteString(" " + errStyle.Render(m.failure) + "\n\n")
	}

	rows := []struct {
		name, label, value string
		secret             bool
		idx                int
	}{
		{"token", "Token", m.token, false, 0},
		{"password", "New password", m.password, true, 1},
		{"confirm", "Confirm", m.confirm, true, 2},
	}
	for _, r := range rows {
		prompt := "  "
		label := metaStyle.Render(r.label)
		if m.focus == r.idx {
			prompt = inputPromptStyle.Render("> ")
			label = selectedStyle.Render(r.label)
		}
		shown := r.value
		if r.secret {
			shown = mask(shown)
		}
		cursor := ""
		if m.focus == r.idx {
			cursor = inputPromptStyle.Render("_")
		}
		b.WriteString(" " + prompt + label + strings.Repeat(" ", 14-len(r.label)) + shown + cursor + "\n")
		if e, ok := m.errs[r.name]; ok {
			b.WriteString("    " + fieldErrStyle.Render(e) + "\n")
		}
	}

	if m.store.IsLoading(session.FlowResetPassword) {
		b.WriteString("\n " + dimStyle.Render("Resetting...") + "\n")
	}
	return b.String()
}
