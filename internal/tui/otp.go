package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/turfbook/turfbook/internal/session"
	"github.com/turfbook/turfbook/pkg/client"
	"github.com/turfbook/turfbook/pkg/domain"
)

type otpDoneMsg struct {
	res *client.AuthResult
	err error
}

// otpModel verifies the emailed 6-digit code. The email survives a
// rejected code so the user only retypes the digits.
type otpModel struct {
	client *client.Client
	store  *session.Store

	email   string
	code    string
	focus   int // 0 email, 1 code
	errs    domain.FieldErrors
	failure string
	width   int
	height  int
}

func newOTPModel(c *client.Client, store *session.Store) otpModel {
	return otpModel{client: c, store: store, focus: 1}
}

// prefill seeds the email from the registration step and keeps the
// cursor on the code field.
func (m *otpModel) prefill(email string) {
	m.email = email
	m.focus = 1
	if email == "" {
		m.focus = 0
	}
}

func (m otpModel) Init() tea.Cmd { return nil }

func (m otpModel) submit() (otpModel, tea.Cmd) {
	if m.store.IsLoading(session.FlowVerifyOTP) {
		return m, nil
	}
	m.failure = ""
	in := domain.VerifyOTPInput{Email: strings.TrimSpace(m.email), OTP: strings.TrimSpace(m.code)}
	if m.errs = domain.Validate(in); m.errs != nil {
		return m, nil
	}
	c := m.client
	st := m.store
	st.SetFlowPending(session.FlowVerifyOTP, true)
	return m, func() tea.Msg {
		res, err := c.VerifyOTP(context.Background(), in)
		st.SetFlowPending(session.FlowVerifyOTP, false)
		return otpDoneMsg{res: res, err: err}
	}
}

func (m otpModel) Update(msg tea.Msg) (otpModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case otpDoneMsg:
		if msg.err != nil {
			// Keep the email; clear only the rejected code.
			m.failure = client.UserMessage(msg.err, "Verification failed")
			m.code = ""
			return m, nil
		}
		m.store.Login(msg.res.User, msg.res.AccessToken, msg.res.RefreshToken)
		return m, func() tea.Msg { return authSuccessMsg{message: "Account verified — welcome!"} }

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down", "shift+tab", "up":
			m.focus = 1 - m.focus
			return m, nil
		case "enter":
			return m.submit()
		case "esc":
			return m, func() tea.Msg { return gotoAuthMsg{} }
		default:
			if m.focus == 0 {
				m.email = editRune(m.email, msg.String())
				delete(m.errs, "email")
			} else {
				m.code = editRune(m.code, msg.String())
				if len(m.code) > 6 {
					m.code = m.code[:6]
				}
				delete(m.errs, "otp")
			}
			return m, nil
		}
	}
	return m, nil
}

func (m otpModel) View() string {
	var b strings.Builder
	b.WriteString("\n " + selectedStyle.Render("Verify your email") + "\n\n")
	b.WriteString(" " + dimStyle.Render("Enter the 6-digit code we sent you.") + "\n\n")

	if m.failure != "" {
		b.WriteString(" " + errStyle.Render(m.failure) + "\n\n")
	}

	rows := []struct {
		name, label, value string
		idx                int
	}{
		{"email", "Email", m.email, 0},
		{"otp", "Code", m.code, 1},
	}
	for _, r := range rows {
		prompt := "  "
		label := metaStyle.Render(r.label)
		if m.focus == r.idx {
			prompt = inputPromptStyle.Render("> ")
			label = selectedStyle.Render(r.label)
		}
		cursor := ""
		if m.focus == r.idx {
			cursor = inputPromptStyle.Render("_")
		}
		b.WriteString(" " + prompt + label + "   " + r.value + cursor + "\n")
		if e, ok := m.errs[r.name]; ok {
			b.WriteString("    " + fieldErrStyle.Render(e) + "\n")
		}
	}

	if m.store.IsLoading(session.FlowVerifyOTP) {
		b.WriteString("\n " + dimStyle.Render("Verifying...") + "\n")
	}
	return b.String()
}
