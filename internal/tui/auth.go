package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/turfbook/turfbook/internal/session"
	"github.com/turfbook/turfbook/pkg/client"
	"github.com/turfbook/turfbook/pkg/domain"
)

type authMode int

const (
	modeLogin authMode = iota
	modeRegister
	modeForgot
)

// browseMsg leaves the auth view for the public turf list.
type browseMsg struct{}

type loginDoneMsg struct {
	res *client.AuthResult
	err error
}

type registerDoneMsg struct {
	email   string
	message string
	err     error
}

type forgotDoneMsg struct {
	message string
	err     error
}

type authField struct {
	name        string // json name, matches domain.FieldErrors keys
	label       string
	placeholder string
	secret      bool
	value       string
}

type authModel struct {
	client *client.Client
	store  *session.Store

	mode    authMode
	fields  []authField
	focus   int
	errs    domain.FieldErrors
	failure string // server-side error, shown above the form
	width   int
	height  int
}

func newAuthModel(c *client.Client, store *session.Store) authModel {
	m := authModel{client: c, store: store}
	m.setMode(modeLogin)
	return m
}

func (m *authModel) setMode(mode authMode) {
	m.mode = mode
	m.focus = 0
	m.errs = nil
	m.failure = ""
	switch mode {
	case modeLogin:
		m.fields = []authField{
			{name: "email", label: "Email", placeholder: "you@example.com"},
			{name: "password", label: "Password", secret: true},
		}
	case modeRegister:
		m.fields = []authField{
			{name: "name", label: "Name", placeholder: "Full name"},
			{name: "email", label: "Email", placeholder: "you@example.com"},
			{name: "phone", label: "Phone", placeholder: "8801XXXXXXXXX"},
			{name: "password", label: "Password", placeholder: "min 8, mixed case, digit, symbol", secret: true},
		}
	case modeForgot:
		m.fields = []authField{
			{name: "email", label: "Email", placeholder: "you@example.com"},
		}
	}
}

func (m authModel) Init() tea.Cmd { return nil }

func (m authModel) value(name string) string {
	for _, f := range m.fields {
		if f.name == name {
			return f.value
		}
	}
	return ""
}

func (m authModel) pending() bool {
	return m.store.IsLoading(session.FlowLogin, session.FlowRegister, session.FlowForgotPassword)
}

func (m authModel) submit() (authModel, tea.Cmd) {
	if m.pending() {
		return m, nil
	}
	m.failure = ""
	c := m.client
	st := m.store
	switch m.mode {
	case modeLogin:
		in := domain.LoginInput{Email: strings.TrimSpace(m.value("email")), Password: m.value("password")}
		if m.errs = domain.Validate(in); m.errs != nil {
			return m, nil
		}
		st.SetFlowPending(session.FlowLogin, true)
		return m, func() tea.Msg {
			res, err := c.Login(context.Background(), in)
			st.SetFlowPending(session.FlowLogin, false)
			return loginDoneMsg{res: res, err: err}
		}
	case modeRegister:
		in := domain.RegisterInput{
			Name:     strings.TrimSpace(m.value("name")),
			Email:    strings.TrimSpace(m.value("email")),
			Phone:    strings.TrimSpace(m.value("phone")),
			Password: m.value("password"),
		}
		if m.errs = domain.Validate(in); m.errs != nil {
			return m, nil
		}
		st.SetFlowPending(session.FlowRegister, true)
		return m, func() tea.Msg {
			email, message, err := c.Register(context.Background(), in)
			st.SetFlowPending(session.FlowRegister, false)
			return registerDoneMsg{email: email, message: message, err: err}
		}
	case modeForgot:
		in := domain.ForgotPasswordInput{Email: strings.TrimSpace(m.value("email"))}
		if m.errs = domain.Validate(in); m.errs != nil {
			return m, nil
		}
		st.SetFlowPending(session.FlowForgotPassword, true)
		return m, func() tea.Msg {
			message, err := c.ForgotPassword(context.Background(), in)
			st.SetFlowPending(session.FlowForgotPassword, false)
			return forgotDoneMsg{message: message, err: err}
		}
	}
	return m, nil
}

func (m authModel) Update(msg tea.Msg) (authModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loginDoneMsg:
		if msg.err != nil {
			m.failure = client.UserMessage(msg.err, "Login failed")
			return m, nil
		}
		m.store.Login(msg.res.User, msg.res.AccessToken, msg.res.RefreshToken)
		return m, func() tea.Msg { return authSuccessMsg{message: "Welcome back, " + msg.res.User.Name} }

	case registerDoneMsg:
		if msg.err != nil {
			m.failure = client.UserMessage(msg.err, "Registration failed")
			return m, nil
		}
		email := msg.email
		return m, func() tea.Msg { return gotoOTPMsg{email: email} }

	case forgotDoneMsg:
		if msg.err != nil {
			m.failure = client.UserMessage(msg.err, "Request failed")
			return m, nil
		}
		message := msg.message
		if message == "" {
			message = "Reset email sent. Press ctrl+t when you have the token"
		}
		m.setMode(modeLogin)
		return m, toastCmd(message, false)

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			m.focus = (m.focus + 1) % len(m.fields)
			return m, nil
		case "shift+tab", "up":
			m.focus = (m.focus - 1 + len(m.fields)) % len(m.fields)
			return m, nil
		case "enter":
			return m.submit()
		case "ctrl+s":
			if m.mode == modeLogin {
				m.setMode(modeRegister)
			} else {
				m.setMode(modeLogin)
			}
			return m, nil
		case "ctrl+f":
			m.setMode(modeForgot)
			return m, nil
		case "ctrl+t":
			return m, func() tea.Msg { return gotoResetMsg{} }
		case "esc":
			if m.mode != modeLogin {
				m.setMode(modeLogin)
				return m, nil
			}
			return m, func() tea.Msg { return browseMsg{} }
		default:
			f := &m.fields[m.focus]
			f.value = editRune(f.value, msg.String())
			delete(m.errs, f.name)
			return m, nil
		}
	}
	return m, nil
}

func (m authModel) View() string {
	var b strings.Builder
	title := map[authMode]string{
		modeLogin:    "Sign in",
		modeRegister: "Create account",
		modeForgot:   "Forgot password",
	}[m.mode]
	b.WriteString("\n " + selectedStyle.Render(title) + "\n\n")

	if m.failure != "" {
		b.WriteString(" " + errStyle.Render(m.failure) + "\n\n")
	}

	for i, f := range m.fields {
		prompt := "  "
		label := metaStyle.Render(f.label)
		if i == m.focus {
			prompt = inputPromptStyle.Render("> ")
			label = selectedStyle.Render(f.label)
		}
		shown := f.value
		if f.secret {
			shown = mask(shown)
		}
		if shown == "" && f.placeholder != "" {
			shown = inputPlaceholderStyle.Render(f.placeholder)
		}
		cursor := ""
		if i == m.focus {
			cursor = inputPromptStyle.Render("_")
		}
		b.WriteString(fmt.Sprintf(" %s%-10s %s%s\n", prompt, label, shown, cursor))
		if e, ok := m.errs[f.name]; ok {
			b.WriteString("              " + fieldErrStyle.Render(e) + "\n")
		}
	}

	if m.pending() {
		b.WriteString("\n " + dimStyle.Render("Working...") + "\n")
	}

	b.WriteString("\n")
	switch m.mode {
	case modeLogin:
		b.WriteString(" " + dimStyle.Render("No account yet? ctrl+s to register. Forgot password? ctrl+f.") + "\n")
	case modeRegister:
		b.WriteString(" " + dimStyle.Render("Already registered? ctrl+s to sign in.") + "\n")
	case modeForgot:
		b.WriteString(" " + dimStyle.Render("We will email a reset token. esc for sign in.") + "\n")
	}
	return b.String()
}

func (m authModel) helpKeys() string {
	return helpEntry("enter", "submit") + "  " + helpEntry("tab", "next field") + "  " +
		helpEntry("ctrl+s", "switch mode") + "  " + helpEntry("esc", "browse")
}
