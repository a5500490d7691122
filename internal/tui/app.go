package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/turfbook/turfbook/internal/session"
	"github.com/turfbook/turfbook/pkg/client"
	"github.com/turfbook/turfbook/pkg/domain"
)

type view int

const (
	viewTurfs view = iota
	viewTurfDetail
	viewDashboard
	viewManage
	viewAuth
	viewOTP
	viewReset
	viewPayment
	viewUnauthorized
)

// routeRule is a view's access requirement.
type routeRule struct {
	auth bool
	role domain.Role // "" means any authenticated user
}

var routeRules = map[view]routeRule{
	viewTurfDetail: {},           // booking itself re-checks auth on submit
	viewDashboard:  {auth: true},
	viewPayment:    {auth: true},
	viewManage:     {auth: true, role: domain.RoleAdmin},
}

type guardDecision int

const (
	guardAllow guardDecision = iota
	guardSignIn
	guardDenied
)

// guardRoute decides access purely from the session snapshot and the
// view's rule. No network: it trusts the already-loaded session.
// Managers pass every role requirement.
func guardRoute(s session.Session, v view) guardDecision {
	rule := routeRules[v]
	if !rule.auth {
		return guardAllow
	}
	if !s.Authenticated || s.User == nil {
		return guardSignIn
	}
	if rule.role != "" && s.User.Role != rule.role && s.User.Role != domain.RoleManager {
		return guardDenied
	}
	return guardAllow
}

// -- cross-view messages --

// AuthExpiredMsg is sent from outside the program when a 401 could not
// be recovered; the session store is already cleared by then.
type AuthExpiredMsg struct{}

// authSuccessMsg fires after any flow that establishes a session
// (login, verify-otp, reset-password).
type authSuccessMsg struct {
	message string
}

// gotoOTPMsg switches to the verification view with the email the
// registration step returned.
type gotoOTPMsg struct {
	email string
}

// gotoResetMsg switches to the reset-password view.
type gotoResetMsg struct{}

// gotoAuthMsg abandons a verification or reset form for the sign-in
// view.
type gotoAuthMsg struct{}

// loggedOutMsg fires after a logout, server call included (or failed —
// logout always succeeds locally).
type loggedOutMsg struct{}

// toastMsg puts a transient line on the status bar.
type toastMsg struct {
	text  string
	isErr bool
}

// statusClearMsg wipes the status bar.
type statusClearMsg struct{}

// sessionCheckedMsg carries the startup GET /users/me result.
type sessionCheckedMsg struct {
	user *domain.User
	err  error
}

// paymentStartedMsg moves the app to the payment view after the
// booking chain produced a checkout URL.
type paymentStartedMsg struct {
	booking domain.Booking
	payURL  string
}

func toastCmd(text string, isErr bool) tea.Cmd {
	return func() tea.Msg { return toastMsg{text: text, isErr: isErr} }
}

// App is the root Bubble Tea model.
type App struct {
	client *client.Client
	store  *session.Store

	view        view
	returnTo    view // view to restore after a guard redirect to sign-in
	hasReturnTo bool
	otpEmail    string // transient: registration → OTP pre-fill

	auth      authModel
	otp       otpModel
	reset     resetModel
	turfs     turfsModel
	detail    turfDetailModel
	dashboard dashboardModel
	manage    manageModel
	payment   paymentModel

	status    string
	statusErr bool
	width     int
	height    int
	frame     int
	version   string
}

// NewApp creates the root model. The starting view depends on whether
// a persisted session was restored.
func NewApp(c *client.Client, store *session.Store, version string) App {
	a := App{
		client:    c,
		store:     store,
		version:   version,
		auth:      newAuthModel(c, store),
		otp:       newOTPModel(c, store),
		reset:     newResetModel(c, store),
		turfs:     newTurfsModel(c),
		detail:    newTurfDetailModel(c, store),
		dashboard: newDashboardModel(c, store),
		manage:    newManageModel(c),
		payment:   newPaymentModel(c),
	}
	if !store.Snapshot().Authenticated {
		a.view = viewAuth
	}
	return a
}

func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{shimmerTickCmd()}
	if a.view == viewAuth {
		cmds = append(cmds, a.auth.Init())
	} else {
		cmds = append(cmds, a.turfs.Init(), a.checkSession())
	}
	return tea.Batch(cmds...)
}

// checkSession validates a restored session against /users/me. The
// flow flag feeds IsLoading so views can hold their submit controls.
func (a App) checkSession() tea.Cmd {
	c := a.client
	st := a.store
	st.SetFlowPending(session.FlowSessionCheck, true)
	return func() tea.Msg {
		user, err := c.Me(context.Background())
		st.SetFlowPending(session.FlowSessionCheck, false)
		return sessionCheckedMsg{user: user, err: err}
	}
}

// navigate applies the route guard and switches views. Denied views
// remember where the user wanted to go.
func (a App) navigate(v view) (App, tea.Cmd) {
	switch guardRoute(a.store.Snapshot(), v) {
	case guardSignIn:
		a.returnTo = v
		a.hasReturnTo = true
		a.view = viewAuth
		return a, a.auth.Init()
	case guardDenied:
		a.view = viewUnauthorized
		return a, nil
	}
	a.view = v
	return a, a.initFor(v)
}

func (a *App) initFor(v view) tea.Cmd {
	switch v {
	case viewTurfs:
		return a.turfs.Init()
	case viewDashboard:
		return a.dashboard.Init()
	case viewManage:
		return a.manage.Init()
	case viewAuth:
		return a.auth.Init()
	}
	return nil
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Chrome: header(2) + tabs(1) + status(1) + help(1) = 5 lines
		bodyMsg := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 5}
		a.turfs, _ = a.turfs.Update(bodyMsg)
		a.detail, _ = a.detail.Update(bodyMsg)
		a.dashboard, _ = a.dashboard.Update(bodyMsg)
		a.manage, _ = a.manage.Update(bodyMsg)
		a.auth, _ = a.auth.Update(bodyMsg)
		a.otp, _ = a.otp.Update(bodyMsg)
		a.reset, _ = a.reset.Update(bodyMsg)
		a.payment, _ = a.payment.Update(bodyMsg)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case toastMsg:
		a.status = msg.text
		a.statusErr = msg.isErr
		return a, tea.Tick(4*time.Second, func(time.Time) tea.Msg { return statusClearMsg{} })

	case statusClearMsg:
		a.status = ""
		return a, nil

	case sessionCheckedMsg:
		if msg.err == nil && msg.user != nil {
			a.store.SetUser(*msg.user)
		}
		// An unrecoverable 401 already arrives separately as
		// AuthExpiredMsg; transient errors leave the restored session
		// alone.
		return a, nil

	case AuthExpiredMsg:
		a.view = viewAuth
		return a, tea.Batch(a.auth.Init(), toastCmd("Session expired, please sign in again", true))

	case authSuccessMsg:
		target := viewDashboard
		if a.hasReturnTo {
			target = a.returnTo
			a.hasReturnTo = false
		}
		a.otpEmail = ""
		var cmd tea.Cmd
		a, cmd = a.navigate(target)
		return a, tea.Batch(cmd, toastCmd(msg.message, false))

	case gotoOTPMsg:
		a.otpEmail = msg.email
		a.otp = newOTPModel(a.client, a.store)
		a.otp.prefill(msg.email)
		a.view = viewOTP
		return a, nil

	case gotoResetMsg:
		a.reset = newResetModel(a.client, a.store)
		a.view = viewReset
		return a, nil

	case gotoAuthMsg:
		a.view = viewAuth
		return a, a.auth.Init()

	case requireAuthMsg:
		a.returnTo = a.view
		a.hasReturnTo = true
		a.view = viewAuth
		return a, tea.Batch(a.auth.Init(), toastCmd("Sign in to book a slot", true))

	case browseMsg:
		a.view = viewTurfs
		return a, a.turfs.Init()

	case loggedOutMsg:
		a.view = viewAuth
		return a, tea.Batch(a.auth.Init(), toastCmd("Logged out successfully", false))

	case showTurfMsg:
		a.detail = newTurfDetailModel(a.client, a.store)
		a.view = viewTurfDetail
		return a, a.detail.load(msg.slug)

	case paymentStartedMsg:
		a.payment = newPaymentModel(a.client)
		a.payment.start(msg.booking, msg.payURL)
		a.view = viewPayment
		return a, nil

	case tea.KeyMsg:
		if !a.isEditing() {
			switch msg.String() {
			case "q", "ctrl+c":
				return a, tea.Quit
			case "1":
				if a.view != viewTurfs {
					return a.navigate(viewTurfs)
				}
				return a, nil
			case "2":
				if a.view != viewDashboard {
					return a.navigate(viewDashboard)
				}
				return a, nil
			case "3":
				if a.view != viewManage {
					return a.navigate(viewManage)
				}
				return a, nil
			case "esc":
				switch a.view {
				case viewTurfDetail, viewUnauthorized, viewManage:
					return a.navigate(viewTurfs)
				case viewPayment:
					return a.navigate(viewDashboard)
				}
			}
		}
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
	}

	var cmd tea.Cmd
	switch a.view {
	case viewTurfs:
		a.turfs, cmd = a.turfs.Update(msg)
	case viewTurfDetail:
		a.detail, cmd = a.detail.Update(msg)
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.Update(msg)
	case viewManage:
		a.manage, cmd = a.manage.Update(msg)
	case viewAuth:
		a.auth, cmd = a.auth.Update(msg)
	case viewOTP:
		a.otp, cmd = a.otp.Update(msg)
	case viewReset:
		a.reset, cmd = a.reset.Update(msg)
	case viewPayment:
		a.payment, cmd = a.payment.Update(msg)
	}
	return a, cmd
}

// isEditing reports whether the active view has a focused text input,
// which suspends global shortcut handling.
func (a App) isEditing() bool {
	switch a.view {
	case viewAuth:
		return true
	case viewOTP:
		return true
	case viewReset:
		return true
	case viewTurfs:
		return a.turfs.searching
	case viewDashboard:
		return a.dashboard.editing()
	}
	return false
}

func (a App) View() string {
	logo := renderShimmerLogo(a.frame)

	// User line below the logo.
	snap := a.store.Snapshot()
	var userLine string
	if snap.Authenticated {
		parts := []string{snap.User.Name}
		if snap.User.Role != domain.RoleUser {
			parts = append(parts, accentStyle.Render(string(snap.User.Role)))
		}
		if !snap.User.Verified {
			parts = append(parts, warnStyle.Render("unverified"))
		}
		if snap.Loading {
			parts = append(parts, dimStyle.Render("syncing..."))
		}
		userLine = metaStyle.Render(strings.Join(parts, " · "))
	} else {
		userLine = metaStyle.Render("not signed in")
	}

	header := center(a.width, logo) + "\n" + center(a.width, userLine)

	// Tab bar. Manage only shows for roles that can enter it.
	type tabEntry struct {
		key  string
		name string
		v    view
	}
	tabs := []tabEntry{
		{"1", "Turfs", viewTurfs},
		{"2", "Dashboard", viewDashboard},
	}
	if snap.Authenticated && (snap.User.Role == domain.RoleAdmin || snap.User.Role == domain.RoleManager) {
		tabs = append(tabs, tabEntry{"3", "Manage", viewManage})
	}

	colWidth := a.width
	if len(tabs) > 0 {
		colWidth = a.width / len(tabs)
	}
	var tabBar strings.Builder
	for _, t := range tabs {
		var label string
		active := t.v == a.view ||
			(t.v == viewTurfs && a.view == viewTurfDetail) ||
			(t.v == viewDashboard && a.view == viewPayment)
		if active {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		labelWidth := lipgloss.Width(label)
		leftPad := (colWidth - labelWidth) / 2
		if leftPad < 0 {
			leftPad = 0
		}
		rightPad := colWidth - labelWidth - leftPad
		if rightPad < 0 {
			rightPad = 0
		}
		tabBar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
	}

	var body, help string
	switch a.view {
	case viewTurfs:
		body = a.turfs.View()
		help = " " + helpEntry("j/k", "nav") + "  " + helpEntry("/", "search") + "  " + helpEntry("n/p", "page") + "  " + helpEntry("enter", "open") + "  " + helpEntry("q", "quit")
	case viewTurfDetail:
		body = a.detail.View()
		help = " " + a.detail.helpKeys()
	case viewDashboard:
		body = a.dashboard.View()
		help = " " + a.dashboard.helpKeys()
	case viewManage:
		body = a.manage.View()
		help = " " + helpEntry("j/k", "nav") + "  " + helpEntry("esc", "back") + "  " + helpEntry("q", "quit")
	case viewAuth:
		body = a.auth.View()
		help = " " + a.auth.helpKeys()
	case viewOTP:
		body = a.otp.View()
		help = " " + helpEntry("enter", "verify") + "  " + helpEntry("tab", "next") + "  " + helpEntry("esc", "back")
	case viewReset:
		body = a.reset.View()
		help = " " + helpEntry("enter", "reset") + "  " + helpEntry("tab", "next") + "  " + helpEntry("esc", "back")
	case viewPayment:
		body = a.payment.View()
		help = " " + helpEntry("o", "open again") + "  " + helpEntry("c", "copy url") + "  " + helpEntry("r", "refresh status") + "  " + helpEntry("esc", "dashboard")
	case viewUnauthorized:
		body = "\n " + errStyle.Render("You don't have access to this area.") + "\n\n " +
			dimStyle.Render("This section is restricted to turf administrators.")
		help = " " + helpEntry("esc", "back") + "  " + helpEntry("q", "quit")
	}

	statusLine := " "
	if a.status != "" {
		if a.statusErr {
			statusLine = " " + errStyle.Render(a.status)
		} else {
			statusLine = " " + okStyle.Render(a.status)
		}
	}

	const chrome = 5
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", header, tabBar.String(), body, statusLine, help)
}

// center pads s to the middle of width columns.
func center(width int, s string) string {
	pad := (width - lipgloss.Width(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}
