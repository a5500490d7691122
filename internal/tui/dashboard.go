package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/turfbook/turfbook/internal/browser"
	"github.com/turfbook/turfbook/internal/session"
	"github.com/turfbook/turfbook/pkg/client"
	"github.com/turfbook/turfbook/pkg/domain"
)

type bookingsLoadedMsg struct {
	bookings []domain.Booking
	err      error
}

type profileSavedMsg struct {
	user *domain.User
	err  error
}

type payLaterMsg struct {
	booking domain.Booking
	payURL  string
	err     error
}

type dashboardModel struct {
	client *client.Client
	store  *session.Store

	bookings []domain.Booking
	cursor   int
	loading  bool
	failure  string

	// profile edit form
	edit      bool
	editField int // 0 name, 1 email, 2 phone
	name      string
	email     string
	phone     string
	errs      domain.FieldErrors

	width  int
	height int
}

func newDashboardModel(c *client.Client, store *session.Store) dashboardModel {
	return dashboardModel{client: c, store: store}
}

func (m dashboardModel) editing() bool { return m.edit }

func (m dashboardModel) Init() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		bookings, err := c.MyBookings(context.Background())
		return bookingsLoadedMsg{bookings: bookings, err: err}
	}
}

func (m *dashboardModel) startEdit() {
	u := m.store.Snapshot().User
	if u == nil {
		return
	}
	m.edit = true
	m.editField = 0
	m.name = u.Name
	m.email = u.Email
	m.phone = u.Phone
	m.errs = nil
}

func (m dashboardModel) saveProfile() (dashboardModel, tea.Cmd) {
	if m.store.IsLoading(session.FlowProfileUpdate) {
		return m, nil
	}
	in := domain.UpdateProfileInput{
		Name:  strings.TrimSpace(m.name),
		Email: strings.TrimSpace(m.email),
		Phone: strings.TrimSpace(m.phone),
	}
	if m.errs = domain.Validate(in); m.errs != nil {
		return m, nil
	}
	c := m.client
	st := m.store
	st.SetFlowPending(session.FlowProfileUpdate, true)
	return m, func() tea.Msg {
		user, err := c.UpdateProfile(context.Background(), in)
		st.SetFlowPending(session.FlowProfileUpdate, false)
		return profileSavedMsg{user: user, err: err}
	}
}

// payLater re-initiates payment for a booking that was created but
// never paid, then opens the checkout URL.
func (m dashboardModel) payLater() (dashboardModel, tea.Cmd) {
	if m.cursor >= len(m.bookings) {
		return m, nil
	}
	b := m.bookings[m.cursor]
	if b.PaymentStatus != domain.PaymentUnpaid || b.Status == domain.BookingCancelled {
		return m, nil
	}
	c := m.client
	return m, func() tea.Msg {
		payURL, err := c.InitPayment(context.Background(), b.ID)
		if err != nil {
			return payLaterMsg{booking: b, err: err}
		}
		_ = browser.Open(payURL)
		return payLaterMsg{booking: b, payURL: payURL}
	}
}

func (m dashboardModel) logout() (dashboardModel, tea.Cmd) {
	c := m.client
	st := m.store
	return m, func() tea.Msg {
		// Server-side revocation is best effort; the local session is
		// cleared regardless.
		_ = c.Logout(context.Background())
		st.Logout()
		return loggedOutMsg{}
	}
}

func (m dashboardModel) Update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case bookingsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.failure = client.UserMessage(msg.err, "Could not load bookings")
			return m, nil
		}
		m.failure = ""
		m.bookings = msg.bookings
		if m.cursor >= len(m.bookings) {
			m.cursor = 0
		}
		return m, nil

	case profileSavedMsg:
		if msg.err != nil {
			m.failure = client.UserMessage(msg.err, "Profile update failed")
			return m, nil
		}
		m.edit = false
		m.failure = ""
		if msg.user != nil {
			m.store.SetUser(*msg.user)
		}
		return m, toastCmd("Profile updated", false)

	case payLaterMsg:
		if msg.err != nil {
			m.failure = client.UserMessage(msg.err, "Could not start payment")
			return m, nil
		}
		booking := msg.booking
		payURL := msg.payURL
		return m, func() tea.Msg { return paymentStartedMsg{booking: booking, payURL: payURL} }

	case tea.KeyMsg:
		if m.edit {
			switch msg.String() {
			case "esc":
				m.edit = false
				return m, nil
			case "tab", "down":
				m.editField = (m.editField + 1) % 3
				return m, nil
			case "shift+tab", "up":
				m.editField = (m.editField + 2) % 3
				return m, nil
			case "enter":
				return m.saveProfile()
			default:
				switch m.editField {
				case 0:
					m.name = editRune(m.name, msg.String())
					delete(m.errs, "name")
				case 1:
					m.email = editRune(m.email, msg.String())
					delete(m.errs, "email")
				case 2:
					m.phone = editRune(m.phone, msg.String())
					delete(m.errs, "phone")
				}
				return m, nil
			}
		}
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.bookings)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "r":
			m.loading = true
			return m, m.Init()
		case "e":
			m.startEdit()
		case "enter":
			return m.payLater()
		case "ctrl+o":
			return m.logout()
		}
	}
	return m, nil
}

func (m dashboardModel) View() string {
	var b strings.Builder
	b.WriteString("\n")

	u := m.store.Snapshot().User
	if u == nil {
		b.WriteString(" " + dimStyle.Render("Not signed in.") + "\n")
		return b.String()
	}

	if m.edit {
		b.WriteString(" " + selectedStyle.Render("Edit profile") + "\n\n")
		rows := []struct {
			name, label, value string
			idx                int
		}{
			{"name", "Name", m.name, 0},
			{"email", "Email", m.email, 1},
			{"phone", "Phone", m.phone, 2},
		}
		for _, r := range rows {
			prompt := "  "
			label := metaStyle.Render(r.label)
			if m.editField == r.idx {
				prompt = inputPromptStyle.Render("> ")
				label = selectedStyle.Render(r.label)
			}
			cursor := ""
			if m.editField == r.idx {
				cursor = inputPromptStyle.Render("_")
			}
			b.WriteString(fmt.Sprintf(" %s%-8s %s%s\n", prompt, label, r.value, cursor))
			if e, ok := m.errs[r.name]; ok {
				b.WriteString("            " + fieldErrStyle.Render(e) + "\n")
			}
		}
		if m.failure != "" {
			b.WriteString("\n " + errStyle.Render(m.failure) + "\n")
		}
		if m.store.IsLoading(session.FlowProfileUpdate) {
			b.WriteString("\n " + dimStyle.Render("Saving...") + "\n")
		}
		return b.String()
	}

	b.WriteString(" " + selectedStyle.Render(u.Name) + "  " + metaStyle.Render(u.Email) + "\n")
	b.WriteString(" " + dimStyle.Render(u.Phone) + "\n\n")

	b.WriteString(" " + accentStyle.Render("My bookings") + "\n\n")
	switch {
	case m.failure != "":
		b.WriteString(" " + errStyle.Render(m.failure) + "\n")
	case m.loading:
		b.WriteString(" " + dimStyle.Render("Loading bookings...") + "\n")
	case len(m.bookings) == 0:
		b.WriteString(" " + dimStyle.Render("No bookings yet. Browse turfs with 1.") + "\n")
	default:
		for i, bk := range m.bookings {
			name := bk.Turf.Name
			if name == "" {
				name = bk.Turf.ID
			}
			line := fmt.Sprintf("%s  %s %s-%s  %s",
				name, bk.Date, bk.StartTime, bk.EndTime,
				priceStyle.Render(fmt.Sprintf("%.0f BDT", bk.TotalPrice)))
			badges := statusBadge(bk.Status) + " " + paymentBadge(bk.PaymentStatus)
			if i == m.cursor {
				b.WriteString(" " + selectedStyle.Render("> ") + line + "  " + badges + "\n")
			} else {
				b.WriteString("   " + line + "  " + badges + "\n")
			}
		}
		if m.cursor < len(m.bookings) && m.bookings[m.cursor].PaymentStatus == domain.PaymentUnpaid &&
			m.bookings[m.cursor].Status != domain.BookingCancelled {
			b.WriteString("\n " + dimStyle.Render("enter pays for the selected booking") + "\n")
		}
	}
	return b.String()
}

func (m dashboardModel) helpKeys() string {
	if m.edit {
		return helpEntry("enter", "save") + "  " + helpEntry("tab", "next field") + "  " + helpEntry("esc", "cancel")
	}
	return helpEntry("j/k", "nav") + "  " + helpEntry("enter", "pay") + "  " +
		helpEntry("e", "edit profile") + "  " + helpEntry("r", "refresh") + "  " + helpEntry("ctrl+o", "sign out")
}
