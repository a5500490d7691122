package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/turfbook/turfbook/internal/browser"
	"github.com/turfbook/turfbook/internal/session"
	"github.com/turfbook/turfbook/pkg/client"
	"github.com/turfbook/turfbook/pkg/domain"
)

// requireAuthMsg sends the user to sign-in and brings them back here
// afterwards.
type requireAuthMsg struct{}

type turfLoadedMsg struct {
	turf *domain.Turf
	err  error
}

type availLoadedMsg struct {
	date  string
	avail *domain.TurfAvailability
	err   error
}

// bookingFlowDoneMsg reports the book-then-pay chain. stage names how
// far it got; a booking created before a payment failure stays in
// place and shows up on the dashboard as unpaid.
type bookingFlowDoneMsg struct {
	stage   string // "booking", "payment", "browser", "done"
	booking *domain.Booking
	payURL  string
	err     error
}

type turfDetailModel struct {
	client *client.Client
	store  *session.Store

	turf    *domain.Turf
	date    string
	avail   *domain.TurfAvailability
	cursor  int
	loading bool
	booking bool
	failure string
	width   int
	height  int
}

func newTurfDetailModel(c *client.Client, store *session.Store) turfDetailModel {
	return turfDetailModel{client: c, store: store, date: time.Now().Format("2006-01-02")}
}

func (m turfDetailModel) Init() tea.Cmd { return nil }

// load fetches the turf, then its availability for the selected date.
func (m *turfDetailModel) load(slug string) tea.Cmd {
	m.loading = true
	m.failure = ""
	c := m.client
	return func() tea.Msg {
		turf, err := c.GetTurf(context.Background(), slug)
		return turfLoadedMsg{turf: turf, err: err}
	}
}

func (m turfDetailModel) loadAvailability() tea.Cmd {
	c := m.client
	turfID := m.turf.ID
	date := m.date
	return func() tea.Msg {
		avail, err := c.Availability(context.Background(), turfID, date)
		return availLoadedMsg{date: date, avail: avail, err: err}
	}
}

func (m turfDetailModel) shiftDate(days int) (turfDetailModel, tea.Cmd) {
	t, err := time.Parse("2006-01-02", m.date)
	if err != nil {
		t = time.Now()
	}
	next := t.AddDate(0, 0, days)
	today := time.Now().Format("2006-01-02")
	if next.Format("2006-01-02") < today {
		return m, nil // no booking in the past
	}
	m.date = next.Format("2006-01-02")
	m.cursor = 0
	m.avail = nil
	if m.turf == nil {
		return m, nil
	}
	m.loading = true
	return m, m.loadAvailability()
}

// book runs the whole chain in one command: create the booking, ask
// for a checkout URL, hand it to the browser. Any step's failure stops
// the chain where it is; nothing is rolled back.
func (m turfDetailModel) book() (turfDetailModel, tea.Cmd) {
	if m.booking || m.turf == nil || m.avail == nil {
		return m, nil
	}
	open := m.avail.Open()
	if m.cursor >= len(open) {
		return m, nil
	}
	if !m.store.Snapshot().Authenticated {
		return m, func() tea.Msg { return requireAuthMsg{} }
	}
	slot := open[m.cursor]
	end, err := domain.NextHour(slot.StartTime)
	if err != nil {
		m.failure = "invalid slot time"
		return m, nil
	}
	in := domain.BookingInput{
		TurfID:    m.turf.ID,
		Date:      m.date,
		StartTime: slot.StartTime,
		EndTime:   end,
	}
	if errs := domain.Validate(in); errs != nil {
		m.failure = errs.Error()
		return m, nil
	}

	m.booking = true
	m.failure = ""
	c := m.client
	st := m.store
	st.SetFlowPending(session.FlowBooking, true)
	return m, func() tea.Msg {
		defer st.SetFlowPending(session.FlowBooking, false)

		booking, err := c.CreateBooking(context.Background(), in)
		if err != nil {
			return bookingFlowDoneMsg{stage: "booking", err: err}
		}
		payURL, err := c.InitPayment(context.Background(), booking.ID)
		if err != nil {
			return bookingFlowDoneMsg{stage: "payment", booking: booking, err: err}
		}
		if err := browser.Open(payURL); err != nil {
			// Still a success: the payment view shows the URL and can
			// copy it to the clipboard.
			return bookingFlowDoneMsg{stage: "browser", booking: booking, payURL: payURL, err: err}
		}
		return bookingFlowDoneMsg{stage: "done", booking: booking, payURL: payURL}
	}
}

func (m turfDetailModel) Update(msg tea.Msg) (turfDetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case turfLoadedMsg:
		if msg.err != nil {
			m.loading = false
			m.failure = client.UserMessage(msg.err, "Could not load turf")
			return m, nil
		}
		m.turf = msg.turf
		return m, m.loadAvailability()

	case availLoadedMsg:
		if msg.date != m.date {
			return m, nil // stale response for a date we left
		}
		m.loading = false
		if msg.err != nil {
			m.failure = client.UserMessage(msg.err, "Could not load availability")
			return m, nil
		}
		m.failure = ""
		m.avail = msg.avail
		if open := m.avail.Open(); m.cursor >= len(open) {
			m.cursor = 0
		}
		return m, nil

	case bookingFlowDoneMsg:
		m.booking = false
		if msg.err != nil && msg.stage != "browser" {
			failure := client.UserMessage(msg.err, "Booking failed")
			if msg.stage == "payment" {
				failure = "Booked, but payment setup failed: " + failure + ". Pay from your dashboard"
			}
			m.failure = failure
			if msg.booking != nil {
				// Slot is taken now even though payment didn't start.
				m.avail = nil
				m.loading = true
				return m, m.loadAvailability()
			}
			return m, nil
		}
		booking := *msg.booking
		payURL := msg.payURL
		return m, func() tea.Msg { return paymentStartedMsg{booking: booking, payURL: payURL} }

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down", "l", "right":
			if m.avail != nil && m.cursor < len(m.avail.Open())-1 {
				m.cursor++
			}
		case "k", "up", "h", "left":
			if m.cursor > 0 {
				m.cursor--
			}
		case "+", "]":
			return m.shiftDate(1)
		case "-", "[":
			return m.shiftDate(-1)
		case "r":
			if m.turf != nil {
				m.client.InvalidateAvailability(m.turf.ID, m.date)
				m.loading = true
				return m, m.loadAvailability()
			}
		case "enter", "b":
			return m.book()
		}
	}
	return m, nil
}

func (m turfDetailModel) View() string {
	var b strings.Builder
	b.WriteString("\n")

	if m.turf == nil {
		if m.failure != "" {
			b.WriteString(" " + errStyle.Render(m.failure) + "\n")
		} else {
			b.WriteString(" " + dimStyle.Render("Loading...") + "\n")
		}
		return b.String()
	}

	t := m.turf
	b.WriteString(" " + selectedStyle.Render(t.Name) + "\n")
	loc := t.Location.City
	if t.Location.Address != "" {
		loc = t.Location.Address + ", " + loc
	}
	b.WriteString(" " + metaStyle.Render(loc) + "\n")
	if t.Description != "" {
		b.WriteString(" " + dimStyle.Render(t.Description) + "\n")
	}
	if len(t.Amenities) > 0 {
		b.WriteString(" " + dimStyle.Render(strings.Join(t.Amenities, " · ")) + "\n")
	}
	b.WriteString(" " + metaStyle.Render(fmt.Sprintf("open %s to %s", t.OperatingHours.Start, t.OperatingHours.End)) + "\n\n")

	dateLabel := m.date
	if parsed, err := time.Parse("2006-01-02", m.date); err == nil {
		dateLabel = parsed.Format("Mon, 02 Jan 2006")
	}
	b.WriteString(" " + accentStyle.Render(dateLabel) + dimStyle.Render("   -/+ to change day") + "\n\n")

	switch {
	case m.failure != "":
		b.WriteString(" " + errStyle.Render(m.failure) + "\n")
	case m.loading:
		b.WriteString(" " + dimStyle.Render("Loading slots...") + "\n")
	case m.avail == nil || len(m.avail.Slots) == 0:
		b.WriteString(" " + dimStyle.Render("No slots for this date.") + "\n")
	default:
		openIdx := 0
		for _, s := range m.avail.Slots {
			window := s.StartTime + "-" + s.EndTime
			price := priceStyle.Render(fmt.Sprintf("%.0f BDT", s.PricePerSlot))
			if !s.Available {
				b.WriteString("   " + slotTakenStyle.Render(window) + "  " + dimStyle.Render("taken") + "\n")
				continue
			}
			if openIdx == m.cursor {
				b.WriteString(" " + selectedStyle.Render("> "+window) + "  " + price + "\n")
			} else {
				b.WriteString("   " + slotOpenStyle.Render(window) + "  " + price + "\n")
			}
			openIdx++
		}
	}

	if m.booking {
		b.WriteString("\n " + dimStyle.Render("Reserving slot and preparing payment...") + "\n")
	}
	return b.String()
}

func (m turfDetailModel) helpKeys() string {
	return helpEntry("j/k", "slot") + "  " + helpEntry("-/+", "day") + "  " +
		helpEntry("enter", "book") + "  " + helpEntry("r", "refresh") + "  " + helpEntry("esc", "back")
}
