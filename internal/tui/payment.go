package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/turfbook/turfbook/internal/browser"
	"github.com/turfbook/turfbook/pkg/client"
	"github.com/turfbook/turfbook/pkg/domain"
)

type paymentRefreshedMsg struct {
	booking *domain.Booking
	err     error
}

// paymentModel watches a booking after the checkout URL was handed to
// the browser. Payment completes out of process; refresh re-reads the
// booking to see whether the gateway callback landed.
type paymentModel struct {
	client *client.Client

	booking    domain.Booking
	payURL     string
	refreshing bool
	failure    string
	width      int
	height     int
}

func newPaymentModel(c *client.Client) paymentModel {
	return paymentModel{client: c}
}

func (m *paymentModel) start(booking domain.Booking, payURL string) {
	m.booking = booking
	m.payURL = payURL
}

func (m paymentModel) Init() tea.Cmd { return nil }

func (m paymentModel) refresh() (paymentModel, tea.Cmd) {
	if m.refreshing {
		return m, nil
	}
	m.refreshing = true
	c := m.client
	id := m.booking.ID
	return m, func() tea.Msg {
		bookings, err := c.MyBookings(context.Background())
		if err != nil {
			return paymentRefreshedMsg{err: err}
		}
		for i := range bookings {
			if bookings[i].ID == id {
				return paymentRefreshedMsg{booking: &bookings[i]}
			}
		}
		return paymentRefreshedMsg{err: fmt.Errorf("booking %s not found", id)}
	}
}

func (m paymentModel) Update(msg tea.Msg) (paymentModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case paymentRefreshedMsg:
		m.refreshing = false
		if msg.err != nil {
			m.failure = client.UserMessage(msg.err, "Could not refresh booking")
			return m, nil
		}
		m.failure = ""
		m.booking = *msg.booking
		if m.booking.PaymentStatus == domain.PaymentPaid {
			return m, toastCmd("Payment confirmed", false)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "o":
			if m.payURL != "" {
				if err := browser.Open(m.payURL); err != nil {
					return m, toastCmd("Could not open browser: "+err.Error(), true)
				}
				return m, toastCmd("Opened payment page", false)
			}
		case "c":
			if m.payURL != "" {
				if err := clipboard.WriteAll(m.payURL); err != nil {
					return m, toastCmd("Clipboard unavailable", true)
				}
				return m, toastCmd("Payment URL copied", false)
			}
		case "r":
			return m.refresh()
		}
	}
	return m, nil
}

func (m paymentModel) View() string {
	var b strings.Builder
	bk := m.booking

	b.WriteString("\n")
	switch bk.PaymentStatus {
	case domain.PaymentPaid:
		b.WriteString(" " + okStyle.Render("✓ Payment confirmed") + "\n\n")
	default:
		if bk.Status == domain.BookingCancelled {
			b.WriteString(" " + errStyle.Render("✗ Booking cancelled") + "\n\n")
		} else {
			b.WriteString(" " + warnStyle.Render("Waiting for payment") + "\n")
			b.WriteString(" " + dimStyle.Render("Complete the checkout in your browser, then press r.") + "\n\n")
		}
	}

	name := bk.Turf.Name
	if name == "" {
		name = bk.Turf.ID
	}
	b.WriteString(" " + selectedStyle.Render(name) + "\n")
	b.WriteString(" " + metaStyle.Render(fmt.Sprintf("%s  %s-%s", bk.Date, bk.StartTime, bk.EndTime)) + "\n")
	b.WriteString(" " + priceStyle.Render(fmt.Sprintf("%.0f BDT", bk.TotalPrice)) + "\n\n")
	b.WriteString(" " + statusBadge(bk.Status) + " " + paymentBadge(bk.PaymentStatus) + "\n")

	if m.payURL != "" && bk.PaymentStatus != domain.PaymentPaid {
		b.WriteString("\n " + dimStyle.Render(m.payURL) + "\n")
	}
	if m.refreshing {
		b.WriteString("\n " + dimStyle.Render("Checking...") + "\n")
	}
	if m.failure != "" {
		b.WriteString("\n " + errStyle.Render(m.failure) + "\n")
	}
	return b.String()
}
