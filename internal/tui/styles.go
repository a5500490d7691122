package tui

import (
	"fmt"
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Shimmer animation for the TURFBOOK logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "T U R F B O O K" as a flowing wave of
// pitch-green light, deep grass (#14381e) up to bright turf (#3ecf6a).
func renderShimmerLogo(frame int) string {
	const text = "TURFBOOK"
	n := len(text)

	var out string
	t := float64(frame)

	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)

		// One smooth wave advancing through the text.
		phase := t*0.1 - x*3.0
		phase += math.Sin(t*0.023) * 2.0

		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.3)

		tide := math.Sin(t*0.035) * 0.12
		b = b*0.75 + tide + 0.18

		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		r := clampByte(20 + b*(62-20))
		g := clampByte(56 + b*(207-56))
		bl := clampByte(30 + b*(106-30))

		color := fmt.Sprintf("#%02X%02X%02X", r, g, bl)
		s := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(color))
		out += s.Render(string(text[i]))

		if i < n-1 {
			out += "  "
		}
	}
	return out
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	// Base palette
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3ecf6a")).
			Bold(true)

	// Status line
	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#3ecf6a"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e0608a"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4a844"))

	// Slots and bookings
	slotOpenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3ecf6a"))

	slotTakenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868")).
			Strikethrough(true)

	priceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4a844"))

	// Form inputs
	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#3ecf6a"))

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#505868")).
				Italic(true)

	fieldErrStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e0608a")).
			Italic(true)

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))
)

// helpEntry renders one "key label" pair for the bottom help bar.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// statusBadge colors a booking status word.
func statusBadge(status string) string {
	switch status {
	case "confirmed":
		return okStyle.Render(status)
	case "cancelled":
		return errStyle.Render(status)
	default:
		return warnStyle.Render(status)
	}
}

// paymentBadge colors a payment status word.
func paymentBadge(status string) string {
	switch status {
	case "paid":
		return okStyle.Render(status)
	case "refunded":
		return warnStyle.Render(status)
	default:
		return dimStyle.Render(status)
	}
}
