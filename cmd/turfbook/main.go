package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/turfbook/turfbook/internal/config"
	"github.com/turfbook/turfbook/internal/logging"
	"github.com/turfbook/turfbook/internal/session"
	"github.com/turfbook/turfbook/internal/tui"
	"github.com/turfbook/turfbook/pkg/client"
	"github.com/turfbook/turfbook/pkg/domain"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Bubble Tea restores the terminal before re-panicking; catch what
	// bubbles up so a crash ends with a readable message.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "turfbook crashed: %v\nplease run it again\n", r)
			os.Exit(1)
		}
	}()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// openStore loads the persisted session. A missing home directory
// degrades to an in-memory session rather than failing startup.
func openStore() *session.Store {
	dir, err := session.DefaultDir()
	if err != nil {
		dir = ""
	}
	store := session.New(dir)
	store.Load() //nolint:errcheck // a corrupt session file just means signing in again
	return store
}

func run() error {
	cfg := config.Load()

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "version", "-v":
			fmt.Println("turfbook " + version)
			return nil
		case "help", "--help", "-h":
			printHelp()
			return nil
		case "whoami":
			return runWhoami()
		case "logout":
			return runLogout()
		}
	}

	store := openStore()

	logDir := ""
	if cfg.Debug {
		if dir, err := session.DefaultDir(); err == nil {
			logDir = dir
		}
	}
	logger, err := logging.New(logDir, cfg.Debug)
	if err != nil {
		return fmt.Errorf("open debug log: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	c := client.New(cfg.APIURL, store, client.WithLogger(logger))

	app := tui.NewApp(c, store, version)
	p := tea.NewProgram(app, tea.WithAltScreen())

	// An unrecoverable 401 clears the session and bounces the TUI to
	// the sign-in view, whatever it was doing.
	c.OnAuthExpired(func() {
		store.Logout()
		p.Send(tui.AuthExpiredMsg{})
	})

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func runWhoami() error {
	store := openStore()
	snap := store.Snapshot()
	if !snap.Authenticated {
		fmt.Println("Not signed in.")
		return nil
	}
	var until time.Time
	if tok := store.RefreshToken(); tok != "" {
		if exp, ok := client.TokenExpiry(tok); ok {
			until = exp
		}
	}
	fmt.Print(whoamiSummary(snap.User, until))
	return nil
}

// whoamiSummary formats the signed-in identity for the terminal.
func whoamiSummary(u *domain.User, until time.Time) string {
	out := fmt.Sprintf("%s <%s>\n", u.Name, u.Email)
	if u.Role != domain.RoleUser {
		out += fmt.Sprintf("role: %s\n", u.Role)
	}
	if !u.Verified {
		out += "email not verified\n"
	}
	if !until.IsZero() {
		out += fmt.Sprintf("session valid until %s\n", until.Local().Format("2006-01-02 15:04"))
	}
	return out
}

func runLogout() error {
	store := openStore()
	if !store.Snapshot().Authenticated && store.RefreshToken() == "" {
		fmt.Println("Already signed out.")
		return nil
	}
	store.Logout()
	fmt.Println("Signed out.")
	return nil
}
