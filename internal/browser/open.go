// Package browser hands URLs off to the user's default browser. The
// payment gateway checkout is the main consumer: the booking flow
// leaves the terminal entirely once a checkout URL exists.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Open opens the given URL in the default browser. Only http(s)
// schemes are accepted; the checkout URL comes from the API, but a
// malformed one should fail here rather than reach a shell.
func Open(url string) error {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("refusing to open non-http url %q", url)
	}
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "linux":
		return exec.Command("xdg-open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
}
