// Package clipboard copies message text to the system clipboard: an OSC 52
// escape sequence first (works over SSH and in modern terminals), then the
// native clipboard.
package clipboard

import (
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
)

// Copy copies text to the system clipboard.
func Copy(text string) error {
	if err := CopyOSC52(text); err == nil {
		return nil
	}
	return CopyNative(text)
}

// CopyOSC52 writes the OSC 52 clipboard sequence to the controlling terminal,
// or to stdout when there is no /dev/tty.
func CopyOSC52(text string) error {
	tty, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	if err != nil {
		return writeOSC52(os.Stdout, text)
	}
	defer tty.Close()
	return writeOSC52(tty, text)
}

func writeOSC52(w io.Writer, text string) error {
	if _, err := osc52.New(text).WriteTo(w); err != nil {
		return fmt.Errorf("clipboard: osc52: %w", err)
	}
	return nil
}

// CopyNative uses the platform clipboard (pbcopy, xclip/xsel, clip.exe).
func CopyNative(text string) error {
	if clipboard.Unsupported {
		return fmt.Errorf("clipboard: no native clipboard available")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	return nil
}
