package platform

import (
	"os/exec"
	"strings"
	"time"
)

// Clipboard copies a one-time code or password and clears it after ttl so
// secrets do not linger in the paste buffer.
type Clipboard interface {
	Set(text string, ttl time.Duration) error
}

type execClipboard struct {
	cmd  string
	args []string
}

// NewClipboard picks the first clipboard tool present on the host, falling
// back to a no-op when none is installed.
func NewClipboard() Clipboard {
	for _, c := range []execClipboard{
		{cmd: "pbcopy"},
		{cmd: "wl-copy"},
		{cmd: "xclip", args: []string{"-selection", "clipboard"}},
	} {
		if _, err := exec.LookPath(c.cmd); err == nil {
			return c
		}
	}
	return noopClipboard{}
}

func (c execClipboard) Set(text string, ttl time.Duration) error {
	if err := c.write(text); err != nil {
		return err
	}
	if ttl > 0 {
		time.AfterFunc(ttl, func() { _ = c.write("") })
	}
	return nil
}

func (c execClipboard) write(text string) error {
	cmd := exec.Command(c.cmd, c.args...)
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

type noopClipboard struct{}

func (noopClipboard) Set(string, time.Duration) error { return nil }
