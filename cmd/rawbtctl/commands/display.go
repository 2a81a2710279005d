package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/adcondev/rawbt-daemon/internal/status"
)

const barWidth = 30

// terminalView draws status views on a single terminal line.
type terminalView struct {
	out io.Writer
}

func (t terminalView) render(v status.View) {
	_, _ = fmt.Fprint(t.out, "\r\033[K")
	switch v.Kind {
	case status.KindProgress:
		done := barWidth * v.Percent / 100
		_, _ = fmt.Fprintf(t.out, "[%s%s] %3d%%", strings.Repeat("#", done), strings.Repeat(".", barWidth-done), v.Percent)
	case status.KindError:
		_, _ = fmt.Fprintf(t.out, "✖ %s (Enter to dismiss)", v.Message)
	case status.KindMessage:
		_, _ = fmt.Fprintf(t.out, "ℹ %s", v.Message)
	}
}
