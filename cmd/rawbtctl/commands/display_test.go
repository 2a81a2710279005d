package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/adcondev/rawbt-daemon/internal/status"
)

func TestTerminalViewRender(t *testing.T) {
	tests := []struct {
		name string
		view status.View
		want string
	}{
		{"progress", status.View{Kind: status.KindProgress, Percent: 50}, "[###############...............]  50%"},
		{"error", status.View{Kind: status.KindError, Message: "Printer offline"}, "✖ Printer offline (Enter to dismiss)"},
		{"message", status.View{Kind: status.KindMessage, Message: "Job queued"}, "ℹ Job queued"},
		{"hidden", status.View{Kind: status.KindNone}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			terminalView{out: &buf}.render(tt.view)
			got := strings.TrimPrefix(buf.String(), "\r\033[K")
			if got != tt.want {
				t.Errorf("render() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestReport(t *testing.T) {
	cmd := demoCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	if err := report(cmd, status.Event{Status: status.Success, Message: "Print completed in 3ms"}); err != nil {
		t.Errorf("success: %v", err)
	}
	if !strings.Contains(out.String(), "Print completed") {
		t.Errorf("stdout = %q", out.String())
	}
	if err := report(cmd, status.Event{Status: status.Error, Message: "boom"}); err == nil {
		t.Error("error event did not fail")
	}
}
