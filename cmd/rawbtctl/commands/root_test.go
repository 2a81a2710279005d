package commands

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootReportsErrorOnce(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"print"})

	if err := root.Execute(); err == nil {
		t.Fatal("print without a file should fail")
	}
	got := out.String()
	if strings.Count(got, "Error:") != 1 {
		t.Errorf("output = %q; want the error printed once", got)
	}
	if strings.Contains(got, "Usage:") {
		t.Errorf("output = %q; want no usage on error", got)
	}
}
