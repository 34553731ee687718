package printer

import (
	"bytes"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
)

func captureOut(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	old := Out
	Out = buf
	t.Cleanup(func() { Out = old })
	return buf
}

func TestLinesKeepMessage(t *testing.T) {
	for _, render := range []func(string) string{SuccessLine, ErrorLine, WarnLine, InfoLine, ItemLine} {
		line := render("Redis is responding")
		assert.Assert(t, strings.HasSuffix(line, " Redis is responding"), line)
	}
}

func TestItemLineIndent(t *testing.T) {
	assert.Assert(t, strings.HasPrefix(ItemLine("x"), "   "))
}

func TestPrintln(t *testing.T) {
	buf := captureOut(t)

	Println("first")
	Errorf("failed %d", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, len(lines), 2)
	assert.Equal(t, lines[0], "first")
	assert.Assert(t, strings.HasSuffix(lines[1], "failed 3"))
}
