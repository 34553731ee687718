package shell

import (
	"context"
	"testing"
	"time"

	"gotest.tools/v3/assert"
)

func TestRunCapturesOutputAndExitCode(t *testing.T) {
	res, err := New().Run(context.Background(), "sh", "-c", "echo out; echo err >&2; exit 3")
	assert.NilError(t, err)
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)
	assert.Equal(t, 3, res.ExitCode)
	assert.Check(t, !res.OK())
}

func TestRunSuccess(t *testing.T) {
	res, err := New().Run(context.Background(), "true")
	assert.NilError(t, err)
	assert.Check(t, res.OK())
}

func TestRunMissingCommand(t *testing.T) {
	_, err := New().Run(context.Background(), "deploykit-no-such-command")
	assert.ErrorContains(t, err, "failed to run deploykit-no-such-command")
}

func TestRunTimeout(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := New().Run(ctx, "sleep", "5")
	assert.ErrorContains(t, err, "did not finish")
}

func TestWithTimeoutZeroIsUnbounded(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), 0)
	defer cancel()

	_, ok := ctx.Deadline()
	assert.Check(t, !ok)
}
