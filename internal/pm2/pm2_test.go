package pm2

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"gotest.tools/v3/assert"

	"github.com/chatia/deploykit/internal/shell"
)

const jlist = `[
  {"pm_id": 0, "name": "acme-backend", "pm2_env": {"status": "online", "restart_time": 2}},
  {"pm_id": 1, "name": "worker", "pm2_env": {"status": "stopped"}}
]`

func TestParseList(t *testing.T) {
	procs, err := ParseList(jlist)
	assert.NilError(t, err)
	assert.DeepEqual(t, []Process{
		{ID: 0, Name: "acme-backend", Status: "online"},
		{ID: 1, Name: "worker", Status: "stopped"},
	}, procs)

	p, ok := Find(procs, "worker")
	assert.Check(t, ok)
	assert.Check(t, !p.Online())

	_, ok = Find(procs, "missing")
	assert.Check(t, !ok)
}

func TestParseListEmpty(t *testing.T) {
	procs, err := ParseList("[]\n")
	assert.NilError(t, err)
	assert.Equal(t, 0, len(procs))
}

func TestParseListRejectsGarbage(t *testing.T) {
	_, err := ParseList("[PM2] Spawning PM2 daemon")
	assert.ErrorContains(t, err, "valid JSON")

	_, err = ParseList(`{"name": "x"}`)
	assert.ErrorContains(t, err, "process list")
}

func TestListNonZeroExit(t *testing.T) {
	runner := &shell.MockRunner{}
	runner.On("Run", mock.Anything, "pm2", []string{"jlist"}).
		Return(shell.Result{ExitCode: 1, Stderr: "daemon not found"}, nil)

	_, err := New(runner).List(context.Background())
	assert.ErrorContains(t, err, "daemon not found")
	assert.ErrorContains(t, err, "pm2 is not running")
}

func TestListRunError(t *testing.T) {
	runner := &shell.MockRunner{}
	runner.On("Run", mock.Anything, "pm2", []string{"jlist"}).
		Return(shell.Result{}, errors.New("executable file not found"))

	_, err := New(runner).List(context.Background())
	assert.ErrorContains(t, err, "executable file not found")
}

func TestControlCommands(t *testing.T) {
	runner := &shell.MockRunner{}
	runner.On("Run", mock.Anything, "pm2", []string{"save"}).Return(shell.Result{}, nil)
	runner.On("Run", mock.Anything, "pm2", []string{"stop", "all"}).Return(shell.Result{}, nil)
	runner.On("Run", mock.Anything, "pm2", []string{"delete", "acme-backend"}).
		Return(shell.Result{ExitCode: 1}, nil)
	runner.On("Run", mock.Anything, "pm2", []string{"resurrect"}).
		Return(shell.Result{}, errors.New("boom"))

	client := New(runner)
	ctx := context.Background()
	assert.NilError(t, client.Save(ctx))
	assert.NilError(t, client.StopAll(ctx))
	assert.NilError(t, client.Delete(ctx, "acme-backend"))
	assert.ErrorContains(t, client.Resurrect(ctx), "boom")
	runner.AssertExpectations(t)
}
