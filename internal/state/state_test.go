package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gotest.tools/v3/assert"
)

func newStore(t *testing.T) Store {
	return Store{Path: filepath.Join(t.TempDir(), "acme_install_state.json")}
}

func TestLoadMissingFileReturnsEmptyRecord(t *testing.T) {
	st, err := newStore(t).Load()
	assert.NilError(t, err)
	assert.Check(t, st.StartedAt == nil)
	assert.Check(t, !st.BackupCreated)
	assert.DeepEqual(t, []string{}, st.StepsCompleted)
	assert.DeepEqual(t, []string{}, st.ServicesStopped)
}

func TestSaveThenLoad(t *testing.T) {
	store := newStore(t)
	started := time.Date(2026, 10, 16, 12, 30, 0, 0, time.UTC)

	st := New()
	st.StartedAt = &started
	st.BackupCreated = true
	st.MarkStep("extract")
	assert.NilError(t, store.Save(st))

	loaded, err := store.Load()
	assert.NilError(t, err)
	assert.Check(t, loaded.StartedAt.Equal(started))
	assert.Check(t, loaded.BackupCreated)
	assert.DeepEqual(t, []string{"extract"}, loaded.StepsCompleted)
}

func TestSavedFileUsesSnakeCaseKeys(t *testing.T) {
	store := newStore(t)
	assert.NilError(t, store.Save(New()))

	data, err := os.ReadFile(store.Path)
	assert.NilError(t, err)
	assert.Equal(t, `{
  "started_at": null,
  "steps_completed": [],
  "backup_created": false,
  "services_stopped": []
}`, string(data))
}

func TestLoadNullListsBecomeEmpty(t *testing.T) {
	store := newStore(t)
	assert.NilError(t, os.WriteFile(store.Path, []byte(`{"steps_completed": null}`), 0o600))

	st, err := store.Load()
	assert.NilError(t, err)
	assert.DeepEqual(t, []string{}, st.StepsCompleted)
	assert.DeepEqual(t, []string{}, st.ServicesStopped)
}

func TestLoadCorruptFile(t *testing.T) {
	store := newStore(t)
	assert.NilError(t, os.WriteFile(store.Path, []byte(`{`), 0o600))

	_, err := store.Load()
	assert.ErrorContains(t, err, "failed to decode state file")
}

func TestMarkStepIsIdempotent(t *testing.T) {
	st := New()
	assert.Check(t, st.MarkStep("deps"))
	assert.Check(t, !st.MarkStep("deps"))
	assert.Check(t, st.MarkStep("db"))
	assert.DeepEqual(t, []string{"deps", "db"}, st.StepsCompleted)
}

func TestRemove(t *testing.T) {
	store := newStore(t)
	assert.NilError(t, store.Remove())

	assert.NilError(t, store.Save(New()))
	assert.Check(t, store.Exists())
	assert.NilError(t, store.Remove())
	assert.Check(t, !store.Exists())
}
