// Package state persists the progress of one installation as a small JSON record.
//
// The record is read and rewritten whole on every mutation without any locking: at most one
// installer, validator or rollback process may run for a slug at a time.
package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/rotisserie/eris"
)

// InstallState is the persisted installation progress.
type InstallState struct {
	StartedAt       *time.Time `json:"started_at"`
	StepsCompleted  []string   `json:"steps_completed"`
	BackupCreated   bool       `json:"backup_created"`
	ServicesStopped []string   `json:"services_stopped"`
}

// New returns the empty record used when nothing was persisted yet.
func New() *InstallState {
	return &InstallState{
		StepsCompleted:  []string{},
		ServicesStopped: []string{},
	}
}

// MarkStep appends step unless it is already recorded. It reports whether the record changed.
func (s *InstallState) MarkStep(step string) bool {
	if slices.Contains(s.StepsCompleted, step) {
		return false
	}
	s.StepsCompleted = append(s.StepsCompleted, step)
	return true
}

// Store reads and writes the record at Path.
type Store struct {
	Path string
}

// Load returns the persisted record, or an empty one when the file does not exist.
func (s Store) Load() (*InstallState, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read state file %q", s.Path)
	}

	st := New()
	if err := json.Unmarshal(data, st); err != nil {
		return nil, eris.Wrapf(err, "failed to decode state file %q", s.Path)
	}
	// null in the file decodes to a nil slice
	if st.StepsCompleted == nil {
		st.StepsCompleted = []string{}
	}
	if st.ServicesStopped == nil {
		st.ServicesStopped = []string{}
	}
	return st, nil
}

// Save rewrites the whole file.
func (s Store) Save(st *InstallState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return eris.Wrap(err, "failed to encode install state")
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.Path), filepath.Base(s.Path)+".*")
	if err != nil {
		return eris.Wrapf(err, "failed to create state file next to %q", s.Path)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return eris.Wrapf(err, "failed to write state file %q", s.Path)
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrapf(err, "failed to write state file %q", s.Path)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return eris.Wrapf(err, "failed to replace state file %q", s.Path)
	}
	return nil
}

// Remove deletes the file. A missing file is not an error.
func (s Store) Remove() error {
	if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
		return eris.Wrapf(err, "failed to remove state file %q", s.Path)
	}
	return nil
}

// Exists reports whether the state file is present.
func (s Store) Exists() bool {
	_, err := os.Stat(s.Path)
	return err == nil
}
