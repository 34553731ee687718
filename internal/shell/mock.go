package shell

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Interface guard.
var _ Runner = (*MockRunner)(nil)

// MockRunner is a Runner for tests. Expectations match on the command name and the args
// slice, e.g. On("Run", mock.Anything, "pm2", []string{"jlist"}).
type MockRunner struct {
	mock.Mock
}

func (m *MockRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	if args == nil {
		args = []string{}
	}
	ret := m.Called(ctx, name, args)
	return ret.Get(0).(Result), ret.Error(1) //nolint:forcetypeassert // set by the test
}
