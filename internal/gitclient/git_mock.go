package gitclient

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockRunner is a mock implementation of Runner for testing.
type MockRunner struct {
	mock.Mock
}

var _ Runner = &MockRunner{} // Compile-time check

// Run implements the Runner interface.
func (m *MockRunner) Run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	callArgs := []any{ctx, dir}
	for _, arg := range args {
		callArgs = append(callArgs, arg)
	}
	ret := m.Called(callArgs...)
	var out []byte
	if v := ret.Get(0); v != nil {
		out = v.([]byte)
	}
	return out, ret.Error(1)
}
