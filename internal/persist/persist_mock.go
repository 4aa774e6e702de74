package persist

import (
	"context"

	"github.com/huangsam/codescore/internal/contract"
	"github.com/huangsam/codescore/schema"
	"github.com/stretchr/testify/mock"
)

// MockAnalysisStore is a mock implementation of AnalysisStore for testing.
type MockAnalysisStore struct {
	mock.Mock
}

var _ contract.AnalysisStore = &MockAnalysisStore{} // Compile-time check

// SaveAnalysis implements the AnalysisStore interface.
func (m *MockAnalysisStore) SaveAnalysis(ctx context.Context, rec schema.AnalysisRecord) (int64, error) {
	args := m.Called(ctx, rec)
	return args.Get(0).(int64), args.Error(1)
}

// GetAnalysis implements the AnalysisStore interface.
func (m *MockAnalysisStore) GetAnalysis(ctx context.Context, id int64) (schema.AnalysisRecord, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(schema.AnalysisRecord), args.Error(1)
}

// ListAnalyses implements the AnalysisStore interface.
func (m *MockAnalysisStore) ListAnalyses(ctx context.Context, q schema.ListQuery) ([]schema.AnalysisRecord, error) {
	args := m.Called(ctx, q)
	records, _ := args.Get(0).([]schema.AnalysisRecord)
	return records, args.Error(1)
}

// ListAll implements the AnalysisStore interface.
func (m *MockAnalysisStore) ListAll(ctx context.Context) ([]schema.AnalysisRecord, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]schema.AnalysisRecord)
	return records, args.Error(1)
}

// SetLabel implements the AnalysisStore interface.
func (m *MockAnalysisStore) SetLabel(ctx context.Context, id int64, label int) error {
	args := m.Called(ctx, id, label)
	return args.Error(0)
}

// Clear implements the AnalysisStore interface.
func (m *MockAnalysisStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// GetStatus implements the AnalysisStore interface.
func (m *MockAnalysisStore) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the AnalysisStore interface.
func (m *MockAnalysisStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
