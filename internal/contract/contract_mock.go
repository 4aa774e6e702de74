package contract

import (
	"context"

	"github.com/huangsam/codescore/schema"
	"github.com/stretchr/testify/mock"
)

// MockTool is a mock implementation of Tool for testing.
type MockTool struct {
	mock.Mock
	ToolName string
	ToolKind schema.ToolKind
}

var _ Tool = &MockTool{} // Compile-time check

// Name implements the Tool interface.
func (m *MockTool) Name() string { return m.ToolName }

// Kind implements the Tool interface.
func (m *MockTool) Kind() schema.ToolKind { return m.ToolKind }

// Run implements the Tool interface.
func (m *MockTool) Run(ctx context.Context, source string) (schema.ToolReport, error) {
	args := m.Called(ctx, source)
	return args.Get(0).(schema.ToolReport), args.Error(1)
}

// MockPredictor is a mock implementation of Predictor for testing.
type MockPredictor struct {
	mock.Mock
}

var _ Predictor = &MockPredictor{} // Compile-time check

// Predict implements the Predictor interface.
func (m *MockPredictor) Predict(ctx context.Context, source string) (schema.Prediction, error) {
	args := m.Called(ctx, source)
	return args.Get(0).(schema.Prediction), args.Error(1)
}

// MockSourceFetcher is a mock implementation of SourceFetcher for testing.
type MockSourceFetcher struct {
	mock.Mock
}

var _ SourceFetcher = &MockSourceFetcher{} // Compile-time check

// Fetch implements the SourceFetcher interface.
func (m *MockSourceFetcher) Fetch(ctx context.Context, repository, ref, path string) (string, error) {
	args := m.Called(ctx, repository, ref, path)
	return args.String(0), args.Error(1)
}

// MockCodeAnalyzer is a mock implementation of CodeAnalyzer for testing.
type MockCodeAnalyzer struct {
	mock.Mock
}

var _ CodeAnalyzer = &MockCodeAnalyzer{} // Compile-time check

// Analyze implements the CodeAnalyzer interface.
func (m *MockCodeAnalyzer) Analyze(ctx context.Context, source string) (*schema.AnalysisResult, error) {
	args := m.Called(ctx, source)
	res, _ := args.Get(0).(*schema.AnalysisResult)
	return res, args.Error(1)
}

// ClearCache implements the CodeAnalyzer interface.
func (m *MockCodeAnalyzer) ClearCache() {
	m.Called()
}

// CacheStats implements the CodeAnalyzer interface.
func (m *MockCodeAnalyzer) CacheStats() schema.CacheStats {
	args := m.Called()
	return args.Get(0).(schema.CacheStats)
}

// MockSmellDetector is a mock implementation of SmellDetector for testing.
type MockSmellDetector struct {
	mock.Mock
}

var _ SmellDetector = &MockSmellDetector{} // Compile-time check

// Detect implements the SmellDetector interface.
func (m *MockSmellDetector) Detect(ctx context.Context, source string) (schema.SmellReport, error) {
	args := m.Called(ctx, source)
	return args.Get(0).(schema.SmellReport), args.Error(1)
}
