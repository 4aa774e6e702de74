package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/huangsam/codescore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedDetector struct {
	score float64
	err   error
}

func (d fixedDetector) Detect(context.Context, string) (schema.SmellReport, error) {
	return schema.SmellReport{AIScore: d.score}, d.err
}

func TestSmellPredictor(t *testing.T) {
	tests := []struct {
		name       string
		aiScore    float64
		label      int
		confidence float64
	}{
		{"perfect", 100, schema.CleanLabel, 1.0},
		{"at threshold", 75, schema.CleanLabel, 0.5},
		{"just below threshold", 60, schema.SmellLabel, 0.6},
		{"worst", 0, schema.SmellLabel, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewSmellPredictor(fixedDetector{score: tt.aiScore})
			pred, err := p.Predict(context.Background(), "x = 1\n")
			require.NoError(t, err)
			assert.Equal(t, tt.label, pred.Prediction)
			assert.InDelta(t, tt.confidence, pred.Confidence, 1e-9)
		})
	}
}

func TestSmellPredictorError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewSmellPredictor(fixedDetector{err: boom}).Predict(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
}

func TestSmellPredictorDefaultDetector(t *testing.T) {
	pred, err := NewSmellPredictor(nil).Predict(context.Background(), "def add(a, b):\n    return a + b\n")
	require.NoError(t, err)
	assert.Equal(t, schema.CleanLabel, pred.Prediction)
}
