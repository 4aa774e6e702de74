package tools

import (
	"context"

	"github.com/huangsam/codescore/core/score"
	"github.com/huangsam/codescore/internal/contract"
	"github.com/huangsam/codescore/schema"
)

// DefaultSmellThreshold is the AI score below which source is labeled smelly.
const DefaultSmellThreshold = 75.0

// SmellPredictor labels source as clean or smelly from its AI score.
type SmellPredictor struct {
	detector  contract.SmellDetector
	threshold float64
}

var _ contract.Predictor = &SmellPredictor{} // Compile-time check

// NewSmellPredictor returns a predictor backed by detector. A nil detector uses NewSmellDetector.
func NewSmellPredictor(detector contract.SmellDetector) *SmellPredictor {
	if detector == nil {
		detector = NewSmellDetector()
	}
	return &SmellPredictor{detector: detector, threshold: DefaultSmellThreshold}
}

// Predict implements contract.Predictor. Confidence grows linearly with the
// distance of the AI score from the threshold, from 0.5 up to 1.
func (p *SmellPredictor) Predict(ctx context.Context, source string) (schema.Prediction, error) {
	report, err := p.detector.Detect(ctx, source)
	if err != nil {
		return schema.Prediction{}, err
	}

	ai := report.AIScore
	if ai < p.threshold {
		return schema.Prediction{
			Prediction: schema.SmellLabel,
			Confidence: score.Round2(0.5 + 0.5*(p.threshold-ai)/p.threshold),
		}, nil
	}
	span := 100 - p.threshold
	conf := 1.0
	if span > 0 {
		conf = 0.5 + 0.5*(ai-p.threshold)/span
	}
	return schema.Prediction{Prediction: schema.CleanLabel, Confidence: score.Round2(conf)}, nil
}
