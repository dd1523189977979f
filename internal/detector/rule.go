package detector

import (
	"context"

	"debtguardian/internal/slice"
)

// RuleDetector is a deterministic, metrics-only detector. It encodes the
// same evidence bands used to calibrate model-backed detections, which makes
// it both a usable offline detector and a reproducible reference
// implementation for tests.
type RuleDetector struct {
	kind slice.Kind
}

// NewRuleDetector creates a rule detector for one slice granularity.
func NewRuleDetector(kind slice.Kind) *RuleDetector {
	return &RuleDetector{kind: kind}
}

func (d *RuleDetector) Name() string {
	return "rules-" + string(d.kind)
}

func (d *RuleDetector) Kind() slice.Kind {
	return d.kind
}

// Detect applies the metric rules. Class slices are checked for Blob and
// Data Class, method slices for Long Method and Feature Envy; when several
// smells match, the one with stronger evidence wins.
func (d *RuleDetector) Detect(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	var candidates []SmellType
	switch d.kind {
	case slice.KindClass:
		if req.Metrics.Lines > 300 || req.Metrics.MethodCount > 15 {
			candidates = append(candidates, SmellBlobClass)
		}
		if req.Metrics.GetterSetterRatio > 0.6 && req.Metrics.MethodCount >= 2 {
			candidates = append(candidates, SmellDataClass)
		}
	case slice.KindMethod:
		if req.Metrics.Lines >= 25 || req.Metrics.Cyclomatic >= 10 {
			candidates = append(candidates, SmellLongMethod)
		}
		if req.Metrics.FanOut >= 5 {
			candidates = append(candidates, SmellFeatureEnvy)
		}
	}

	if len(candidates) == 0 {
		return Response{Status: StatusNoDebt, Confidence: 0.9}, nil
	}

	best := candidates[0]
	bestConf := Calibrate(best, req.Metrics)
	for _, c := range candidates[1:] {
		if conf := Calibrate(c, req.Metrics); conf > bestConf {
			best, bestConf = c, conf
		}
	}
	return Response{Status: StatusDetected, SmellType: best, Confidence: bestConf}, nil
}

// Calibrate maps metric evidence for a smell onto a confidence score.
// Stronger structural evidence yields higher confidence; the bands follow
// the reference calibration used for model-backed detectors.
func Calibrate(smell SmellType, m slice.Metrics) float64 {
	switch smell {
	case SmellBlobClass:
		switch {
		case m.Lines > 500 || m.MethodCount > 20:
			return 0.9
		case m.Lines > 300 || m.MethodCount > 15:
			return 0.75
		default:
			return 0.6
		}
	case SmellDataClass:
		switch {
		case m.GetterSetterRatio > 0.8:
			return 0.9
		case m.GetterSetterRatio > 0.6:
			return 0.75
		default:
			return 0.6
		}
	case SmellFeatureEnvy:
		switch {
		case m.FanOut >= 7:
			return 0.9
		case m.FanOut >= 5:
			return 0.75
		default:
			return 0.6
		}
	case SmellLongMethod:
		switch {
		case m.Lines >= 25 || m.Cyclomatic >= 15:
			return 0.9
		case m.Lines >= 15 || m.Cyclomatic >= 10:
			return 0.75
		default:
			return 0.6
		}
	}
	return 0.5
}
