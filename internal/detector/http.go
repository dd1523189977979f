package detector

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"

	"debtguardian/internal/errors"
	"debtguardian/internal/slice"
)

// HTTPConfig configures an HTTP detector adapter.
type HTTPConfig struct {
	// Name identifies the remote detector (from detectors.toml)
	Name string

	// Kind is the slice granularity the endpoint serves
	Kind slice.Kind

	// BaseURL is the detector service root; requests POST to /detect
	BaseURL string

	// Timeout bounds each HTTP call (the coordinator applies its own
	// per-call deadline on top via context)
	Timeout time.Duration

	// Calibrate replaces a missing confidence with the metric-band
	// calibration for the returned smell
	Calibrate bool
}

// HTTPDetector adapts a remote detector service to the Port contract. The
// wire shape mirrors Request/Response; anything else is a malformed
// response and surfaces as a DETECTOR_FAILURE for the coordinator to retry.
type HTTPDetector struct {
	cfg    HTTPConfig
	client *resty.Client
}

// NewHTTPDetector creates an HTTP detector adapter.
func NewHTTPDetector(cfg HTTPConfig) *HTTPDetector {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Content-Type", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	return &HTTPDetector{cfg: cfg, client: client}
}

func (d *HTTPDetector) Name() string {
	return d.cfg.Name
}

func (d *HTTPDetector) Kind() slice.Kind {
	return d.cfg.Kind
}

func (d *HTTPDetector) Detect(ctx context.Context, req Request) (Response, error) {
	var out Response
	resp, err := d.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/detect")
	if err != nil {
		return Response{}, errors.New(errors.DetectorFailure,
			"detector "+d.cfg.Name+" unreachable", err)
	}
	if resp.IsError() {
		return Response{}, errors.Newf(errors.DetectorFailure,
			"detector %s returned HTTP %d", d.cfg.Name, resp.StatusCode())
	}
	if err := validate(&out, req.Metrics, d.cfg.Calibrate); err != nil {
		return Response{}, err
	}
	return out, nil
}

// validate rejects malformed responses so the coordinator treats them as
// transient detector failures rather than recording garbage.
func validate(out *Response, m slice.Metrics, calibrate bool) error {
	switch out.Status {
	case StatusNoDebt:
		return nil
	case StatusDetected:
		if out.SmellType == "" {
			return errors.Newf(errors.DetectorFailure, "detected response without smell type")
		}
		if out.Confidence < 0 || out.Confidence > 1 {
			return errors.Newf(errors.DetectorFailure, "confidence %v out of range", out.Confidence)
		}
		if out.Confidence == 0 && calibrate {
			out.Confidence = Calibrate(out.SmellType, m)
		}
		return nil
	default:
		return errors.Newf(errors.DetectorFailure, "unknown response status %q", out.Status)
	}
}
