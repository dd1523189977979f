package detector

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"debtguardian/internal/errors"
	"debtguardian/internal/slice"
)

func httpDetectorFor(t *testing.T, handler http.HandlerFunc, calibrate bool) *HTTPDetector {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPDetector(HTTPConfig{
		Name:      "remote-method",
		Kind:      slice.KindMethod,
		BaseURL:   srv.URL,
		Calibrate: calibrate,
	})
}

func TestHTTPDetectorDetect(t *testing.T) {
	d := httpDetectorFor(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/detect" {
			t.Errorf("path = %s, want /detect", r.URL.Path)
		}
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("request body not decodable: %v", err)
		}
		if req.SliceID != "dg:method:aaa" {
			t.Errorf("sliceId = %s", req.SliceID)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Response{
			Status: StatusDetected, SmellType: SmellLongMethod, Confidence: 0.8,
		})
	}, false)

	resp, err := d.Detect(context.Background(), Request{
		SliceID: "dg:method:aaa",
		Kind:    slice.KindMethod,
	})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if resp.SmellType != SmellLongMethod || resp.Confidence != 0.8 {
		t.Errorf("response = %+v", resp)
	}
}

func TestHTTPDetectorServerErrorIsDetectorFailure(t *testing.T) {
	d := httpDetectorFor(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}, false)

	_, err := d.Detect(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error on HTTP 500")
	}
	if !errors.IsCode(err, errors.DetectorFailure) {
		t.Errorf("code = %s, want DETECTOR_FAILURE", errors.CodeOf(err))
	}
}

func TestHTTPDetectorRejectsMalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		resp Response
	}{
		{"unknown status", Response{Status: "maybe"}},
		{"detected without smell", Response{Status: StatusDetected, Confidence: 0.8}},
		{"confidence out of range", Response{Status: StatusDetected, SmellType: SmellLongMethod, Confidence: 1.2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := httpDetectorFor(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(tt.resp)
			}, false)

			_, err := d.Detect(context.Background(), Request{})
			if err == nil {
				t.Fatal("malformed response accepted")
			}
			if !errors.IsCode(err, errors.DetectorFailure) {
				t.Errorf("code = %s, want DETECTOR_FAILURE", errors.CodeOf(err))
			}
		})
	}
}

func TestHTTPDetectorCalibratesMissingConfidence(t *testing.T) {
	d := httpDetectorFor(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Response{
			Status: StatusDetected, SmellType: SmellLongMethod,
		})
	}, true)

	resp, err := d.Detect(context.Background(), Request{
		Kind:    slice.KindMethod,
		Metrics: slice.Metrics{Lines: 30},
	})
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if resp.Confidence != 0.9 {
		t.Errorf("calibrated confidence = %v, want 0.9", resp.Confidence)
	}
}

func TestHTTPDetectorUnreachable(t *testing.T) {
	d := NewHTTPDetector(HTTPConfig{
		Name:    "gone",
		Kind:    slice.KindMethod,
		BaseURL: "http://127.0.0.1:1",
	})
	_, err := d.Detect(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected transport error")
	}
	if !errors.IsCode(err, errors.DetectorFailure) {
		t.Errorf("code = %s, want DETECTOR_FAILURE", errors.CodeOf(err))
	}
}
