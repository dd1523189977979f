package coordinator

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"debtguardian/internal/detector"
	"debtguardian/internal/errors"
	"debtguardian/internal/findings"
	"debtguardian/internal/slice"
)

// detectAll runs the detector stage over all routed tasks with bounded
// concurrency. Each task owns exactly one result slot, partitioned by
// index, so workers never share mutable state. When the run deadline
// expires, tasks not yet started are recorded as Failed(TIMEOUT) instead
// of being dropped: coverage must account for every routed slice.
func (c *Coordinator) detectAll(ctx context.Context, tasks []task) []findings.Finding {
	results := make([]findings.Finding, len(tasks))
	queue := make(chan int)

	workers := c.cfg.Concurrency
	if workers > len(tasks) {
		workers = len(tasks)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range queue {
				if ctx.Err() != nil {
					results[i] = timedOut(tasks[i])
					continue
				}
				results[i] = c.detectOne(ctx, tasks[i])
			}
		}()
	}

	for i := range tasks {
		queue <- i
	}
	close(queue)
	wg.Wait()

	return results
}

// detectOne invokes the task's detector port with per-call timeout and
// linear-backoff retries. All attempts exhausted means Failed; the slice's
// result never blocks the rest of the run.
func (c *Coordinator) detectOne(ctx context.Context, t task) findings.Finding {
	req := detector.Request{
		SliceID:       t.sl.ID,
		Kind:          t.sl.Kind,
		QualifiedName: t.sl.QualifiedName,
		SourceText:    t.sl.Text,
		Metrics:       t.sl.Metrics,
	}

	var lastErr error
	for attempt := 1; attempt <= c.cfg.RetryLimit; attempt++ {
		callCtx := ctx
		var cancel context.CancelFunc
		if c.cfg.CallTimeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, c.cfg.CallTimeout)
		}
		resp, err := t.port.Detect(callCtx, req)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			return c.record(t, resp)
		}
		lastErr = err

		c.logger.Warn("Detector call failed", map[string]interface{}{
			"sliceId":  t.sl.ID,
			"detector": t.port.Name(),
			"attempt":  attempt,
			"error":    err.Error(),
		})

		if ctx.Err() != nil {
			// Run deadline consumed; retrying cannot succeed
			return timedOut(t)
		}
		if attempt < c.cfg.RetryLimit && c.cfg.RetryBackoff > 0 {
			if !sleepCtx(ctx, time.Duration(attempt)*c.cfg.RetryBackoff) {
				return timedOut(t)
			}
		}
	}

	code := errors.DetectorFailure
	if stderrors.Is(lastErr, context.DeadlineExceeded) || errors.IsCode(lastErr, errors.Timeout) {
		code = errors.Timeout
	}
	return findings.Finding{
		SliceID:     t.sl.ID,
		Detector:    t.port.Name(),
		Status:      findings.StatusFailed,
		FailureCode: code,
	}
}

// record translates a detector response into a terminal finding, applying
// the per-kind confidence threshold. Below-threshold detections become
// NoDebt rather than being dropped.
func (c *Coordinator) record(t task, resp detector.Response) findings.Finding {
	f := findings.Finding{
		SliceID:    t.sl.ID,
		Detector:   t.port.Name(),
		Confidence: resp.Confidence,
	}
	threshold := c.threshold(t.sl.Kind)
	if resp.Status == detector.StatusDetected && resp.Confidence >= threshold {
		f.Status = findings.StatusDetected
		f.SmellType = resp.SmellType
	} else {
		f.Status = findings.StatusNoDebt
	}
	return f
}

func (c *Coordinator) threshold(kind slice.Kind) float64 {
	if c.cfg.MinConfidence == nil {
		return 0
	}
	return c.cfg.MinConfidence[kind]
}

func timedOut(t task) findings.Finding {
	return findings.Finding{
		SliceID:     t.sl.ID,
		Detector:    t.port.Name(),
		Status:      findings.StatusFailed,
		FailureCode: errors.Timeout,
	}
}

// sleepCtx waits d or until the context is done, reporting whether the full
// delay elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
