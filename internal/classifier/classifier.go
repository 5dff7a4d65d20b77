// Package classifier adapts the external sensitive-information classifier. The classifier is
// a soft dependency: Adapter.Classify never returns an error, it reports a degraded outcome.
package classifier

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"docingest/internal/model"
)

// Classifier is the raw classification capability.
type Classifier interface {
	Classify(ctx context.Context, payload []byte, filename string) ([]model.Span, error)
}

// Result is the outcome of one classification attempt.
type Result struct {
	// Status is one of model.ClassificationFound, ClassificationNone or ClassificationDegraded.
	Status string
	Spans  []model.Span
	// Err is the absorbed failure when Status is degraded.
	Err error
}

// Adapter bounds each call with a timeout and absorbs every failure.
type Adapter struct {
	classifier Classifier
	timeout    time.Duration
	log        zerolog.Logger
}

// NewAdapter wraps c. A timeout <= 0 leaves the call unbounded beyond ctx.
func NewAdapter(c Classifier, timeout time.Duration, log zerolog.Logger) *Adapter {
	return &Adapter{
		classifier: c,
		timeout:    timeout,
		log:        log.With().Str("component", "classifier").Logger(),
	}
}

// Classify runs the classifier over payload.
func (a *Adapter) Classify(ctx context.Context, payload []byte, filename string) Result {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	spans, err := a.classifier.Classify(ctx, payload, filename)
	if err != nil {
		a.log.Warn().Err(err).Str("filename", filename).Msg("classification_degraded")
		return Result{Status: model.ClassificationDegraded, Err: err}
	}
	if len(spans) == 0 {
		return Result{Status: model.ClassificationNone}
	}

	a.log.Info().Str("filename", filename).Int("findings", len(spans)).Msg("sensitive_info_detected")
	return Result{Status: model.ClassificationFound, Spans: spans}
}
