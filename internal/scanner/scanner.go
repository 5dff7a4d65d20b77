// Package scanner is the security gate in front of ingestion. It consumes an opaque scan
// capability and turns its verdict into an accept or reject decision.
package scanner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"docingest/internal/model"
)

// Risk scores derived from a verdict.
const (
	RiskScoreThreat     = 100
	RiskScoreSuspicious = 50
	RiskScoreBaseline   = 10
)

// ErrUnavailable wraps any failure to obtain a verdict. Nothing is accepted without one.
var ErrUnavailable = errors.New("scanner unavailable")

// Scanner is the scan capability. Implementations may run in-process or remotely.
type Scanner interface {
	Scan(ctx context.Context, payload []byte, filename string) (model.Verdict, error)
}

// RejectionError is returned when a scan detects a threat.
type RejectionError struct {
	Filename string
	Threats  []model.ThreatInfo
}

func (e *RejectionError) Error() string {
	parts := make([]string, 0, len(e.Threats))
	for _, t := range e.Threats {
		parts = append(parts, t.Type+"="+t.Description)
	}
	return fmt.Sprintf("file %q rejected: threat detected [%s]", e.Filename, strings.Join(parts, "; "))
}

// RiskScore maps a verdict to the numeric risk signal stored on the document.
func RiskScore(v model.Verdict) int {
	switch {
	case v.ThreatDetected:
		return RiskScoreThreat
	case v.Suspicious:
		return RiskScoreSuspicious
	default:
		return RiskScoreBaseline
	}
}

// ContentHash returns the lowercase hex SHA-256 of payload.
func ContentHash(payload []byte) string {
	h := sha256.Sum256(payload)
	return hex.EncodeToString(h[:])
}
