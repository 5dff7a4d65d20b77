package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"docingest/internal/model"
)

// Gate applies the accept/warn/reject policy on top of a Scanner.
// Verdicts are memoized per content hash and declared filename, so an identical upload is
// scanned once per TTL. The policy itself runs on every call.
type Gate struct {
	scanner  Scanner
	verdicts *cache.Cache
	log      zerolog.Logger
}

// NewGate builds a gate. A ttl <= 0 disables verdict memoization.
func NewGate(s Scanner, ttl time.Duration, log zerolog.Logger) *Gate {
	g := &Gate{scanner: s, log: log.With().Str("component", "security_gate").Logger()}
	if ttl > 0 {
		g.verdicts = cache.New(ttl, 2*ttl)
	}
	return g
}

// Check scans payload and returns its verdict when it may be ingested.
// A threat yields *RejectionError; a scan failure yields an error wrapping ErrUnavailable.
func (g *Gate) Check(ctx context.Context, payload []byte, filename string) (model.Verdict, error) {
	hash := ContentHash(payload)
	key := verdictKey(hash, filename)

	v, cached := g.lookup(key)
	if !cached {
		var err error
		v, err = g.scanner.Scan(ctx, payload, filename)
		if err != nil {
			g.log.Error().Err(err).Str("filename", filename).Msg("scan_failed")
			return model.Verdict{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if v.ContentHash == "" {
			v.ContentHash = hash
		}
		if g.verdicts != nil {
			g.verdicts.SetDefault(key, v)
		}
	}

	if v.ThreatDetected {
		g.log.Error().
			Str("filename", filename).
			Str("hash", v.ContentHash).
			Interface("threats", v.Threats).
			Msg("threat_detected")
		return v, &RejectionError{Filename: filename, Threats: v.Threats}
	}
	if v.Suspicious {
		g.log.Warn().
			Str("filename", filename).
			Str("hash", v.ContentHash).
			Interface("warnings", v.Warnings).
			Msg("suspicious_content")
	}
	return v, nil
}

// The scan capability sees the filename, so a verdict only holds for the name it was given.
func verdictKey(hash, filename string) string {
	return hash + "\x00" + filename
}

func (g *Gate) lookup(key string) (model.Verdict, bool) {
	if g.verdicts == nil {
		return model.Verdict{}, false
	}
	if v, ok := g.verdicts.Get(key); ok {
		return v.(model.Verdict), true
	}
	return model.Verdict{}, false
}
