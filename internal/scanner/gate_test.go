package scanner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docingest/internal/logger"
	"docingest/internal/model"
	"docingest/internal/scanner/mocks"
)

func TestGate_Check(t *testing.T) {
	ctx := context.Background()
	payload := []byte("hello world")

	tests := []struct {
		name        string
		verdict     model.Verdict
		scanErr     error
		wantReject  bool
		wantUnavail bool
		wantHash    string
	}{
		{
			name:     "clean verdict passes and gets a hash",
			verdict:  model.Verdict{},
			wantHash: ContentHash(payload),
		},
		{
			name: "suspicious verdict passes",
			verdict: model.Verdict{
				Suspicious:  true,
				Warnings:    []model.ThreatInfo{{Type: "MACRO", Description: "embedded macro"}},
				ContentHash: "abc",
			},
			wantHash: "abc",
		},
		{
			name: "threat rejects",
			verdict: model.Verdict{
				ThreatDetected: true,
				Threats:        []model.ThreatInfo{{Type: "EICAR", Description: "test signature"}},
			},
			wantReject: true,
			wantHash:   ContentHash(payload),
		},
		{
			name:        "scan failure is unavailable",
			scanErr:     errors.New("connection refused"),
			wantUnavail: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := new(mocks.MockScanner)
			s.On("Scan", ctx, payload, "a.txt").Return(tt.verdict, tt.scanErr).Once()
			g := NewGate(s, 0, logger.Nop())

			v, err := g.Check(ctx, payload, "a.txt")

			switch {
			case tt.wantReject:
				var rej *RejectionError
				require.True(t, errors.As(err, &rej))
				assert.Equal(t, tt.verdict.Threats, rej.Threats)
				assert.Contains(t, err.Error(), "EICAR=test signature")
			case tt.wantUnavail:
				assert.ErrorIs(t, err, ErrUnavailable)
			default:
				require.NoError(t, err)
			}
			if !tt.wantUnavail {
				assert.Equal(t, tt.wantHash, v.ContentHash)
			}
			s.AssertExpectations(t)
		})
	}
}

func TestGate_MemoizesVerdictButReappliesPolicy(t *testing.T) {
	ctx := context.Background()
	payload := []byte("malicious")
	s := new(mocks.MockScanner)
	s.On("Scan", ctx, payload, "first.exe").
		Return(model.Verdict{ThreatDetected: true, Threats: []model.ThreatInfo{{Type: "X"}}}, nil).
		Once()

	g := NewGate(s, time.Minute, logger.Nop())

	_, err1 := g.Check(ctx, payload, "first.exe")
	_, err2 := g.Check(ctx, payload, "first.exe")

	var rej *RejectionError
	require.True(t, errors.As(err1, &rej))
	require.True(t, errors.As(err2, &rej))
	assert.Equal(t, "first.exe", rej.Filename)
	s.AssertNumberOfCalls(t, "Scan", 1)
}

func TestGate_VerdictIsScopedToFilename(t *testing.T) {
	ctx := context.Background()
	payload := []byte("MZ\x90\x00 same bytes")
	s := new(mocks.MockScanner)
	s.On("Scan", ctx, payload, "readme.txt").Return(model.Verdict{}, nil).Once()
	s.On("Scan", ctx, payload, "evil.exe").
		Return(model.Verdict{ThreatDetected: true, Threats: []model.ThreatInfo{{Type: "EXECUTABLE", Description: "pe header"}}}, nil).
		Once()

	g := NewGate(s, time.Minute, logger.Nop())

	_, err := g.Check(ctx, payload, "readme.txt")
	require.NoError(t, err)

	_, err = g.Check(ctx, payload, "evil.exe")
	var rej *RejectionError
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, "evil.exe", rej.Filename)

	_, err = g.Check(ctx, payload, "readme.txt")
	require.NoError(t, err)

	s.AssertNumberOfCalls(t, "Scan", 2)
	s.AssertExpectations(t)
}

func TestRiskScore(t *testing.T) {
	assert.Equal(t, RiskScoreThreat, RiskScore(model.Verdict{ThreatDetected: true, Suspicious: true}))
	assert.Equal(t, RiskScoreSuspicious, RiskScore(model.Verdict{Suspicious: true}))
	assert.Equal(t, RiskScoreBaseline, RiskScore(model.Verdict{}))
	assert.Greater(t, RiskScoreSuspicious, RiskScoreBaseline)
}

func TestContentHash(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", ContentHash(nil))
}
