package classifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"docingest/internal/classifier/mocks"
	"docingest/internal/logger"
	"docingest/internal/model"
)

func TestAdapter_Classify(t *testing.T) {
	payload := []byte("call me at 0912345678")

	tests := []struct {
		name       string
		spans      []model.Span
		err        error
		wantStatus string
		wantSpans  int
	}{
		{
			name:       "findings",
			spans:      []model.Span{{Type: "PHONE", Value: "0912345678", Start: 11, End: 21}},
			wantStatus: model.ClassificationFound,
			wantSpans:  1,
		},
		{
			name:       "empty result",
			spans:      []model.Span{},
			wantStatus: model.ClassificationNone,
		},
		{
			name:       "failure is absorbed",
			err:        errors.New("connection reset"),
			wantStatus: model.ClassificationDegraded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := new(mocks.MockClassifier)
			if tt.err != nil {
				c.On("Classify", mock.Anything, payload, "a.pdf").Return(nil, tt.err)
			} else {
				c.On("Classify", mock.Anything, payload, "a.pdf").Return(tt.spans, nil)
			}
			a := NewAdapter(c, time.Second, logger.Nop())

			res := a.Classify(context.Background(), payload, "a.pdf")

			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Len(t, res.Spans, tt.wantSpans)
			if tt.err != nil {
				assert.ErrorIs(t, res.Err, tt.err)
			} else {
				assert.NoError(t, res.Err)
			}
			c.AssertExpectations(t)
		})
	}
}

func TestAdapter_ClassifyAppliesTimeout(t *testing.T) {
	c := new(mocks.MockClassifier)
	c.On("Classify", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), mock.Anything, mock.Anything).Return(nil, context.DeadlineExceeded)

	res := NewAdapter(c, 50*time.Millisecond, logger.Nop()).Classify(context.Background(), []byte("x"), "x")

	assert.Equal(t, model.ClassificationDegraded, res.Status)
	c.AssertExpectations(t)
}
