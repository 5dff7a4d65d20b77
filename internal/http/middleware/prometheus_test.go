package middleware

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	promMiddleware, err := NewPrometheusMiddleware(reg)
	if err != nil {
		t.Fatalf("failed to create middleware: %v", err)
	}

	app := fiber.New()
	app.Use(promMiddleware.Handler())

	app.Post("/documents", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})
	app.Delete("/documents/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/documents/:id", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "missing")
	})
	app.Get("/panic", func(c *fiber.Ctx) error {
		return errors.New("plain error")
	})

	requests := []struct {
		method, target string
		labels         []string
	}{
		{"POST", "/documents", []string{"POST", "/documents", "201"}},
		{"DELETE", "/documents/abc", []string{"DELETE", "/documents/:id", "204"}},
		{"GET", "/documents/abc", []string{"GET", "/documents/:id", "404"}},
		{"GET", "/panic", []string{"GET", "/panic", "500"}},
	}

	for _, r := range requests {
		app.Test(httptest.NewRequest(r.method, r.target, nil))
		if got := testutil.ToFloat64(promMiddleware.requestCount.WithLabelValues(r.labels...)); got != 1 {
			t.Errorf("%s %s: expected count 1 for %v, got %f", r.method, r.target, r.labels, got)
		}
	}
}

func TestPrometheusMiddleware_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPrometheusMiddleware(reg); err != nil {
		t.Fatalf("failed to create middleware: %v", err)
	}
	if _, err := NewPrometheusMiddleware(reg); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestPrometheusMiddleware_ExcludeMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	promMiddleware, err := NewPrometheusMiddleware(reg)
	if err != nil {
		t.Fatalf("failed to create middleware: %v", err)
	}

	app := fiber.New()
	app.Use(promMiddleware.Handler())

	app.Get("/metrics", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/metrics", nil)
	app.Test(req)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	for _, mf := range mfs {
		if mf.GetName() == "http_requests_total" || mf.GetName() == "http_request_duration_seconds" {
			if len(mf.GetMetric()) > 0 {
				t.Errorf("expected 0 samples for %s, got %d", mf.GetName(), len(mf.GetMetric()))
			}
		}
	}
}

func TestPrometheusMiddleware_PathPattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	promMiddleware, err := NewPrometheusMiddleware(reg)
	if err != nil {
		t.Fatalf("failed to create middleware: %v", err)
	}

	app := fiber.New()
	app.Use(promMiddleware.Handler())

	app.Get("/documents/:id/download", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/documents/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	app.Test(httptest.NewRequest("GET", "/documents/123", nil))
	app.Test(httptest.NewRequest("GET", "/documents/456/download", nil))

	// Should use /documents/:id as label, not /documents/123
	count := testutil.ToFloat64(promMiddleware.requestCount.WithLabelValues("GET", "/documents/:id", "200"))
	if count != 1 {
		t.Errorf("expected count 1 for pattern /documents/:id, got %f", count)
	}

	countDownload := testutil.ToFloat64(promMiddleware.requestCount.WithLabelValues("GET", "/documents/:id/download", "200"))
	if countDownload != 1 {
		t.Errorf("expected count 1 for pattern /documents/:id/download, got %f", countDownload)
	}

	if n := testutil.CollectAndCount(promMiddleware.requestDuration); n != 2 {
		t.Errorf("expected 2 histogram series, got %d", n)
	}
}
