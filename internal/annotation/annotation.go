// Package annotation composes the audit string stored with every ingested document.
//
// Layout, segments joined by "; ":
//
//	<caller annotation>; Detected: T=V; T=V; MALWARE_SCAN: CLEAN [Hash: <sha256>]
//
// The caller segment and the Detected segment are omitted when empty. A suspicious verdict
// renders as "MALWARE_SCAN: SUSPICIOUS - Warnings: T=D; T=D".
package annotation

import (
	"strings"

	"docingest/internal/model"
	"docingest/internal/sanitize"
)

const (
	detectedPrefix = "Detected: "
	scanPrefix     = "MALWARE_SCAN: "
	separator      = "; "
)

// Build returns the sanitized annotation for one ingestion.
func Build(caller string, spans []model.Span, v model.Verdict) string {
	var segments []string

	if strings.TrimSpace(caller) != "" {
		segments = append(segments, strings.TrimSpace(caller))
	}

	if len(spans) > 0 {
		found := make([]string, 0, len(spans))
		for _, s := range spans {
			found = append(found, s.Type+"="+s.Value)
		}
		segments = append(segments, detectedPrefix+strings.Join(found, separator))
	}

	segments = append(segments, scanSummary(v))

	out := strings.Join(segments, separator) + " [Hash: " + v.ContentHash + "]"
	return sanitize.Text(out)
}

func scanSummary(v model.Verdict) string {
	if v.Clean() {
		return scanPrefix + "CLEAN"
	}
	s := scanPrefix + "SUSPICIOUS"
	if len(v.Warnings) > 0 {
		warnings := make([]string, 0, len(v.Warnings))
		for _, w := range v.Warnings {
			warnings = append(warnings, w.Type+"="+w.Description)
		}
		s += " - Warnings: " + strings.Join(warnings, separator)
	}
	return s
}
