package model

// ThreatInfo describes one threat or warning raised by a scan.
type ThreatInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Severity    string `json:"severity,omitempty"`
}

// Verdict is the structured outcome of a content scan.
type Verdict struct {
	ThreatDetected bool         `json:"threat_detected"`
	Suspicious     bool         `json:"suspicious"`
	Threats        []ThreatInfo `json:"threats"`
	Warnings       []ThreatInfo `json:"warnings"`
	ContentHash    string       `json:"file_hash"`
}

// Clean reports a verdict with neither threats nor suspicion.
func (v Verdict) Clean() bool {
	return !v.ThreatDetected && !v.Suspicious
}

// Span is one typed finding returned by the sensitive-information classifier.
type Span struct {
	Type  string `json:"type"`
	Value string `json:"value"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}
