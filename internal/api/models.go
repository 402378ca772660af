package api

// RunRequest is the body of POST /api/v1/run.
type RunRequest struct {
	// XCCPrice is the carbon-credit price in $/tCO2e. Omitted means the
	// baseline scenario with no carbon policy.
	XCCPrice *float64 `json:"xcc_price,omitempty"`

	// Persist stores the completed run when a database is configured.
	Persist bool `json:"persist,omitempty"`
}

// RunResponse carries one completed run.
type RunResponse struct {
	// RunID is set only when the run was persisted.
	RunID string `json:"run_id,omitempty"`

	ModelVersion string               `json:"model_version"`
	Parameters   map[string]float64   `json:"parameters"`
	Times        []float64            `json:"times"`
	Series       map[string][]float64 `json:"series"`
}

// DashboardResponse carries a baseline run and a priced run side by side,
// the data contract behind the comparison dashboard.
type DashboardResponse struct {
	ModelVersion string      `json:"model_version"`
	XCCPrice     float64     `json:"xcc_price"`
	Baseline     RunResponse `json:"baseline"`
	Priced       RunResponse `json:"priced"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail is a machine-readable code plus a human-readable message.
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
