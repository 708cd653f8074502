package core

// Request types

type PositionRequest struct {
	Record string `json:"record" validate:"required,max=64"`
}

type MovePayload struct {
	From int `json:"from" validate:"min=0,max=15"`
	To   int `json:"to" validate:"min=0,max=15"`
}

type ApplyRequest struct {
	Record string      `json:"record" validate:"required,max=64"`
	Move   MovePayload `json:"move"`
}

type AnalyzeRequest struct {
	Record string `json:"record" validate:"required,max=64"`
	Depth  int    `json:"depth" validate:"min=0,max=32"`
}

// Response types

type MovesResponse struct {
	Record  string        `json:"record"`
	Turn    string        `json:"turn"`
	InCheck bool          `json:"inCheck"`
	Moves   []MovePayload `json:"moves"`
}

type ClassifyResponse struct {
	Record   string `json:"record"`
	Terminal bool   `json:"terminal"`
	Outcome  string `json:"outcome,omitempty"` // "w", "b" or "d"
	Reason   string `json:"reason,omitempty"`
}

type ApplyResponse struct {
	Record   string `json:"record"`
	Board    string `json:"board"` // ASCII representation
	Terminal bool   `json:"terminal"`
	Outcome  string `json:"outcome,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

type AnalysisResponse struct {
	Record string        `json:"record"`
	Depth  int           `json:"depth"`
	Score  int           `json:"score"`
	Line   []MovePayload `json:"line"`
	Nodes  int           `json:"nodes"`
	Source string        `json:"source"` // "cache", "store" or "search"
}

type JobResponse struct {
	JobID    string            `json:"jobId"`
	Status   string            `json:"status"`
	Analysis *AnalysisResponse `json:"analysis,omitempty"`
	Error    string            `json:"error,omitempty"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Time     int64  `json:"time"`
	Storage  string `json:"storage"` // "ok", "degraded" or "disabled"
	Searches int64  `json:"searches"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}
