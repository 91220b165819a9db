package mcptools

// --- MCP Tool Input/Output Types ---
// The MCP Go SDK generates each tool's JSON schema from these structs.

// AnalyzeProblemInput is the input for the analyze_problem MCP tool.
type AnalyzeProblemInput struct {
	ID            string   `json:"id,omitempty" jsonschema:"problem identifier (default: a generated UUID)"`
	Description   string   `json:"description" jsonschema:"the problem statement to analyze"`
	Context       string   `json:"context,omitempty" jsonschema:"background information about the problem"`
	Constraints   []string `json:"constraints,omitempty" jsonschema:"hard limits the solution must respect"`
	Goals         []string `json:"goals,omitempty" jsonschema:"outcomes the solution should achieve"`
	Complexity    string   `json:"complexity,omitempty" jsonschema:"low, medium or high"`
	Urgency       string   `json:"urgency,omitempty" jsonschema:"low, medium or high"`
	Streams       []string `json:"streams,omitempty" jsonschema:"stream kinds to run (default: all four). Values: methodical, divergent, skeptical, integrative"`
	PerTaskMillis int      `json:"perTaskMillis,omitempty" jsonschema:"per-stream timeout in milliseconds (default: configured value)"`
	TotalMillis   int      `json:"totalMillis,omitempty" jsonschema:"whole-batch timeout in milliseconds (default: configured value)"`
}

// AnalyzeProblemOutput is the result of the analyze_problem MCP tool.
type AnalyzeProblemOutput struct {
	ProblemID       string            `json:"problemId"`
	Conclusion      string            `json:"conclusion"`
	Confidence      float64           `json:"confidence"`
	Quality         float64           `json:"quality"`
	StreamsUsed     []string          `json:"streamsUsed"`
	Streams         []StreamOutcome   `json:"streams"`
	Recommendations []string          `json:"recommendations"`
	Conflicts       []ConflictSummary `json:"conflicts"`
	Report          string            `json:"report" jsonschema:"the full analysis rendered as Markdown"`
}

// StreamOutcome reports how one stream finished.
type StreamOutcome struct {
	StreamID string `json:"streamId"`
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
}

// ConflictSummary is a flattened conflict for tool output.
type ConflictSummary struct {
	ID                string   `json:"id"`
	Type              string   `json:"type"`
	Severity          string   `json:"severity"`
	Sources           []string `json:"sources"`
	Description       string   `json:"description"`
	RecommendedAction string   `json:"recommendedAction,omitempty"`
}

// ListConflictPatternsInput is the input for the list_conflict_patterns MCP tool.
type ListConflictPatternsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of patterns (default: all)"`
}

// ListConflictPatternsOutput is the result of the list_conflict_patterns MCP tool.
type ListConflictPatternsOutput struct {
	Patterns []PatternSummary `json:"patterns"`
	Total    int              `json:"total"`
}

// PatternSummary is a flattened conflict pattern for tool output.
type PatternSummary struct {
	Type        string   `json:"type"`
	Sources     []string `json:"sources"`
	Frequency   int      `json:"frequency"`
	SuccessRate float64  `json:"successRate"`
	LastSeen    string   `json:"lastSeen"`
}

// RecordResolutionInput is the input for the record_resolution MCP tool.
type RecordResolutionInput struct {
	Type     string   `json:"type" jsonschema:"conflict type: factual, predictive, logical, evaluative or methodological"`
	Sources  []string `json:"sources" jsonschema:"the two stream IDs that disagreed"`
	Resolved bool     `json:"resolved" jsonschema:"whether the conflict was settled successfully"`
}

// RecordResolutionOutput is the result of the record_resolution MCP tool.
type RecordResolutionOutput struct {
	Pattern PatternSummary `json:"pattern"`
}
