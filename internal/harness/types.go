package harness

// Result is the outcome of running one vector.
type Result struct {
	Name string `json:"name"`

	// Pass is true when every expectation matched.
	Pass bool `json:"pass"`

	// Canonical is the canonical text; empty when parsing failed.
	Canonical string `json:"canonical,omitempty"`

	// ErrorCode is the code of the fatal parse error, if any.
	ErrorCode string `json:"error_code,omitempty"`

	// Codes are the validation error codes left after repair.
	Codes []string `json:"codes,omitempty"`

	// Repairs counts applied repair-tier fixes.
	Repairs int `json:"repairs"`

	// Normalizations lists the warning codes the reader reported.
	Normalizations []string `json:"normalizations,omitempty"`

	// Projection results, when the vector sets a mode.
	Output  string   `json:"output,omitempty"`
	Lossy   bool     `json:"lossy,omitempty"`
	Omitted []string `json:"omitted,omitempty"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(name string) *Result {
	return &Result{
		Name:   name,
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds an assertion failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
