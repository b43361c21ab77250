package harness

// CaseResult is the outcome of one case.
type CaseResult struct {
	Name      string   `json:"name"`
	Transform string   `json:"transform"`
	Pass      bool     `json:"pass"`
	Got       any      `json:"got,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

// Result is the outcome of a scenario.
type Result struct {
	// Pass is true when every case passed.
	Pass bool `json:"pass"`

	// Cases holds one entry per scenario case, in order.
	Cases []CaseResult `json:"cases"`

	// Errors collects the failure messages of all cases.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Cases:  []CaseResult{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddCase records a case outcome, copying its failures into Errors.
func (r *Result) AddCase(c CaseResult) {
	r.Cases = append(r.Cases, c)
	for _, e := range c.Errors {
		r.AddError(c.Name + ": " + e)
	}
}

// Passed counts the passing cases.
func (r *Result) Passed() int {
	n := 0
	for _, c := range r.Cases {
		if c.Pass {
			n++
		}
	}
	return n
}
