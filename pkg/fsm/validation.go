package fsm

// ValidationResult accumulates the findings of static configuration
// analysis. Checks never short-circuit, so Errors lists every defect found,
// in check order.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// OK reports whether the pass found no defects.
func (r ValidationResult) OK() bool {
	return r.Valid
}

// Invalid returns a result carrying the given defects. An empty list is
// treated as valid.
func Invalid(errors []string) ValidationResult {
	return ValidationResult{Valid: len(errors) == 0, Errors: errors}
}
