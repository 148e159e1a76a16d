package emit

// Result records what a generator did with its artifacts.
type Result struct {
	Written   []string
	Unchanged []string
	Removed   []string
	// Skipped is set when the generator had nothing to emit; Reason says why.
	Skipped bool
	Reason  string
}

// Track records the outcome of a WriteFile call.
func (r *Result) Track(path string, wrote bool) {
	if wrote {
		r.Written = append(r.Written, path)
		return
	}
	r.Unchanged = append(r.Unchanged, path)
}

// Skip marks the result as skipped.
func (r *Result) Skip(reason string) *Result {
	r.Skipped = true
	r.Reason = reason
	return r
}
