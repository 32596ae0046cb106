package analyzer

// CancelToken requests cancellation after a fixed number of polls. It
// exists to test an analyzer's own cancellation handling; the harness
// never cancels itself mid-operation.
type CancelToken struct {
	remaining int
	fired     bool
}

// CancelAfter returns a token that starts reporting cancellation on the
// n-th CancellationRequested call.
func CancelAfter(n int) *CancelToken {
	return &CancelToken{remaining: n}
}

// CancellationRequested burns one poll and reports whether cancellation
// has been requested. Once it fires it stays fired.
func (t *CancelToken) CancellationRequested() bool {
	if t == nil {
		return false
	}
	if t.fired {
		return true
	}
	t.remaining--
	if t.remaining <= 0 {
		t.fired = true
	}
	return t.fired
}

// Fired reports whether the token has requested cancellation.
func (t *CancelToken) Fired() bool {
	return t != nil && t.fired
}
