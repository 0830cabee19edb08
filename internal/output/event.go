package output

// Event is a run lifecycle record. Sinks that render the final document
// may ignore events entirely.
//
// Emitted types:
// - run.started
// - run.finished
type Event struct {
	Type     string `json:"type"`
	Repo     string `json:"repo,omitempty"`
	Repos    int    `json:"repos,omitempty"`
	ExitCode int    `json:"exit_code,omitempty"`
	Message  string `json:"message,omitempty"`
}
