package ports

// TriageRunner drives the triage pipeline for the life of the process.
type TriageRunner interface {
	// Start begins polling in the background.
	Start() error

	// Stop halts polling and waits for the in-flight cycle to finish.
	Stop() error
}
