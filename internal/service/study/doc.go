// Package study runs study sessions for the HTTP API.
//
// It loads a deck's cards, builds a session with the configured limits, keeps
// the session runner in an in-memory registry while the learner works through
// it, writes every rescheduled card back to the store and, when the session
// completes, publishes a SessionCompletedEvent. ReportRecorder subscribes to
// that event and stores the report.
package study
