// Package events decouples the study service from whatever reacts to a
// finished session. The service emits a SessionCompletedEvent through an
// EventEmitter; handlers such as the report recorder subscribe to it.
package events
