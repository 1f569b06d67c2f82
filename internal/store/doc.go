// Package store defines the persistence interfaces for cards and session
// reports, the shared store errors, and the transaction helper used by the
// database-backed implementations.
package store
