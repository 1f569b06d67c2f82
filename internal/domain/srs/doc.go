// Package srs implements the spaced-repetition scheduler: given a card and a
// grade it computes the card's next learning state, interval and due date.
//
// The algorithm is an SM-2 variant with Anki-style learning steps:
//
//	New/Learning --Again--> Learning (step 0)
//	New/Learning --Hard/Good--> next step, or Review after the last step
//	New/Learning --Easy--> Review (easy interval)
//	Review --Again--> Relearning (lapse)
//	Review --Hard/Good/Easy--> Review (interval grows)
//	Relearning --...--> same as Learning, graduating back to Review
//
// Edge rules:
//   - Hard on a learning step advances like Good.
//   - Easy skips the remaining steps and graduates with the easy interval.
//   - A Hard/Good/Easy review always yields an interval of at least one day,
//     even when the stored interval is 0 or the multiplier rounds it down.
//     Graduated cards never come back the same day.
//
// Everything here is pure and deterministic; time comes from an injected clock.
package srs
