// Package deck classifies cards by learning stage and aggregates deck-level
// counts. Everything here is a read over a card slice; nothing is mutated.
package deck
