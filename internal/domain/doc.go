// Package domain contains the core study entities: cards, their learning
// states and the grades a learner assigns while reviewing. It has no
// knowledge of storage or delivery; the scheduling rules that move a card
// between states live in the srs subpackage.
package domain
