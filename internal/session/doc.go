// Package session assembles study sessions from a card pool and drives one
// session to completion.
//
// Builder picks and orders cards for a sitting. Runner owns an immutable copy
// of that ordered list plus an index into it and moves through
// Selecting -> Presenting -> Revealed -> (answer) -> Selecting ... -> Complete,
// calling the srs scheduler on every answer. Nothing in this package performs
// I/O; callers persist the cards returned by Runner.AnswerCard.
package session
