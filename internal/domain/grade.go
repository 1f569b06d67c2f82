package domain

import (
	"encoding"
	"encoding/json"
	"fmt"
	"strings"
)

// Grade is the user's self-reported recall quality for a card.
// The zero value is not a valid grade.
type Grade int

const (
	GradeAgain Grade = iota + 1 // Failed to recall.
	GradeHard                   // Recalled with significant difficulty.
	GradeGood                   // Recalled with some effort.
	GradeEasy                   // Recalled effortlessly.
)

// Grades lists every valid grade in ascending order.
var Grades = [...]Grade{GradeAgain, GradeHard, GradeGood, GradeEasy}

var (
	gradeNames  = [...]string{GradeAgain: "again", GradeHard: "hard", GradeGood: "good", GradeEasy: "easy"}
	gradeByName = map[string]Grade{
		"again": GradeAgain,
		"hard":  GradeHard,
		"good":  GradeGood,
		"easy":  GradeEasy,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = Grade(0)
	_ json.Marshaler           = Grade(0)
	_ json.Unmarshaler         = (*Grade)(nil)
	_ encoding.TextMarshaler   = Grade(0)
	_ encoding.TextUnmarshaler = (*Grade)(nil)
)

// IsValid reports whether g is Again, Hard, Good or Easy.
func (g Grade) IsValid() bool {
	return g >= GradeAgain && g <= GradeEasy
}

// IsCorrect reports whether the grade counts as a successful recall.
// Only Good and Easy do; Hard is a policy decision left to the caller.
func (g Grade) IsCorrect() bool {
	return g == GradeGood || g == GradeEasy
}

// String returns the lowercase grade name. Invalid values render as "Grade(n)".
func (g Grade) String() string {
	if g.IsValid() {
		return gradeNames[g]
	}
	return fmt.Sprintf("Grade(%d)", int(g))
}

// ParseGrade converts a grade name (case-insensitive) into a Grade.
func ParseGrade(name string) (Grade, error) {
	g, ok := gradeByName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidGrade, name)
	}
	return g, nil
}

// MarshalText implements encoding.TextMarshaler.
func (g Grade) MarshalText() ([]byte, error) {
	if !g.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidGrade, int(g))
	}
	return []byte(gradeNames[g]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *Grade) UnmarshalText(text []byte) error {
	v, err := ParseGrade(string(text))
	if err != nil {
		return err
	}
	*g = v
	return nil
}

// MarshalJSON implements json.Marshaler. Grade serializes as a JSON string.
func (g Grade) MarshalJSON() ([]byte, error) {
	text, err := g.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler. Expects a JSON string.
func (g *Grade) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidGrade, data)
	}
	return g.UnmarshalText([]byte(s))
}
