package session

import (
	"math"
	"time"

	"github.com/phrazzld/scry-study/internal/domain"
)

// Report summarizes a completed session for display or persistence.
type Report struct {
	CardsStudied     int                  `json:"cards_studied"`
	TotalAnswers     int                  `json:"total_answers"`
	CorrectAnswers   int                  `json:"correct_answers"`
	Accuracy         float64              `json:"accuracy"` // percent, 0 when nothing was answered
	AnswerBreakdown  map[domain.Grade]int `json:"answer_breakdown"`
	NewCardsLearned  int                  `json:"new_cards_learned"`
	LongestStreak    int                  `json:"longest_streak"`
	StartedAt        time.Time            `json:"started_at"`
	EndedAt          time.Time            `json:"ended_at"`
	StudyTime        time.Duration        `json:"study_time"`
	StudyTimeMinutes int                  `json:"study_time_minutes"`
	Answers          []Answer             `json:"answers"`
}

func buildReport(
	initial, final []domain.Card,
	stats Stats,
	startedAt, endedAt time.Time,
	hardCountsAsCorrect bool,
) Report {
	breakdown := make(map[domain.Grade]int)
	correct := 0
	for _, a := range stats.Answers {
		breakdown[a.Grade]++
		if isCorrect(a.Grade, hardCountsAsCorrect) {
			correct++
		}
	}

	var accuracy float64
	if len(stats.Answers) > 0 {
		accuracy = float64(correct) / float64(len(stats.Answers)) * 100
	}

	learned := 0
	for i := range initial {
		if initial[i].State == domain.StateNew && final[i].State != domain.StateNew {
			learned++
		}
	}

	studyTime := endedAt.Sub(startedAt)
	if studyTime < 0 {
		studyTime = 0
	}

	return Report{
		CardsStudied:     len(final),
		TotalAnswers:     len(stats.Answers),
		CorrectAnswers:   correct,
		Accuracy:         accuracy,
		AnswerBreakdown:  breakdown,
		NewCardsLearned:  learned,
		LongestStreak:    stats.LongestStreak,
		StartedAt:        startedAt,
		EndedAt:          endedAt,
		StudyTime:        studyTime,
		StudyTimeMinutes: int(math.Round(studyTime.Minutes())),
		Answers:          stats.Answers,
	}
}

func (r Report) clone() Report {
	breakdown := make(map[domain.Grade]int, len(r.AnswerBreakdown))
	for g, n := range r.AnswerBreakdown {
		breakdown[g] = n
	}
	r.AnswerBreakdown = breakdown
	r.Answers = append([]Answer(nil), r.Answers...)
	return r
}
