package app

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"quizroom/internal/domain"
)

// Score resolves one player's submission against a question under the
// room's configuration. It is a pure function of its inputs: correctness
// and the point delta come back, nothing is mutated. A nil answer (player
// never submitted) is incorrect and worth zero under every mode.
func Score(cfg domain.GameConfig, q domain.Question, ans *domain.RoundAnswer) (correct bool, points int) {
	if ans == nil {
		return false, 0
	}

	correct, decayed := evaluate(cfg, q, ans)

	if cfg.ScoringDisabled() || q.Type == domain.NoSpecificAnswer {
		return correct, 0
	}

	if !correct {
		if cfg.PointsScoring == domain.ScoringBadChoices {
			return false, -int(math.Round(float64(q.Points) * 0.5))
		}
		return false, 0
	}

	switch cfg.PointsScoring {
	case domain.ScoringCountdown:
		remaining := float64(cfg.RoundDurationMs - ans.ElapsedMs)
		if remaining < 0 {
			remaining = 0
		}
		bonus := float64(q.Points) * 0.5 * remaining / float64(cfg.RoundDurationMs)
		return true, int(math.Round(float64(q.Points) + bonus))
	case domain.ScoringCloseButNotOver:
		if q.Type == domain.NumericAnswer {
			return true, decayed
		}
		return true, q.Points
	default:
		// all_or_nothing and bad_choices_consequences both award full base
		// points on a correct answer.
		return true, q.Points
	}
}

// evaluate determines correctness per question type. For numeric questions
// under close_but_not_over it also returns the linearly decayed point
// value; the second return is meaningless otherwise.
func evaluate(cfg domain.GameConfig, q domain.Question, ans *domain.RoundAnswer) (bool, int) {
	switch q.Type {
	case domain.MultipleChoice, domain.ImageQuestion, domain.AudioQuestion,
		domain.FillInTheBlank, domain.PickOddOneOut:
		return strings.EqualFold(answerString(ans.Value), q.CorrectAnswer), 0

	case domain.NumericAnswer:
		submitted, err1 := strconv.ParseFloat(strings.TrimSpace(answerString(ans.Value)), 64)
		expected, err2 := strconv.ParseFloat(q.CorrectAnswer, 64)
		if err1 != nil || err2 != nil {
			return false, 0
		}
		if cfg.PointsScoring == domain.ScoringCloseButNotOver {
			return scoreNumericRange(q, submitted, expected)
		}
		return submitted == expected, 0

	case domain.OrderedList:
		return matchOrderedList(q, answerList(ans.Value)), 0

	case domain.NoSpecificAnswer:
		// Survey semantics: every submission counts, none scores.
		return true, 0

	default:
		return false, 0
	}
}

// scoreNumericRange applies close_but_not_over: inside the inclusive range
// the answer is correct, with points decaying linearly from full value at
// the range midpoint to zero at either edge.
func scoreNumericRange(q domain.Question, submitted, expected float64) (bool, int) {
	min := expected * 0.9
	max := expected * 1.1
	if expected < 0 {
		min, max = max, min
	}
	if q.RangeMin != nil {
		min = *q.RangeMin
	}
	if q.RangeMax != nil {
		max = *q.RangeMax
	}
	if submitted < min || submitted > max {
		return false, 0
	}
	half := (max - min) / 2
	if half == 0 {
		return true, q.Points
	}
	mid := (min + max) / 2
	frac := 1 - math.Abs(submitted-mid)/half
	points := int(math.Round(float64(q.Points) * frac))
	if points < 0 {
		points = 0
	}
	return true, points
}

// matchOrderedList compares position by position, case-insensitively,
// accepting declared aliases for each expected item. No partial credit.
func matchOrderedList(q domain.Question, submitted []string) bool {
	if len(submitted) == 0 || len(submitted) != len(q.CorrectOrder) {
		return false
	}
	for i, expected := range q.CorrectOrder {
		if strings.EqualFold(submitted[i], expected) {
			continue
		}
		if !aliasMatches(q.Aliases, expected, submitted[i]) {
			return false
		}
	}
	return true
}

// aliasMatches reports whether the alias set declared for the expected
// item contains the submitted token, all comparisons case-insensitive.
func aliasMatches(aliases map[string][]string, expected, submitted string) bool {
	for key, set := range aliases {
		if !strings.EqualFold(key, expected) {
			continue
		}
		for _, alias := range set {
			if strings.EqualFold(submitted, alias) {
				return true
			}
		}
	}
	return false
}

// answerString coerces a decoded JSON answer value to its string form.
func answerString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

// answerList coerces a decoded JSON answer value to a string slice.
func answerList(v any) []string {
	switch val := v.(type) {
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			out = append(out, answerString(item))
		}
		return out
	default:
		return nil
	}
}
