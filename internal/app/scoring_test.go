package app_test

import (
	"testing"

	"quizroom/internal/app"
	"quizroom/internal/domain"
)

func floatPtr(v float64) *float64 { return &v }

func baseConfig(scoring string) domain.GameConfig {
	cfg := domain.DefaultGameConfig()
	cfg.PointsScoring = scoring
	return cfg
}

func TestScoreAllOrNothingExactMatch(t *testing.T) {
	cfg := baseConfig(domain.ScoringAllOrNothing)
	q := domain.Question{Type: domain.MultipleChoice, CorrectAnswer: "Paris", Points: 100}

	correct, points := app.Score(cfg, q, &domain.RoundAnswer{Value: "paris"})
	if !correct || points != 100 {
		t.Fatalf("expected case-insensitive match worth 100, got correct=%v points=%d", correct, points)
	}

	correct, points = app.Score(cfg, q, &domain.RoundAnswer{Value: "Lyon"})
	if correct || points != 0 {
		t.Fatalf("expected wrong answer worth 0, got correct=%v points=%d", correct, points)
	}
}

func TestScoreNoAnswerAlwaysZero(t *testing.T) {
	q := domain.Question{Type: domain.MultipleChoice, CorrectAnswer: "Paris", Points: 100}
	for _, scoring := range []string{
		domain.ScoringAllOrNothing,
		domain.ScoringCountdown,
		domain.ScoringCloseButNotOver,
		domain.ScoringBadChoices,
		domain.ScoringNone,
	} {
		correct, points := app.Score(baseConfig(scoring), q, nil)
		if correct || points != 0 {
			t.Fatalf("%s: expected no-answer to score 0, got correct=%v points=%d", scoring, correct, points)
		}
	}
}

func TestScoreDisabledScoring(t *testing.T) {
	q := domain.Question{Type: domain.MultipleChoice, CorrectAnswer: "Paris", Points: 100}

	cfg := baseConfig(domain.ScoringNone)
	correct, points := app.Score(cfg, q, &domain.RoundAnswer{Value: "Paris"})
	if !correct || points != 0 {
		t.Fatalf("scoring none: expected correct but 0 points, got correct=%v points=%d", correct, points)
	}

	cfg = baseConfig(domain.ScoringAllOrNothing)
	cfg.PointsAvailable = domain.PointsNone
	_, points = app.Score(cfg, q, &domain.RoundAnswer{Value: "Paris"})
	if points != 0 {
		t.Fatalf("points none: expected 0 points, got %d", points)
	}
}

func TestScoreCountdownBonus(t *testing.T) {
	cfg := baseConfig(domain.ScoringCountdown)
	cfg.RoundDurationMs = 20000
	q := domain.Question{Type: domain.MultipleChoice, CorrectAnswer: "Paris", Points: 100}

	// Instant answer earns the full 50% bonus.
	_, points := app.Score(cfg, q, &domain.RoundAnswer{Value: "Paris", ElapsedMs: 0})
	if points != 150 {
		t.Fatalf("expected 150 for instant answer, got %d", points)
	}

	// Halfway through the window earns half the bonus.
	_, points = app.Score(cfg, q, &domain.RoundAnswer{Value: "Paris", ElapsedMs: 10000})
	if points != 125 {
		t.Fatalf("expected 125 at half time, got %d", points)
	}

	// An answer recorded after the window still earns base points.
	_, points = app.Score(cfg, q, &domain.RoundAnswer{Value: "Paris", ElapsedMs: 25000})
	if points != 100 {
		t.Fatalf("expected 100 after window, got %d", points)
	}
}

func TestScoreBadChoicesPenalty(t *testing.T) {
	cfg := baseConfig(domain.ScoringBadChoices)
	q := domain.Question{Type: domain.MultipleChoice, CorrectAnswer: "Paris", Points: 100}

	correct, points := app.Score(cfg, q, &domain.RoundAnswer{Value: "Lyon"})
	if correct || points != -50 {
		t.Fatalf("expected -50 penalty, got correct=%v points=%d", correct, points)
	}

	correct, points = app.Score(cfg, q, &domain.RoundAnswer{Value: "Paris"})
	if !correct || points != 100 {
		t.Fatalf("expected full points when correct, got correct=%v points=%d", correct, points)
	}
}

func TestScoreNumericDecayBounds(t *testing.T) {
	cfg := baseConfig(domain.ScoringCloseButNotOver)
	q := domain.Question{
		Type:          domain.NumericAnswer,
		CorrectAnswer: "100",
		RangeMin:      floatPtr(80),
		RangeMax:      floatPtr(120),
		Points:        200,
	}

	// Midpoint of the range earns full value.
	correct, points := app.Score(cfg, q, &domain.RoundAnswer{Value: "100"})
	if !correct || points != 200 {
		t.Fatalf("midpoint: expected 200, got correct=%v points=%d", correct, points)
	}

	// Either edge earns zero but is still marked correct.
	for _, edge := range []string{"80", "120"} {
		correct, points = app.Score(cfg, q, &domain.RoundAnswer{Value: edge})
		if !correct || points != 0 {
			t.Fatalf("edge %s: expected correct with 0 points, got correct=%v points=%d", edge, correct, points)
		}
	}

	// Outside the range is incorrect.
	correct, points = app.Score(cfg, q, &domain.RoundAnswer{Value: "121"})
	if correct || points != 0 {
		t.Fatalf("outside: expected incorrect, got correct=%v points=%d", correct, points)
	}

	// Unparseable submissions are incorrect.
	correct, _ = app.Score(cfg, q, &domain.RoundAnswer{Value: "about a hundred"})
	if correct {
		t.Fatalf("expected unparseable submission to be incorrect")
	}
}

func TestScoreNumericDefaultRange(t *testing.T) {
	cfg := baseConfig(domain.ScoringCloseButNotOver)
	q := domain.Question{Type: domain.NumericAnswer, CorrectAnswer: "100", Points: 100}

	// Without explicit bounds the range defaults to ±10% of the answer.
	correct, points := app.Score(cfg, q, &domain.RoundAnswer{Value: "100"})
	if !correct || points != 100 {
		t.Fatalf("expected exact answer to earn full points, got correct=%v points=%d", correct, points)
	}
	correct, _ = app.Score(cfg, q, &domain.RoundAnswer{Value: "111"})
	if correct {
		t.Fatalf("expected 111 to fall outside the default range")
	}
}

func TestScoreNumericExactOutsideCloseMode(t *testing.T) {
	cfg := baseConfig(domain.ScoringAllOrNothing)
	q := domain.Question{Type: domain.NumericAnswer, CorrectAnswer: "42", Points: 100}

	correct, points := app.Score(cfg, q, &domain.RoundAnswer{Value: "42"})
	if !correct || points != 100 {
		t.Fatalf("expected exact equality to win, got correct=%v points=%d", correct, points)
	}
	correct, _ = app.Score(cfg, q, &domain.RoundAnswer{Value: "42.5"})
	if correct {
		t.Fatalf("expected near-miss to be incorrect outside close_but_not_over")
	}
}

func TestScoreOrderedListAliases(t *testing.T) {
	cfg := baseConfig(domain.ScoringAllOrNothing)
	q := domain.Question{
		Type:         domain.OrderedList,
		CorrectOrder: []string{"a", "b"},
		Aliases:      map[string][]string{"b": {"bee"}},
		Points:       100,
	}

	cases := []struct {
		name      string
		submitted any
		correct   bool
	}{
		{"exact", []string{"a", "b"}, true},
		{"alias case-insensitive", []string{"a", "BEE"}, true},
		{"wrong order", []string{"b", "a"}, false},
		{"length mismatch", []string{"a"}, false},
		{"empty", []string{}, false},
		{"json decoded list", []any{"a", "b"}, true},
	}
	for _, tc := range cases {
		correct, points := app.Score(cfg, q, &domain.RoundAnswer{Value: tc.submitted})
		if correct != tc.correct {
			t.Fatalf("%s: expected correct=%v, got %v", tc.name, tc.correct, correct)
		}
		if tc.correct && points != 100 {
			t.Fatalf("%s: expected 100 points, got %d", tc.name, points)
		}
		if !tc.correct && points != 0 {
			t.Fatalf("%s: expected 0 points, got %d", tc.name, points)
		}
	}
}

func TestScoreSurveyAlwaysCorrectNeverScores(t *testing.T) {
	cfg := baseConfig(domain.ScoringCountdown)
	q := domain.Question{Type: domain.NoSpecificAnswer, Points: 100}

	correct, points := app.Score(cfg, q, &domain.RoundAnswer{Value: "anything"})
	if !correct || points != 0 {
		t.Fatalf("expected survey answer correct with 0 points, got correct=%v points=%d", correct, points)
	}
}

func TestScoreUnknownTypeIncorrect(t *testing.T) {
	cfg := baseConfig(domain.ScoringAllOrNothing)
	q := domain.Question{Type: domain.QuestionType("match_items"), CorrectAnswer: "x", Points: 100}

	correct, points := app.Score(cfg, q, &domain.RoundAnswer{Value: "x"})
	if correct || points != 0 {
		t.Fatalf("expected unknown type to be incorrect, got correct=%v points=%d", correct, points)
	}
}
