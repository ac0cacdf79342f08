package domain

import "fmt"

// Progression modes.
const (
	ProgressionManual   = "manual"
	ProgressionAuto     = "auto"
	ProgressionSemiAuto = "semi_auto"
)

// Answer feedback modes.
const (
	FeedbackNone          = "no_feedback"
	FeedbackAfterQuestion = "show_after_question"
)

// Points availability modes.
const (
	PointsNone         = "none"
	PointsOrganizerSet = "organizer_set"
	PointsBetWager     = "bet_wager"
)

// Scoring modes.
const (
	ScoringAllOrNothing    = "all_or_nothing"
	ScoringCountdown       = "countdown"
	ScoringCloseButNotOver = "close_but_not_over"
	ScoringBadChoices      = "bad_choices_consequences"
	ScoringNone            = "none"
)

// Modifiers are declared configuration hooks with no scoring effect yet.
type Modifiers struct {
	BonusRound        bool `json:"bonusRound" yaml:"bonusRound"`
	StreakBonus       bool `json:"streakBonus" yaml:"streakBonus"`
	DoublePointsRound bool `json:"doublePointsRound" yaml:"doublePointsRound"`
}

// GameConfig is the per-room configuration, resolved once at room creation
// and immutable for the room's lifetime.
type GameConfig struct {
	ProgressionMode          string    `json:"progressionMode" yaml:"progressionMode"`
	AnswerFeedback           string    `json:"answerFeedback" yaml:"answerFeedback"`
	PointsAvailable          string    `json:"pointsAvailable" yaml:"pointsAvailable"`
	PointsScoring            string    `json:"pointsScoring" yaml:"pointsScoring"`
	RoundDurationMs          int64     `json:"roundDuration" yaml:"roundDuration"`
	QuestionCount            int       `json:"questionCount" yaml:"questionCount"`
	QuestionCategories       []string  `json:"questionCategories" yaml:"questionCategories"`
	DurationBetweenQuestions int64     `json:"durationBetweenQuestions" yaml:"durationBetweenQuestions"`
	Modifiers                Modifiers `json:"modifiers" yaml:"modifiers"`
}

// DefaultGameConfig returns the documented defaults; host overrides are
// applied by unmarshaling the override payload on top of this value.
func DefaultGameConfig() GameConfig {
	return GameConfig{
		ProgressionMode:          ProgressionAuto,
		AnswerFeedback:           FeedbackAfterQuestion,
		PointsAvailable:          PointsOrganizerSet,
		PointsScoring:            ScoringAllOrNothing,
		RoundDurationMs:          20000,
		QuestionCount:            10,
		QuestionCategories:       nil,
		DurationBetweenQuestions: 5000,
	}
}

// Validate rejects configurations outside the documented option set.
func (c GameConfig) Validate() error {
	switch c.ProgressionMode {
	case ProgressionManual, ProgressionAuto, ProgressionSemiAuto:
	default:
		return fmt.Errorf("invalid progressionMode %q", c.ProgressionMode)
	}
	switch c.AnswerFeedback {
	case FeedbackNone, FeedbackAfterQuestion:
	default:
		return fmt.Errorf("invalid answerFeedback %q", c.AnswerFeedback)
	}
	switch c.PointsAvailable {
	case PointsNone, PointsOrganizerSet, PointsBetWager:
	default:
		return fmt.Errorf("invalid pointsAvailable %q", c.PointsAvailable)
	}
	switch c.PointsScoring {
	case ScoringAllOrNothing, ScoringCountdown, ScoringCloseButNotOver, ScoringBadChoices, ScoringNone:
	default:
		return fmt.Errorf("invalid pointsScoring %q", c.PointsScoring)
	}
	if c.RoundDurationMs <= 0 {
		return fmt.Errorf("roundDuration must be positive, got %d", c.RoundDurationMs)
	}
	if c.QuestionCount < 1 {
		return fmt.Errorf("questionCount must be at least 1, got %d", c.QuestionCount)
	}
	if c.DurationBetweenQuestions < 0 {
		return fmt.Errorf("durationBetweenQuestions must not be negative, got %d", c.DurationBetweenQuestions)
	}
	return nil
}

// ScoringDisabled reports whether every answer must yield zero points.
func (c GameConfig) ScoringDisabled() bool {
	return c.PointsAvailable == PointsNone || c.PointsScoring == ScoringNone
}
