package domain

import "time"

// QuestionType tags the closed set of supported trivia question shapes.
type QuestionType string

const (
	MultipleChoice   QuestionType = "multiple_choice"
	ImageQuestion    QuestionType = "image_question"
	AudioQuestion    QuestionType = "audio_question"
	NumericAnswer    QuestionType = "numeric_answer"
	FillInTheBlank   QuestionType = "fill_in_the_blank"
	OrderedList      QuestionType = "ordered_list"
	PickOddOneOut    QuestionType = "pick_odd_one_out"
	NoSpecificAnswer QuestionType = "no_specific_answer"
)

// HasChoiceList reports whether clients receive a pre-built answer list for this type.
func (t QuestionType) HasChoiceList() bool {
	switch t {
	case MultipleChoice, ImageQuestion, AudioQuestion, PickOddOneOut:
		return true
	}
	return false
}

// Question is an immutable trivia item drawn from the question bank.
// CorrectAnswer holds the scalar answer; CorrectOrder holds the expected
// sequence for ordered_list questions.
type Question struct {
	ID               string              `json:"id"`
	Type             QuestionType        `json:"type"`
	Category         string              `json:"category,omitempty"`
	Prompt           string              `json:"prompt"`
	CorrectAnswer    string              `json:"correct_answer,omitempty"`
	CorrectOrder     []string            `json:"correct_order,omitempty"`
	IncorrectAnswers []string            `json:"incorrect_answers,omitempty"`
	RangeMin         *float64            `json:"acceptable_range_min,omitempty"`
	RangeMax         *float64            `json:"acceptable_range_max,omitempty"`
	Aliases          map[string][]string `json:"aliases,omitempty"`
	Points           int                 `json:"points"`
	MediaURL         string              `json:"media_url,omitempty"`
}

// ClientQuestion is the participant-safe projection of a Question: the
// correct answer is stripped, and choice-style types carry a shuffled
// answer list instead.
type ClientQuestion struct {
	ID       string       `json:"id"`
	Type     QuestionType `json:"type"`
	Category string       `json:"category,omitempty"`
	Prompt   string       `json:"prompt"`
	Answers  []string     `json:"answers"`
	Points   int          `json:"points"`
	MediaURL string       `json:"media_url,omitempty"`
}

// Player is a participant within a room. Score may go negative under
// penalty scoring.
type Player struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// RoundAnswer records a player's submission for the active question.
// ElapsedMs is server-computed from the question start; ClientElapsedMs
// keeps the client-reported value for diagnostics only.
type RoundAnswer struct {
	Value           any   `json:"answer"`
	ElapsedMs       int64 `json:"timeTaken"`
	ClientElapsedMs int64 `json:"clientTimeTaken,omitempty"`
	Wager           int   `json:"wager,omitempty"`
}

// RoundResult summarizes one player's outcome for a resolved question.
type RoundResult struct {
	Answered        bool  `json:"answered"`
	SubmittedAnswer any   `json:"submittedAnswer"`
	Correct         bool  `json:"correct"`
	PointsAwarded   int   `json:"pointsAwarded"`
	TimeTakenMs     int64 `json:"timeTaken"`
	TotalScore      int   `json:"totalScore"`
}

// ChatMessage is a single entry in a room's bounded chat history.
type ChatMessage struct {
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Kind      string    `json:"type"` // "group" or "private"
	TargetID  string    `json:"targetPlayerId,omitempty"`
}

// RoomState names a phase of the round progression state machine.
type RoomState string

const (
	StateWaitingForPlayers RoomState = "waiting_for_players"
	StateStartingGame      RoomState = "starting_game"
	StateQuestionActive    RoomState = "question_active"
	StateRevealingAnswer   RoomState = "revealing_answer"
	StateWaitingForHost    RoomState = "waiting_for_host_advance"
	StateGameOver          RoomState = "game_over"
)
