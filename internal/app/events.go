package app

import "quizroom/internal/domain"

// Outbound event payloads. Field names follow the wire protocol consumed
// by game clients.

type playerJoinedPayload struct {
	domain.Player
	NewPlayerName string       `json:"newPlayerName"`
	RoomState     RoomSnapshot `json:"roomState"`
}

type playerLeftPayload struct {
	PlayerID     string       `json:"playerId"`
	PlayerName   string       `json:"playerName"`
	KickedByHost bool         `json:"kickedByHost,omitempty"`
	RoomState    RoomSnapshot `json:"roomState"`
}

type stateUpdatePayload struct {
	State domain.RoomState `json:"state"`
}

type newQuestionPayload struct {
	Question       domain.ClientQuestion `json:"question"`
	QuestionNumber int                   `json:"questionNumber"`
	TotalQuestions int                   `json:"totalQuestions"`
	GameConfig     domain.GameConfig     `json:"gameConfig"`
}

type playerAnsweredPayload struct {
	PlayerID string `json:"playerId"`
}

type roundResultsPayload struct {
	Question       domain.Question               `json:"question"`
	CorrectAnswer  any                           `json:"correctAnswer"`
	Results        map[string]domain.RoundResult `json:"results"`
	UpdatedPlayers []domain.Player               `json:"updatedPlayers"`
}

type gameOverPayload struct {
	FinalScores []domain.Player   `json:"finalScores"`
	GameConfig  domain.GameConfig `json:"gameConfig"`
}

type chatPayload struct {
	domain.ChatMessage
	IsOutgoing    bool   `json:"isOutgoing,omitempty"`
	IsIncoming    bool   `json:"isIncoming,omitempty"`
	RecipientName string `json:"recipientName,omitempty"`
}

type kickedPayload struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
}
