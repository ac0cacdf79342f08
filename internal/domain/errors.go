package domain

import "errors"

var (
	// ErrRoomNotFound is returned when a room code does not resolve to a live room.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomNotJoinable is returned when joining a room whose game already started.
	ErrRoomNotJoinable = errors.New("room not found or game already started")
	// ErrNotHost is returned when a host-only action comes from a non-host player.
	ErrNotHost = errors.New("only the host may perform this action")
	// ErrNotEnoughPlayers is returned when starting a game with an empty room.
	ErrNotEnoughPlayers = errors.New("need at least 1 player to start the game")
	// ErrGameInProgress is returned when starting a game that is already running.
	ErrGameInProgress = errors.New("game already in progress or starting")
	// ErrNoQuestions indicates the question source returned nothing for the filter.
	ErrNoQuestions = errors.New("no questions found for selected criteria")
	// ErrQuestionNotActive is returned when answering outside an open answer window.
	ErrQuestionNotActive = errors.New("question not active")
	// ErrAlreadyAnswered is returned on a second submission within one round.
	ErrAlreadyAnswered = errors.New("answer already submitted for this round")
	// ErrInvalidPhase is returned when the host forces progression from a terminal
	// or not-yet-started phase.
	ErrInvalidPhase = errors.New("cannot advance in the current game phase")
	// ErrPlayerNotFound is returned when a kick targets an absent player.
	ErrPlayerNotFound = errors.New("player not found in room")
	// ErrTargetNotFound is returned when a private message targets an absent player.
	ErrTargetNotFound = errors.New("private message target not found")
)
