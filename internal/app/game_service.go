package app

import (
	"context"
	"log"
	"math/rand"
	"sort"
	"sync"
	"time"

	"quizroom/internal/domain"
)

// TestRoomCode is the well-known room lazily created by JoinTestRoom.
const TestRoomCode = "TESTROOM123"

// RoomRepository is the single source of truth for which rooms exist.
type RoomRepository interface {
	Put(room *Room)
	Get(code string) (*Room, bool)
	Delete(code string)
}

// QuestionRepository draws a randomly-ordered batch of questions matching
// an optional category filter, up to the available pool size.
type QuestionRepository interface {
	Draw(ctx context.Context, count int, categories []string) ([]domain.Question, error)
}

// Notifier delivers events to participants. Implementations must not
// block: the game service calls it while holding a room's lock.
type Notifier interface {
	Broadcast(playerIDs []string, event string, payload any)
	Send(playerID string, event string, payload any)
}

// GameService sequences rooms through the round state machine. It owns no
// global state; the registry and collaborators are injected once at startup.
type GameService struct {
	rooms         RoomRepository
	questions     QuestionRepository
	notifier      Notifier
	now           func() time.Time
	countdownTick time.Duration

	codeMu sync.Mutex
	codes  *rand.Rand
}

func NewGameService(rooms RoomRepository, questions QuestionRepository, notifier Notifier) *GameService {
	return &GameService{
		rooms:         rooms,
		questions:     questions,
		notifier:      notifier,
		now:           time.Now,
		countdownTick: time.Second,
		codes:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetCountdownTick overrides the pre-game countdown cadence; test-only.
func (s *GameService) SetCountdownTick(d time.Duration) {
	s.countdownTick = d
}

// NewGameServiceWithClock is test-only for deterministic timestamps.
func NewGameServiceWithClock(rooms RoomRepository, questions QuestionRepository, notifier Notifier, now func() time.Time) *GameService {
	s := NewGameService(rooms, questions, notifier)
	s.now = now
	return s
}

const roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func (s *GameService) newRoomCode() string {
	s.codeMu.Lock()
	defer s.codeMu.Unlock()
	for {
		code := make([]byte, 7)
		for i := range code {
			code[i] = roomCodeAlphabet[s.codes.Intn(len(roomCodeAlphabet))]
		}
		if _, taken := s.rooms.Get(string(code)); !taken {
			return string(code)
		}
	}
}

// CreateRoom allocates a new room in waiting_for_players with the caller
// as host and sole player. The question draw happens here; an empty draw
// rejects the creation.
func (s *GameService) CreateRoom(ctx context.Context, title, hostID, hostName string, cfg domain.GameConfig) (RoomSnapshot, error) {
	if err := cfg.Validate(); err != nil {
		return RoomSnapshot{}, err
	}
	questions, err := s.questions.Draw(ctx, cfg.QuestionCount, cfg.QuestionCategories)
	if err != nil {
		return RoomSnapshot{}, err
	}
	if len(questions) == 0 {
		return RoomSnapshot{}, domain.ErrNoQuestions
	}

	room := newRoom(s.newRoomCode(), title, cfg, domain.Player{ID: hostID, Name: hostName}, questions, s.now)
	s.rooms.Put(room)
	log.Printf("room %s: created by %s (%s)", room.code, hostName, hostID)

	room.mu.Lock()
	defer room.mu.Unlock()
	return room.snapshotLocked(), nil
}

// JoinRoom adds a player while the room is still waiting for players.
// Re-joining with a present identifier is treated as a reconnect, not a
// duplicate.
func (s *GameService) JoinRoom(code, playerID, name string) (RoomSnapshot, error) {
	room, ok := s.rooms.Get(code)
	if !ok {
		return RoomSnapshot{}, domain.ErrRoomNotJoinable
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if room.state != domain.StateWaitingForPlayers {
		return RoomSnapshot{}, domain.ErrRoomNotJoinable
	}
	if room.findPlayerLocked(playerID) != nil {
		return room.snapshotLocked(), nil
	}

	player := &domain.Player{ID: playerID, Name: name}
	room.players = append(room.players, player)
	snapshot := room.snapshotLocked()
	s.notifier.Broadcast(room.playerIDsLocked(), "playerJoined", playerJoinedPayload{
		Player:        *player,
		NewPlayerName: name,
		RoomState:     snapshot,
	})
	return snapshot, nil
}

// JoinTestRoom joins the fixed-code test room, lazily creating it with an
// auto-progressing countdown-scored configuration.
func (s *GameService) JoinTestRoom(ctx context.Context, playerID, name string) (RoomSnapshot, error) {
	room, ok := s.rooms.Get(TestRoomCode)
	if !ok {
		cfg := domain.DefaultGameConfig()
		cfg.ProgressionMode = domain.ProgressionAuto
		cfg.PointsScoring = domain.ScoringCountdown
		cfg.Modifiers.StreakBonus = true

		questions, err := s.questions.Draw(ctx, cfg.QuestionCount, cfg.QuestionCategories)
		if err != nil {
			return RoomSnapshot{}, err
		}
		if len(questions) == 0 {
			return RoomSnapshot{}, domain.ErrNoQuestions
		}
		room = newRoom(TestRoomCode, "Default Test Game", cfg, domain.Player{ID: playerID, Name: name}, questions, s.now)
		s.rooms.Put(room)
		log.Printf("room %s: test room created for %s", TestRoomCode, playerID)

		room.mu.Lock()
		defer room.mu.Unlock()
		return room.snapshotLocked(), nil
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if room.findPlayerLocked(playerID) == nil {
		player := &domain.Player{ID: playerID, Name: name}
		room.players = append(room.players, player)
		s.notifier.Broadcast(room.playerIDsLocked(), "playerJoined", playerJoinedPayload{
			Player:        *player,
			NewPlayerName: name,
			RoomState:     room.snapshotLocked(),
		})
	}
	return room.snapshotLocked(), nil
}

// LeaveRoom removes the player; absent rooms or players are a silent no-op.
// Disconnects funnel through here as well, so empty-room cleanup and host
// succession run exactly once regardless of cause.
func (s *GameService) LeaveRoom(code, playerID string) {
	room, ok := s.rooms.Get(code)
	if !ok {
		return
	}
	s.removeFromRoom(room, playerID, false)
}

// KickPlayer is the host-only removal path. The target is told, the room
// is told, and the usual removal consequences apply.
func (s *GameService) KickPlayer(code, hostID, targetID string) error {
	room, ok := s.rooms.Get(code)
	if !ok {
		return domain.ErrRoomNotFound
	}
	room.mu.Lock()
	if room.hostID != hostID {
		room.mu.Unlock()
		return domain.ErrNotHost
	}
	if room.findPlayerLocked(targetID) == nil {
		room.mu.Unlock()
		return domain.ErrPlayerNotFound
	}
	room.mu.Unlock()

	s.notifier.Send(targetID, "kickedFromRoom", kickedPayload{
		RoomID:  code,
		Message: "You have been kicked by the host.",
	})
	s.removeFromRoom(room, targetID, true)
	return nil
}

func (s *GameService) removeFromRoom(room *Room, playerID string, kicked bool) {
	room.mu.Lock()
	defer room.mu.Unlock()

	removed, empty, hostChanged := room.removePlayerLocked(playerID)
	if removed == nil {
		return
	}
	if empty {
		s.rooms.Delete(room.code)
		log.Printf("room %s: empty, deleted", room.code)
		return
	}

	s.notifier.Broadcast(room.playerIDsLocked(), "playerLeft", playerLeftPayload{
		PlayerID:     removed.ID,
		PlayerName:   removed.Name,
		KickedByHost: kicked,
		RoomState:    room.snapshotLocked(),
	})
	if hostChanged {
		s.notifier.Broadcast(room.playerIDsLocked(), "hostChanged", room.hostID)
	}
}

// Snapshot returns the current room state, or false for unknown codes.
func (s *GameService) Snapshot(code string) (RoomSnapshot, bool) {
	room, ok := s.rooms.Get(code)
	if !ok {
		return RoomSnapshot{}, false
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.snapshotLocked(), true
}

// StartGame begins the countdown toward the first question. Only the host
// may start, only from the waiting or game-over phases.
func (s *GameService) StartGame(ctx context.Context, code, playerID string) error {
	room, ok := s.rooms.Get(code)
	if !ok {
		return domain.ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.hostID != playerID {
		return domain.ErrNotHost
	}
	if len(room.players) < 1 {
		return domain.ErrNotEnoughPlayers
	}
	switch room.state {
	case domain.StateWaitingForPlayers, domain.StateGameOver:
	default:
		return domain.ErrGameInProgress
	}

	// Safeguard: questions are drawn at creation, but re-draw if the pool
	// was somehow lost before start.
	if len(room.questions) == 0 {
		questions, err := s.questions.Draw(ctx, room.config.QuestionCount, room.config.QuestionCategories)
		if err != nil {
			return err
		}
		if len(questions) == 0 {
			return domain.ErrNoQuestions
		}
		room.questions = questions
	}

	room.questionIndex = -1
	room.state = domain.StateStartingGame
	s.notifier.Broadcast(room.playerIDsLocked(), "gameStateUpdate", stateUpdatePayload{State: room.state})
	log.Printf("room %s: starting game", room.code)

	room.armTimerLocked(s.countdownTick, func() {
		s.countdownTickLocked(room, 3)
	})
	return nil
}

// countdownTickLocked broadcasts one pre-game countdown tick, 3 down to
// 0, then sends the first question.
func (s *GameService) countdownTickLocked(room *Room, n int) {
	s.notifier.Broadcast(room.playerIDsLocked(), "countdown", n)
	if n == 0 {
		s.sendNextQuestionLocked(room)
		return
	}
	room.armTimerLocked(s.countdownTick, func() {
		s.countdownTickLocked(room, n-1)
	})
}

// sendNextQuestionLocked advances the question pointer, opening a new
// answer window or ending the game when the sequence is exhausted.
func (s *GameService) sendNextQuestionLocked(room *Room) {
	next := room.questionIndex + 1
	if next >= room.config.QuestionCount || next >= len(room.questions) {
		s.endGameLocked(room)
		return
	}

	room.questionIndex = next
	room.state = domain.StateQuestionActive
	room.roundAnswers = make(map[string]*domain.RoundAnswer)
	room.questionStart = s.now()

	question := room.questions[next]
	s.notifier.Broadcast(room.playerIDsLocked(), "newQuestion", newQuestionPayload{
		Question:       room.redactLocked(question),
		QuestionNumber: next + 1,
		TotalQuestions: room.config.QuestionCount,
		GameConfig:     room.config,
	})
	log.Printf("room %s: question %d sent, type %s", room.code, next+1, question.Type)

	if room.config.ProgressionMode == domain.ProgressionAuto {
		room.armTimerLocked(time.Duration(room.config.RoundDurationMs)*time.Millisecond, func() {
			s.endRoundLocked(room)
		})
	}
}

// SubmitAnswer records at most one answer per player per round. Elapsed
// time is taken from the server clock; the client-reported value is kept
// only for diagnostics. In semi_auto mode the round closes as soon as
// every present player has answered.
func (s *GameService) SubmitAnswer(code, playerID string, value any, clientElapsedMs int64, wager int) error {
	room, ok := s.rooms.Get(code)
	if !ok {
		return domain.ErrQuestionNotActive
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.state != domain.StateQuestionActive {
		return domain.ErrQuestionNotActive
	}
	if room.findPlayerLocked(playerID) == nil {
		return domain.ErrPlayerNotFound
	}
	if _, answered := room.roundAnswers[playerID]; answered {
		return domain.ErrAlreadyAnswered
	}

	room.roundAnswers[playerID] = &domain.RoundAnswer{
		Value:           value,
		ElapsedMs:       s.now().Sub(room.questionStart).Milliseconds(),
		ClientElapsedMs: clientElapsedMs,
		Wager:           wager,
	}
	s.notifier.Broadcast(room.playerIDsLocked(), "playerAnswered", playerAnsweredPayload{PlayerID: playerID})

	if room.config.ProgressionMode == domain.ProgressionSemiAuto && s.allPresentAnsweredLocked(room) {
		log.Printf("room %s: all players answered, closing round early", room.code)
		s.endRoundLocked(room)
	}
	return nil
}

func (s *GameService) allPresentAnsweredLocked(room *Room) bool {
	for _, p := range room.players {
		if _, ok := room.roundAnswers[p.ID]; !ok {
			return false
		}
	}
	return true
}

// ForceAdvance is the host's manual progression control: from an active
// question it ends the round, from the reveal or wait phases it moves to
// the next question.
func (s *GameService) ForceAdvance(code, playerID string) error {
	room, ok := s.rooms.Get(code)
	if !ok {
		return domain.ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.hostID != playerID {
		return domain.ErrNotHost
	}
	switch room.state {
	case domain.StateQuestionActive:
		s.endRoundLocked(room)
	case domain.StateRevealingAnswer, domain.StateWaitingForHost:
		s.sendNextQuestionLocked(room)
	default:
		return domain.ErrInvalidPhase
	}
	return nil
}

// endRoundLocked closes the answer window, scores every player against
// their recorded answer (or the lack of one), and broadcasts the reveal.
func (s *GameService) endRoundLocked(room *Room) {
	if room.state != domain.StateQuestionActive {
		return
	}
	room.state = domain.StateRevealingAnswer
	room.clearTimerLocked()

	question := room.questions[room.questionIndex]
	results := make(map[string]domain.RoundResult, len(room.players))
	for _, player := range room.players {
		answer := room.roundAnswers[player.ID]
		correct, points := Score(room.config, question, answer)
		player.Score += points

		result := domain.RoundResult{
			Answered:      answer != nil,
			Correct:       correct,
			PointsAwarded: points,
			TotalScore:    player.Score,
		}
		if answer != nil {
			result.SubmittedAnswer = answer.Value
			result.TimeTakenMs = answer.ElapsedMs
		}
		results[player.ID] = result
	}

	roster := make([]domain.Player, 0, len(room.players))
	for _, p := range room.players {
		roster = append(roster, *p)
	}
	s.notifier.Broadcast(room.playerIDsLocked(), "roundResults", roundResultsPayload{
		Question:       question,
		CorrectAnswer:  correctAnswerOf(question),
		Results:        results,
		UpdatedPlayers: roster,
	})
	log.Printf("room %s: round %d results sent", room.code, room.questionIndex+1)

	if room.config.ProgressionMode == domain.ProgressionAuto {
		delay := time.Duration(room.config.DurationBetweenQuestions) * time.Millisecond
		if room.config.AnswerFeedback == domain.FeedbackNone {
			delay = 0
		}
		room.armTimerLocked(delay, func() {
			s.sendNextQuestionLocked(room)
		})
		return
	}

	room.state = domain.StateWaitingForHost
	s.notifier.Broadcast(room.playerIDsLocked(), "gameStateUpdate", stateUpdatePayload{State: room.state})
}

// endGameLocked transitions to the terminal phase and broadcasts final
// standings sorted by descending score. The room stays resident until it
// empties.
func (s *GameService) endGameLocked(room *Room) {
	room.state = domain.StateGameOver
	room.clearTimerLocked()

	standings := make([]domain.Player, 0, len(room.players))
	for _, p := range room.players {
		standings = append(standings, *p)
	}
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Score > standings[j].Score
	})

	s.notifier.Broadcast(room.playerIDsLocked(), "gameOver", gameOverPayload{
		FinalScores: standings,
		GameConfig:  room.config,
	})
	log.Printf("room %s: game over", room.code)
	room.chat = nil
}

// SendChat appends a group chat message to the bounded history and
// broadcasts it room-wide.
func (s *GameService) SendChat(code, playerID, text string) error {
	room, ok := s.rooms.Get(code)
	if !ok {
		return domain.ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	sender := "Unknown"
	if p := room.findPlayerLocked(playerID); p != nil {
		sender = p.Name
	}
	msg := domain.ChatMessage{
		Sender:    sender,
		Message:   text,
		Timestamp: s.now(),
		Kind:      "group",
	}
	room.appendChatLocked(msg)
	s.notifier.Broadcast(room.playerIDsLocked(), "chatMessage", chatPayload{ChatMessage: msg})
	return nil
}

// SendPrivateChat delivers a message to sender and target only. Private
// messages are not part of the room's chat history.
func (s *GameService) SendPrivateChat(code, playerID, targetID, text string) error {
	room, ok := s.rooms.Get(code)
	if !ok {
		return domain.ErrRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	sender := "Unknown"
	if p := room.findPlayerLocked(playerID); p != nil {
		sender = p.Name
	}
	target := room.findPlayerLocked(targetID)
	if target == nil {
		return domain.ErrTargetNotFound
	}

	msg := domain.ChatMessage{
		Sender:    sender,
		Message:   text,
		Timestamp: s.now(),
		Kind:      "private",
		TargetID:  targetID,
	}
	s.notifier.Send(playerID, "chatMessage", chatPayload{ChatMessage: msg, IsOutgoing: true, RecipientName: target.Name})
	s.notifier.Send(targetID, "chatMessage", chatPayload{ChatMessage: msg, IsIncoming: true})
	return nil
}

// correctAnswerOf picks the revealed answer shape for a question type.
func correctAnswerOf(q domain.Question) any {
	if q.Type == domain.OrderedList {
		return q.CorrectOrder
	}
	return q.CorrectAnswer
}
