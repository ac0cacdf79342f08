package app

import (
	"math/rand"
	"sync"
	"time"

	"quizroom/internal/domain"
)

const chatHistoryLimit = 50

// Room is one live trivia session. All mutable state is guarded by mu;
// every GameService operation and timer callback holds the lock for its
// full critical section, so transitions for one room never interleave.
type Room struct {
	code    string
	title   string
	config  domain.GameConfig
	created time.Time
	now     func() time.Time
	rnd     *rand.Rand

	mu            sync.Mutex
	players       []*domain.Player
	hostID        string
	questions     []domain.Question
	questionIndex int
	state         domain.RoomState
	questionStart time.Time
	roundAnswers  map[string]*domain.RoundAnswer
	chat          []domain.ChatMessage

	// Single-slot pending timer. timerSeq is bumped whenever the slot is
	// armed or cleared; a fired callback that observes a stale sequence
	// aborts instead of double-transitioning.
	timer    *time.Timer
	timerSeq uint64
}

// RoomSnapshot is the room state payload sent to participants. Questions
// and in-flight answers are never part of it.
type RoomSnapshot struct {
	ID                   string               `json:"id"`
	GameTitle            string               `json:"gameTitle"`
	Players              []domain.Player      `json:"players"`
	HostID               string               `json:"hostId"`
	State                domain.RoomState     `json:"state"`
	CurrentQuestionIndex int                  `json:"currentQuestionIndex"`
	TotalQuestions       int                  `json:"totalQuestions"`
	Config               domain.GameConfig    `json:"config"`
	ChatMessages         []domain.ChatMessage `json:"chatMessages"`
}

func newRoom(code, title string, cfg domain.GameConfig, host domain.Player, questions []domain.Question, now func() time.Time) *Room {
	r := &Room{
		code:          code,
		title:         title,
		config:        cfg,
		created:       now(),
		now:           now,
		rnd:           rand.New(rand.NewSource(now().UnixNano())),
		hostID:        host.ID,
		questions:     questions,
		questionIndex: -1,
		state:         domain.StateWaitingForPlayers,
		roundAnswers:  make(map[string]*domain.RoundAnswer),
	}
	r.players = append(r.players, &host)
	return r
}

// Code returns the room's immutable join code.
func (r *Room) Code() string { return r.code }

func (r *Room) snapshotLocked() RoomSnapshot {
	players := make([]domain.Player, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, *p)
	}
	chat := make([]domain.ChatMessage, len(r.chat))
	copy(chat, r.chat)
	return RoomSnapshot{
		ID:                   r.code,
		GameTitle:            r.title,
		Players:              players,
		HostID:               r.hostID,
		State:                r.state,
		CurrentQuestionIndex: r.questionIndex,
		TotalQuestions:       r.config.QuestionCount,
		Config:               r.config,
		ChatMessages:         chat,
	}
}

func (r *Room) playerIDsLocked() []string {
	ids := make([]string, 0, len(r.players))
	for _, p := range r.players {
		ids = append(ids, p.ID)
	}
	return ids
}

func (r *Room) findPlayerLocked(id string) *domain.Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// removePlayerLocked drops the player and reports whether the room is now
// empty and whether the host changed. Host succession goes to the earliest
// remaining joiner.
func (r *Room) removePlayerLocked(id string) (removed *domain.Player, empty, hostChanged bool) {
	for i, p := range r.players {
		if p.ID == id {
			removed = p
			r.players = append(r.players[:i], r.players[i+1:]...)
			break
		}
	}
	if removed == nil {
		return nil, false, false
	}
	if len(r.players) == 0 {
		r.clearTimerLocked()
		return removed, true, false
	}
	if r.hostID == id {
		r.hostID = r.players[0].ID
		hostChanged = true
	}
	return removed, false, hostChanged
}

func (r *Room) appendChatLocked(msg domain.ChatMessage) {
	r.chat = append(r.chat, msg)
	if len(r.chat) > chatHistoryLimit {
		r.chat = r.chat[len(r.chat)-chatHistoryLimit:]
	}
}

// armTimerLocked replaces any pending timer with a new one. The callback
// runs under the room lock and only if no later arm or clear happened in
// the meantime.
func (r *Room) armTimerLocked(d time.Duration, fn func()) {
	r.clearTimerLocked()
	r.timerSeq++
	seq := r.timerSeq
	r.timer = time.AfterFunc(d, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.timerSeq != seq {
			return
		}
		r.timer = nil
		fn()
	})
}

func (r *Room) clearTimerLocked() {
	r.timerSeq++
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// redactLocked builds the participant-safe projection of the current
// question. Choice-style types get the shuffled union of incorrect answers
// and the correct one; free-response types get an empty list.
func (r *Room) redactLocked(q domain.Question) domain.ClientQuestion {
	answers := []string{}
	if q.Type.HasChoiceList() {
		answers = append(answers, q.IncorrectAnswers...)
		if q.CorrectAnswer != "" {
			answers = append(answers, q.CorrectAnswer)
		}
		r.rnd.Shuffle(len(answers), func(i, j int) {
			answers[i], answers[j] = answers[j], answers[i]
		})
	}
	return domain.ClientQuestion{
		ID:       q.ID,
		Type:     q.Type,
		Category: q.Category,
		Prompt:   q.Prompt,
		Answers:  answers,
		Points:   q.Points,
		MediaURL: q.MediaURL,
	}
}
