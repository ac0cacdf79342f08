package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"quizroom/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches the full question bank from a backing store
// (Postgres, SQLite, or a static map).
type QuestionLoader interface {
	LoadBank(ctx context.Context) ([]domain.Question, error)
}

// QuestionRepository caches the bank with a TTL to avoid repeated loads,
// and serves randomly-ordered draws filtered by category.
type QuestionRepository struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu        sync.RWMutex
	bank      []domain.Question
	expiresAt time.Time
}

func NewQuestionRepository(loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Draw returns up to count shuffled questions matching the category filter
// (empty filter means all categories).
func (r *QuestionRepository) Draw(ctx context.Context, count int, categories []string) ([]domain.Question, error) {
	bank, err := r.getBank(ctx)
	if err != nil {
		return nil, err
	}
	return DrawFromBank(r.shuffle, bank, count, categories), nil
}

func (r *QuestionRepository) getBank(ctx context.Context) ([]domain.Question, error) {
	now := r.clock()

	r.mu.RLock()
	if r.bank != nil && r.expiresAt.After(now) {
		bank := r.bank
		r.mu.RUnlock()
		return bank, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do("bank", func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if r.bank != nil && r.expiresAt.After(now) {
			bank := r.bank
			r.mu.RUnlock()
			return bank, nil
		}
		r.mu.RUnlock()

		bank, err := r.loader.LoadBank(ctx)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.bank = bank
		r.expiresAt = now.Add(r.ttlWithJitter())
		r.mu.Unlock()
		return bank, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (r *QuestionRepository) shuffle(n int, swap func(i, j int)) {
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	r.rnd.Shuffle(n, swap)
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// DrawFromBank filters, shuffles a copy, and slices the bank. Shared by
// the memory and redis repositories.
func DrawFromBank(shuffle func(n int, swap func(i, j int)), bank []domain.Question, count int, categories []string) []domain.Question {
	filtered := make([]domain.Question, 0, len(bank))
	for _, q := range bank {
		if len(categories) == 0 || containsCategory(categories, q.Category) {
			filtered = append(filtered, q)
		}
	}
	shuffle(len(filtered), func(i, j int) {
		filtered[i], filtered[j] = filtered[j], filtered[i]
	})
	if count < len(filtered) {
		filtered = filtered[:count]
	}
	return filtered
}

func containsCategory(categories []string, category string) bool {
	for _, c := range categories {
		if c == category {
			return true
		}
	}
	return false
}

// StaticQuestionLoader is a loader backed by an in-memory slice (useful
// for tests and for running without a database).
type StaticQuestionLoader struct {
	bank []domain.Question
}

func NewStaticQuestionLoader(bank []domain.Question) *StaticQuestionLoader {
	return &StaticQuestionLoader{bank: bank}
}

func (l *StaticQuestionLoader) LoadBank(_ context.Context) ([]domain.Question, error) {
	if len(l.bank) == 0 {
		return nil, domain.ErrNoQuestions
	}
	return l.bank, nil
}
