package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/ivanoskov/civic_bot/internal/model"
)

type entry struct {
	mu   sync.Mutex
	sess *Session
}

// Store — потокобезопасное хранилище сессий.
// Общий мьютекс защищает только карту, изменения одной сессии сериализуются мьютексом записи,
// поэтому разные пользователи не блокируют друг друга.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

func (s *Store) entry(userID string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[userID]
	if !ok {
		e = &entry{sess: New(userID, s.now())}
		s.entries[userID] = e
	}
	return e
}

// GetOrCreate возвращает копию сессии, создавая ее при первом обращении
func (s *Store) GetOrCreate(userID string) Session {
	e := s.entry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return *e.sess.Clone()
}

// SetFields применяет изменения к сессии и обновляет updated_at
func (s *Store) SetFields(userID string, apply func(*Session)) error {
	return s.WithLock(userID, func(sess *Session) error {
		apply(sess)
		return nil
	})
}

func (s *Store) SetState(userID string, state model.State) error {
	return s.WithLock(userID, func(sess *Session) error {
		sess.State = state
		return nil
	})
}

// Reset возвращает сессию в начальное состояние и очищает все накопленные поля
func (s *Store) Reset(userID string) Session {
	e := s.entry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()

	e.sess = New(userID, s.now())
	return *e.sess.Clone()
}

// WithLock выполняет fn над копией сессии под блокировкой пользователя.
// Копия сохраняется только если fn вернула nil и состояние осталось допустимым.
func (s *Store) WithLock(userID string, fn func(*Session) error) error {
	e := s.entry(userID)
	e.mu.Lock()
	defer e.mu.Unlock()

	draft := e.sess.Clone()
	if err := fn(draft); err != nil {
		return err
	}
	if !draft.State.Valid() {
		return fmt.Errorf("refusing to store session %s: unknown state %q", userID, draft.State)
	}
	draft.UserID = userID
	draft.UpdatedAt = s.now()
	e.sess = draft
	return nil
}

// Len — количество известных сессий
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
