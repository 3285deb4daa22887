// Package chatlog хранит недавнюю переписку пользователей для панели бэк-офиса.
// Записи устаревают после периода неактивности; состояние диалога здесь не хранится.
package chatlog

import (
	"context"
	"sort"
	"sync"
	"time"
)

const (
	RoleUser = "user"
	RoleBot  = "bot"
)

type Message struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Log — история одного пользователя
type Log struct {
	UserID     string    `json:"user_id"`
	Language   string    `json:"language,omitempty"`
	History    []Message `json:"history"`
	LastActive time.Time `json:"last_active"`
}

type Store struct {
	mu          sync.Mutex
	logs        map[string]*Log
	ttl         time.Duration
	maxMessages int
	now         func() time.Time
}

func NewStore(ttl time.Duration, maxMessages int) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if maxMessages <= 0 {
		maxMessages = 10
	}
	return &Store{
		logs:        make(map[string]*Log),
		ttl:         ttl,
		maxMessages: maxMessages,
		now:         time.Now,
	}
}

// touch возвращает журнал пользователя, очищая его после периода неактивности
func (s *Store) touch(userID string) *Log {
	now := s.now()
	l, ok := s.logs[userID]
	if !ok {
		l = &Log{UserID: userID}
		s.logs[userID] = l
	} else if now.Sub(l.LastActive) > s.ttl {
		l.History = nil
		l.Language = ""
	}
	l.LastActive = now
	return l
}

// Record добавляет сообщение, храня не больше maxMessages последних
func (s *Store) Record(userID, role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := s.touch(userID)
	l.History = append(l.History, Message{Role: role, Content: content, At: l.LastActive})
	if extra := len(l.History) - s.maxMessages; extra > 0 {
		l.History = append([]Message(nil), l.History[extra:]...)
	}
}

func (s *Store) SetLanguage(userID, lang string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(userID).Language = lang
}

// Get возвращает копию журнала, если он есть и не устарел
func (s *Store) Get(userID string) (Log, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.logs[userID]
	if !ok || s.expired(l) {
		return Log{}, false
	}
	return copyLog(l), true
}

// All возвращает живые журналы, самые активные первыми
func (s *Store) All() []Log {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Log, 0, len(s.logs))
	for _, l := range s.logs {
		if !s.expired(l) {
			out = append(out, copyLog(l))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastActive.After(out[j].LastActive)
	})
	return out
}

// Evict удаляет устаревшие журналы и возвращает их число
func (s *Store) Evict() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, l := range s.logs {
		if s.expired(l) {
			delete(s.logs, id)
			removed++
		}
	}
	return removed
}

// StartEviction периодически чистит хранилище, пока не отменен ctx
func (s *Store) StartEviction(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Evict()
			}
		}
	}()
}

func (s *Store) expired(l *Log) bool {
	return s.now().Sub(l.LastActive) > s.ttl
}

func copyLog(l *Log) Log {
	c := *l
	c.History = append([]Message(nil), l.History...)
	return c
}
