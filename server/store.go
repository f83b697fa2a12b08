package server

import (
	"errors"
	"image"
	"sync"
	"time"

	"github.com/segmentio/ksuid"
)

var ErrSessionNotFound = errors.New("session not found")

// session 一个用户的拍摄会话。background 为 nil 表示还没有拍背景，
// 只会被 Capture 和 Clear 修改。
type session struct {
	background image.Image
	lastSeen   time.Time
}

// Store 会话存储，流水线本身不持有任何状态，背景图只保存在这里
type Store struct {
	mu       sync.Mutex
	sessions map[string]*session
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

func (s *Store) Create() string {
	id := ksuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &session{lastSeen: s.now()}
	return id
}

func (s *Store) Capture(id string, background image.Image) error {
	return s.update(id, func(sess *session) { sess.background = background })
}

func (s *Store) Clear(id string) error {
	return s.update(id, func(sess *session) { sess.background = nil })
}

// Background 返回已拍摄的背景，ok 为 false 表示还没有拍
func (s *Store) Background(id string) (img image.Image, ok bool, err error) {
	err = s.update(id, func(sess *session) { img = sess.background })
	return img, img != nil, err
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep 删除超过 ttl 没有访问的会话，返回删除数量
func (s *Store) Sweep(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-ttl)
	n := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *Store) update(id string, fn func(*session)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	sess.lastSeen = s.now()
	fn(sess)
	return nil
}
