// Package history manages the chat sessions of roomchat. Sessions and
// their messages are stored as a JSON file in the user's config directory.
package history

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/arin/roomchat/internal/ai"
	"github.com/arin/roomchat/internal/config"
	"github.com/google/uuid"
)

const (
	fileName    = "sessions.json"
	maxSessions = 100

	// DefaultTitle is given to sessions created without one. The first
	// user message replaces it.
	DefaultTitle = "New Chat"

	titleLength  = 30
	minPrefixLen = 4
)

var (
	// ErrNotFound is returned when no session matches an ID.
	ErrNotFound = errors.New("session not found")
	// ErrAmbiguous is returned when an ID prefix matches several sessions.
	ErrAmbiguous = errors.New("session id prefix is ambiguous")
)

// fileMu guards concurrent access to the sessions file.
var fileMu sync.Mutex

// now is replaced in tests.
var now = time.Now

// Message is one stored turn of a session.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is a titled conversation.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Messages  []Message `json:"messages"`
}

// Conversation returns the session's messages in request order.
func (s *Session) Conversation() []ai.Message {
	out := make([]ai.Message, len(s.Messages))
	for i, m := range s.Messages {
		out[i] = ai.Message{Role: m.Role, Content: m.Content}
	}
	return out
}

func sessionsPath() string {
	return filepath.Join(config.Dir(), fileName)
}

// Create starts a new, empty session. An empty title becomes DefaultTitle.
func Create(title string) (*Session, error) {
	fileMu.Lock()
	defer fileMu.Unlock()

	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}
	t := now()
	s := Session{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: t,
		UpdatedAt: t,
		Messages:  []Message{},
	}

	sessions, err := loadAll()
	if err != nil {
		return nil, err
	}
	sessions = append(sessions, s)
	if err := saveAll(sessions); err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns up to limit sessions, most recently updated first.
// A limit of 0 returns all of them.
func List(limit int) ([]Session, error) {
	fileMu.Lock()
	defer fileMu.Unlock()

	sessions, err := loadAll()
	if err != nil {
		return nil, err
	}
	sortByRecent(sessions)
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	return sessions, nil
}

// Get returns the session whose ID equals id or uniquely starts with it.
func Get(id string) (*Session, error) {
	fileMu.Lock()
	defer fileMu.Unlock()

	sessions, err := loadAll()
	if err != nil {
		return nil, err
	}
	i, err := find(sessions, id)
	if err != nil {
		return nil, err
	}
	return &sessions[i], nil
}

// Rename sets a session's title.
func Rename(id, title string) error {
	return update(id, func(s *Session) error {
		title = strings.TrimSpace(title)
		if title == "" {
			return errors.New("title must not be empty")
		}
		s.Title = title
		s.UpdatedAt = now()
		return nil
	})
}

// Delete removes a session and its messages.
func Delete(id string) error {
	fileMu.Lock()
	defer fileMu.Unlock()

	sessions, err := loadAll()
	if err != nil {
		return err
	}
	i, err := find(sessions, id)
	if err != nil {
		return err
	}
	sessions = append(sessions[:i], sessions[i+1:]...)
	return saveAll(sessions)
}

// AddMessage appends a message to a session and bumps its UpdatedAt.
// The first user message of an untitled session becomes its title.
func AddMessage(id, role, content string) (*Message, error) {
	var added Message
	err := update(id, func(s *Session) error {
		t := now()
		added = Message{ID: uuid.NewString(), Role: role, Content: content, CreatedAt: t}
		if role == ai.RoleUser && s.Title == DefaultTitle && !hasUserMessage(s) {
			s.Title = AutoTitle(content)
		}
		s.Messages = append(s.Messages, added)
		s.UpdatedAt = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &added, nil
}

// AutoTitle derives a session title from a message.
func AutoTitle(content string) string {
	content = strings.Join(strings.Fields(content), " ")
	if content == "" {
		return DefaultTitle
	}
	runes := []rune(content)
	if len(runes) <= titleLength {
		return content
	}
	return string(runes[:titleLength]) + "..."
}

func hasUserMessage(s *Session) bool {
	for _, m := range s.Messages {
		if m.Role == ai.RoleUser {
			return true
		}
	}
	return false
}

func update(id string, fn func(*Session) error) error {
	fileMu.Lock()
	defer fileMu.Unlock()

	sessions, err := loadAll()
	if err != nil {
		return err
	}
	i, err := find(sessions, id)
	if err != nil {
		return err
	}
	if err := fn(&sessions[i]); err != nil {
		return err
	}
	return saveAll(sessions)
}

func find(sessions []Session, id string) (int, error) {
	match := -1
	for i, s := range sessions {
		if s.ID == id {
			return i, nil
		}
		if len(id) >= minPrefixLen && strings.HasPrefix(s.ID, id) {
			if match >= 0 {
				return -1, ErrAmbiguous
			}
			match = i
		}
	}
	if match < 0 {
		return -1, ErrNotFound
	}
	return match, nil
}

func sortByRecent(sessions []Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
}

func saveAll(sessions []Session) error {
	// Trim to max sessions, keeping the most recently updated.
	if len(sessions) > maxSessions {
		sortByRecent(sessions)
		sessions = sessions[:maxSessions]
	}

	if err := os.MkdirAll(config.Dir(), 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(sessionsPath(), data, 0o600)
}

func loadAll() ([]Session, error) {
	data, err := os.ReadFile(sessionsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var sessions []Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, err
	}

	return sessions, nil
}
