package session

import (
	"time"
	"unicode/utf8"

	"github.com/ChamsBouzaiene/sidekick/internal/engine"
)

// Session is the durable conversation scope. Everything a future run needs to
// resume the conversation lives here; transient per-session resources (the
// browser, the sandbox) are managed separately by the Manager.
type Session struct {
	ID        string               `json:"id"`
	Title     string               `json:"title"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
	History   []engine.ChatMessage `json:"history"`
	Totals    engine.Usage         `json:"totals"`
}

// Meta is a lightweight representation for listing sessions.
type Meta struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Touch refreshes UpdatedAt and derives a title from the first user message
// if none has been set yet.
func (s *Session) Touch() {
	s.UpdatedAt = time.Now().UTC()
	if s.Title != "" {
		return
	}
	for _, msg := range s.History {
		if msg.Role == engine.RoleUser {
			s.Title = truncateTitle(msg.Content)
			return
		}
	}
}

func truncateTitle(s string) string {
	const maxTitle = 60
	if utf8.RuneCountInString(s) <= maxTitle {
		return s
	}
	return string([]rune(s)[:maxTitle]) + "..."
}
