// Package flow implements the assessment core: the navigation engine that
// walks a participant through domains and questions, the action resolver that
// turns a score into prescriptive guidance, the session message log, and the
// controller that ties them to a persistence backend.
package flow

import (
	"strings"
	"time"

	"github.com/harrison/dommx/internal/models"
)

// StaleSavePrefix marks the recurring unsaved-changes warning so it can be
// deduplicated and purged as a group.
const StaleSavePrefix = "Last saved"

// Log is the session-scoped message panel. Only error, warning and success
// entries are retained; anything else is dropped silently. Entries are
// append-only until Clear.
type Log struct {
	msgs []models.Message
	now  func() time.Time
}

// NewLog returns an empty message log.
func NewLog() *Log {
	return &Log{now: time.Now}
}

// Add appends a message at the given level. Unretained levels and blank
// texts are silent no-ops.
func (l *Log) Add(text string, level models.Level) {
	lvl, ok := models.ParseLevel(string(level))
	if !ok {
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	l.msgs = append(l.msgs, models.Message{
		Timestamp: l.now(),
		Level:     lvl,
		Text:      text,
	})
}

// Error appends an error-level message.
func (l *Log) Error(text string) { l.Add(text, models.LevelError) }

// Warning appends a warning-level message.
func (l *Log) Warning(text string) { l.Add(text, models.LevelWarning) }

// Success appends a success-level message.
func (l *Log) Success(text string) { l.Add(text, models.LevelSuccess) }

// List returns the retained messages most-recent-first.
func (l *Log) List() []models.Message {
	out := make([]models.Message, 0, len(l.msgs))
	for i := len(l.msgs) - 1; i >= 0; i-- {
		out = append(out, l.msgs[i])
	}
	return out
}

// Len returns the number of retained messages.
func (l *Log) Len() int {
	return len(l.msgs)
}

// Clear drops all messages.
func (l *Log) Clear() {
	l.msgs = nil
}

// HasPrefix reports whether any retained message starts with prefix.
func (l *Log) HasPrefix(prefix string) bool {
	for _, m := range l.msgs {
		if strings.HasPrefix(m.Text, prefix) {
			return true
		}
	}
	return false
}

// DropPrefix removes every message starting with prefix. Used to purge stale
// unsaved-changes warnings after a successful save.
func (l *Log) DropPrefix(prefix string) {
	kept := l.msgs[:0]
	for _, m := range l.msgs {
		if !strings.HasPrefix(m.Text, prefix) {
			kept = append(kept, m)
		}
	}
	l.msgs = kept
}
