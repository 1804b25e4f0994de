package models

import (
	"strings"
	"time"
)

// Level classifies a session message. Only the three levels below are ever
// retained; informational navigation chatter is dropped at the door.
type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelSuccess Level = "success"
)

// ParseLevel normalizes a raw level string. The second return value is false
// for levels that are not retained.
func ParseLevel(raw string) (Level, bool) {
	switch Level(strings.ToLower(strings.TrimSpace(raw))) {
	case LevelError:
		return LevelError, true
	case LevelWarning:
		return LevelWarning, true
	case LevelSuccess:
		return LevelSuccess, true
	}
	return "", false
}

// Message is one entry in the session message panel.
type Message struct {
	Timestamp time.Time `json:"ts"`
	Level     Level     `json:"level"`
	Text      string    `json:"text"`
}
