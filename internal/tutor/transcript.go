package tutor

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Role identifies who spoke a turn.
type Role string

const (
	RoleTutor   Role = "tutor"
	RoleStudent Role = "student"
)

// Turn is one message in a tutoring conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Transcript is the ordered list of turns in a conversation.
type Transcript []Turn

// Marshal serializes the transcript for a review session record.
func (t Transcript) Marshal() (string, error) {
	if t == nil {
		t = Transcript{}
	}
	data, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("marshal transcript: %w", err)
	}
	return string(data), nil
}

// UnmarshalTranscript parses a transcript stored by Marshal. An empty
// string yields an empty transcript.
func UnmarshalTranscript(s string) (Transcript, error) {
	if strings.TrimSpace(s) == "" {
		return Transcript{}, nil
	}
	var t Transcript
	if err := json.Unmarshal([]byte(s), &t); err != nil {
		return nil, fmt.Errorf("unmarshal transcript: %w", err)
	}
	return t, nil
}

// Tail returns the last n turns.
func (t Transcript) Tail(n int) Transcript {
	if n >= len(t) {
		return t
	}
	return t[len(t)-n:]
}

// FirstStudentTurn returns the content of the first student turn, or ""
// if the student never spoke.
func (t Transcript) FirstStudentTurn() string {
	for _, turn := range t {
		if turn.Role == RoleStudent {
			return turn.Content
		}
	}
	return ""
}

// String renders turns as "role: content" lines for prompts.
func (t Transcript) String() string {
	var b strings.Builder
	for i, turn := range t {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s: %s", turn.Role, turn.Content)
	}
	return b.String()
}
