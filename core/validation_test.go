package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateMessage(t *testing.T) {
	tests := []struct {
		name    string
		msg     Message
		wantErr error
	}{
		{"valid user", Message{Role: RoleUser, Content: "hi"}, nil},
		{"empty placeholder", Message{Role: RoleAssistant}, nil},
		{"empty user", Message{Role: RoleUser}, ErrEmptyContent},
		{"blank user", Message{Role: RoleUser, Content: " \n\t"}, ErrEmptyContent},
		{"bad role", Message{Role: "system", Content: "x"}, ErrInvalidRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMessage(tt.msg)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidMessage)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateSession(t *testing.T) {
	valid := func() *ChatSession {
		return &ChatSession{
			ID:       7,
			Model:    DefaultModel(),
			Messages: []Message{{Role: RoleUser, Content: "hello"}, {Role: RoleAssistant, Content: "hi"}},
			Locked:   true,
		}
	}

	assert.NoError(t, ValidateSession(valid()))
	assert.ErrorIs(t, ValidateSession(nil), ErrInvalidSession)

	s := valid()
	s.ID = 0
	assert.ErrorIs(t, ValidateSession(s), ErrInvalidSession)

	s = valid()
	s.Model = ModelOption{ID: "gpt-2"}
	assert.ErrorIs(t, ValidateSession(s), ErrUnknownModel)

	s = valid()
	s.Locked = false
	assert.ErrorIs(t, ValidateSession(s), ErrInvalidSession)

	s = valid()
	s.Messages = append(s.Messages, Message{Role: "tool"})
	assert.ErrorIs(t, ValidateSession(s), ErrInvalidRole)

	empty := &ChatSession{ID: 1, Model: DefaultModel()}
	assert.NoError(t, ValidateSession(empty))
}
