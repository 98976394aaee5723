// Package types provides core types shared across the schemaflow service.
// This package has ZERO dependencies on other schemaflow packages to avoid
// circular imports. All other packages should import types from here.
package types

// Role represents the role of a message participant.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Valid reports whether the role is one the service accepts.
func (r Role) Valid() bool {
	return r == RoleSystem || r == RoleUser
}

// Message represents a conversation message.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewMessage creates a new message with the given role and content.
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) Message {
	return NewMessage(RoleSystem, content)
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return NewMessage(RoleUser, content)
}
