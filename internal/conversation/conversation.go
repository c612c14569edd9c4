// Package conversation holds the append-only message log of one chat session.
package conversation

import (
	"sync"
	"time"

	"github.com/newthinker/tickertalk/internal/core"
)

// Conversation is an ordered, append-only transcript. Messages are never
// reordered or removed; the whole value is discarded with its session.
type Conversation struct {
	mu       sync.RWMutex
	messages []core.Message
	now      func() time.Time
}

// New creates an empty conversation.
func New() *Conversation {
	return &Conversation{now: time.Now}
}

// AppendUser records a user message.
func (c *Conversation) AppendUser(content string) core.Message {
	return c.append(core.Message{Role: core.RoleUser, Content: content})
}

// AppendAssistant records an assistant message.
func (c *Conversation) AppendAssistant(content string) core.Message {
	return c.append(core.Message{Role: core.RoleAssistant, Content: content})
}

// AppendFunction records the serialised result of the named function.
func (c *Conversation) AppendFunction(name, content string) core.Message {
	return c.append(core.Message{Role: core.RoleFunction, Name: name, Content: content})
}

func (c *Conversation) append(m core.Message) core.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	m.CreatedAt = c.now()
	c.messages = append(c.messages, m)
	return m
}

// Messages returns a copy of the transcript.
func (c *Conversation) Messages() []core.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]core.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// Last returns the most recent message, if any.
func (c *Conversation) Last() (core.Message, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.messages) == 0 {
		return core.Message{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// CountRole returns how many messages have the given role.
func (c *Conversation) CountRole(role core.Role) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, m := range c.messages {
		if m.Role == role {
			n++
		}
	}
	return n
}
