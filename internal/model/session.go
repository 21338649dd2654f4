package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// MessageType tells user messages from model messages.
type MessageType string

const (
	MessageTypeUser  MessageType = "User"
	MessageTypeModel MessageType = "Model"
)

// MessageState is the lifecycle state of a model message.
type MessageState string

const (
	MessageStatePending MessageState = "Pending"
	MessageStateSuccess MessageState = "Success"
	MessageStateError   MessageState = "Error"
)

const (
	sessionNameMaxLen    = 20
	sessionNameKeepChars = 17
)

// CartItem is a product suggested with an answer.
type CartItem struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// Message is either a user prompt or a model answer; State and the answer
// fields only apply to model messages.
type Message struct {
	ID           string       `json:"id"`
	Type         MessageType  `json:"type"`
	Content      string       `json:"content,omitempty"`
	State        MessageState `json:"state,omitempty"`
	ContentTitle string       `json:"contentTitle,omitempty"`
	ContentLink  string       `json:"contentLink,omitempty"`
	WordsToBold  []string     `json:"wordsToBold,omitempty"`
	CartItems    []CartItem   `json:"cartItems,omitempty"`
	HTML         string       `json:"html,omitempty"` // sanitized body, set on success
}

// NewUserMessage creates a user message with a fresh ID.
func NewUserMessage(content string) Message {
	return Message{
		ID:      uuid.NewString(),
		Type:    MessageTypeUser,
		Content: content,
	}
}

// NewPendingMessage creates a model message waiting for its answer.
func NewPendingMessage() Message {
	return Message{
		ID:    uuid.NewString(),
		Type:  MessageTypeModel,
		State: MessageStatePending,
	}
}

// IsPending reports whether m is a model message still waiting for its answer.
func (m Message) IsPending() bool {
	return m.Type == MessageTypeModel && m.State == MessageStatePending
}

// Clone returns a deep copy of m.
func (m Message) Clone() Message {
	c := m
	if m.WordsToBold != nil {
		c.WordsToBold = append([]string(nil), m.WordsToBold...)
	}
	if m.CartItems != nil {
		c.CartItems = append([]CartItem(nil), m.CartItems...)
	}
	return c
}

// Session is one conversation.
type Session struct {
	ID           string    `json:"id"`
	Name         *string   `json:"name,omitempty"`
	Conversation []Message `json:"conversation"`
}

// NewSession creates an empty, unnamed session with a fresh ID.
func NewSession() *Session {
	return &Session{
		ID:           uuid.NewString(),
		Conversation: []Message{},
	}
}

// DisplayName returns the session name, or "New session" while it is unset.
func (s *Session) DisplayName() string {
	if s.Name == nil {
		return "New session"
	}
	return *s.Name
}

// NameFromPrompt derives a session name: prompts longer than 20 characters
// keep their first 17 followed by "...".
func NameFromPrompt(prompt string) string {
	runes := []rune(prompt)
	if len(runes) <= sessionNameMaxLen {
		return prompt
	}
	return string(runes[:sessionNameKeepChars]) + "..."
}

// PendingMessage returns the index of the pending model message, or -1.
func (s *Session) PendingMessage() int {
	for i := range s.Conversation {
		if s.Conversation[i].IsPending() {
			return i
		}
	}
	return -1
}

// MessageIndex returns the position of the message with the given ID, or -1.
func (s *Session) MessageIndex(id string) int {
	for i := range s.Conversation {
		if s.Conversation[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	c := &Session{
		ID:           s.ID,
		Conversation: make([]Message, len(s.Conversation)),
	}
	if s.Name != nil {
		name := *s.Name
		c.Name = &name
	}
	for i, msg := range s.Conversation {
		c.Conversation[i] = msg.Clone()
	}
	return c
}

// Sessions is an insertion-ordered mapping of session ID to session. Its JSON
// form is an object whose key order follows insertion order.
type Sessions struct {
	order []string
	byID  map[string]*Session
}

// NewSessions returns a collection holding sessions in the given order.
func NewSessions(sessions ...*Session) *Sessions {
	s := &Sessions{byID: make(map[string]*Session)}
	for _, session := range sessions {
		s.Put(session)
	}
	return s
}

// Len returns the number of sessions.
func (s *Sessions) Len() int {
	return len(s.order)
}

// Get returns the session with the given ID.
func (s *Sessions) Get(id string) (*Session, bool) {
	session, ok := s.byID[id]
	return session, ok
}

// Put inserts or replaces a session. Replacing keeps its original position.
func (s *Sessions) Put(session *Session) {
	if s.byID == nil {
		s.byID = make(map[string]*Session)
	}
	if _, exists := s.byID[session.ID]; !exists {
		s.order = append(s.order, session.ID)
	}
	s.byID[session.ID] = session
}

// Delete removes a session and reports whether it existed.
func (s *Sessions) Delete(id string) bool {
	if _, exists := s.byID[id]; !exists {
		return false
	}
	delete(s.byID, id)
	for i, key := range s.order {
		if key == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// IDs returns session IDs in insertion order.
func (s *Sessions) IDs() []string {
	return append([]string(nil), s.order...)
}

// List returns sessions in insertion order.
func (s *Sessions) List() []*Session {
	list := make([]*Session, 0, len(s.order))
	for _, id := range s.order {
		list = append(list, s.byID[id])
	}
	return list
}

// First returns the oldest session, or nil when empty.
func (s *Sessions) First() *Session {
	if len(s.order) == 0 {
		return nil
	}
	return s.byID[s.order[0]]
}

// Last returns the most recently inserted session, or nil when empty.
func (s *Sessions) Last() *Session {
	if len(s.order) == 0 {
		return nil
	}
	return s.byID[s.order[len(s.order)-1]]
}

// Clone returns a deep copy of s.
func (s *Sessions) Clone() *Sessions {
	c := NewSessions()
	for _, session := range s.List() {
		c.Put(session.Clone())
	}
	return c
}

// MarshalJSON encodes the sessions as an object keyed by ID, in insertion order.
func (s *Sessions) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range s.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(s.byID[id])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object keyed by ID, keeping the key order.
func (s *Sessions) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("sessions: expected object, got %v", tok)
	}

	decoded := NewSessions()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("sessions: expected key, got %v", tok)
		}
		var session Session
		if err := dec.Decode(&session); err != nil {
			return fmt.Errorf("sessions: decode %s: %w", key, err)
		}
		if session.ID == "" {
			session.ID = key
		}
		if session.ID != key {
			return fmt.Errorf("sessions: key %s holds session %s", key, session.ID)
		}
		if session.Conversation == nil {
			session.Conversation = []Message{}
		}
		decoded.Put(&session)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*s = *decoded
	return nil
}

// Settings are the per-user options sent with every prompt.
type Settings struct {
	UseRag       bool   `json:"useRag"`
	StrictPrompt bool   `json:"strictPrompt"`
	ModelName    string `json:"modelName"`
}

// State is everything the client persists between runs.
type State struct {
	Sessions         *Sessions `json:"sessions"`
	CurrentSessionID string    `json:"currentSessionId"`
	Settings         Settings  `json:"settings"`
}

// Clone returns a deep copy of s.
func (s *State) Clone() *State {
	return &State{
		Sessions:         s.Sessions.Clone(),
		CurrentSessionID: s.CurrentSessionID,
		Settings:         s.Settings,
	}
}

// CurrentSession returns the session named by CurrentSessionID, or nil.
func (s *State) CurrentSession() *Session {
	session, _ := s.Sessions.Get(s.CurrentSessionID)
	return session
}
