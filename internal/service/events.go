package service

import "bedrock-chat/pkg/logger"

// EventType names a kind of state change.
type EventType string

const (
	EventSessionCreated      EventType = "session_created"
	EventSessionRemoved      EventType = "session_removed"
	EventSessionsCleared     EventType = "sessions_cleared"
	EventCurrentChanged      EventType = "current_changed"
	EventSettingsChanged     EventType = "settings_changed"
	EventConversationChanged EventType = "conversation_changed"
)

const subscriberBuffer = 32

// Event tells subscribers which part of the state changed; they read the
// new state through the service.
type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"sessionId,omitempty"`
	MessageID string    `json:"messageId,omitempty"`
}

// Subscribe returns a channel of state change events and a function that
// ends the subscription and closes the channel.
func (s *ChatService) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan Event, subscriberBuffer)
	s.subscribers[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(sub)
		}
	}
	return ch, cancel
}

// publish must be called with s.mu held.
func (s *ChatService) publish(events ...Event) {
	for _, event := range events {
		for id, ch := range s.subscribers {
			select {
			case ch <- event:
			default:
				logger.WithFields(logger.Fields{
					"subscriber": id,
					"event":      event.Type,
				}).Warn("Subscriber is not keeping up, dropping event")
			}
		}
	}
}
