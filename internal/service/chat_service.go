package service

import (
	"context"
	"strings"
	"sync"

	"bedrock-chat/internal/answer"
	"bedrock-chat/internal/model"
	"bedrock-chat/internal/render"
	"bedrock-chat/internal/storage"
	"bedrock-chat/pkg/logger"
)

// ChatService owns the chat state. Every mutation happens under mu, is
// written through to the session store and announced to subscribers.
type ChatService struct {
	store  *storage.SessionStore
	client answer.Client

	mu          sync.Mutex
	state       *model.State
	subscribers map[int]chan Event
	nextSubID   int

	inflight sync.WaitGroup
}

// Submission describes an accepted prompt. Done yields the settled model
// message once and is then closed.
type Submission struct {
	SessionID      string
	UserMessage    model.Message
	PendingMessage model.Message
	Done           <-chan model.Message
}

// NewChatService loads the saved state and fails answers left pending by a previous run.
func NewChatService(store *storage.SessionStore, client answer.Client) *ChatService {
	s := &ChatService{
		store:       store,
		client:      client,
		state:       store.Load(),
		subscribers: make(map[int]chan Event),
	}
	s.failOrphanedPending()
	return s
}

// failOrphanedPending marks pending messages left by an earlier run as
// failed; their requests died with that run.
func (s *ChatService) failOrphanedPending() {
	orphaned := 0
	for _, session := range s.state.Sessions.List() {
		for i := range session.Conversation {
			if session.Conversation[i].IsPending() {
				session.Conversation[i].State = model.MessageStateError
				orphaned++
			}
		}
	}
	if orphaned > 0 {
		logger.Warnf("Marked %d unanswered prompts from a previous run as failed", orphaned)
		s.persist()
	}
}

// SubmitPrompt appends the prompt and a pending answer to the current
// session and asks the answer client in the background. Failures of that
// request end up as an Error message, never as a returned error.
func (s *ChatService) SubmitPrompt(ctx context.Context, text string) (*Submission, error) {
	prompt := strings.TrimSpace(text)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	s.mu.Lock()
	session := s.state.CurrentSession()
	if session.PendingMessage() >= 0 {
		s.mu.Unlock()
		return nil, ErrPromptPending
	}

	userMsg := model.NewUserMessage(prompt)
	pending := model.NewPendingMessage()
	session.Conversation = append(session.Conversation, userMsg, pending)
	if session.Name == nil {
		name := model.NameFromPrompt(prompt)
		session.Name = &name
	}

	req := model.NewPromptRequest(prompt, s.state.Settings)
	sessionID := session.ID
	s.persist()
	s.publish(Event{Type: EventConversationChanged, SessionID: sessionID, MessageID: pending.ID})
	s.inflight.Add(1)
	s.mu.Unlock()

	logger.WithFields(logger.Fields{
		"session_id": sessionID,
		"message_id": pending.ID,
		"use_rag":    req.UseRag,
		"strict":     req.StrictPrompt,
		"model":      req.ModelName,
	}).Info("Prompt submitted")

	done := make(chan model.Message, 1)
	go func() {
		defer s.inflight.Done()
		defer close(done)

		// the answer outlives the caller's request
		resp, err := s.client.GetPromptResponse(context.WithoutCancel(ctx), req)
		done <- s.settle(sessionID, pending.ID, resp, err)
	}()

	return &Submission{
		SessionID:      sessionID,
		UserMessage:    userMsg,
		PendingMessage: pending,
		Done:           done,
	}, nil
}

// settle replaces the pending message messageID of session sessionID with
// the outcome of its request.
func (s *ChatService) settle(sessionID, messageID string, resp *model.PromptResponse, err error) model.Message {
	settled := model.Message{
		ID:    messageID,
		Type:  model.MessageTypeModel,
		State: model.MessageStateError,
	}
	fields := logger.Fields{"session_id": sessionID, "message_id": messageID}

	if err != nil {
		logger.WithFields(fields).Warnf("Prompt failed: %v", err)
	} else {
		out := render.Render(render.Input{
			Content:     resp.PromptResponse,
			Title:       resp.PromptTitle,
			Link:        resp.PromptS3URI,
			WordsToBold: resp.WordsToBold,
		})
		settled.State = model.MessageStateSuccess
		settled.Content = resp.PromptResponse
		settled.ContentTitle = resp.PromptTitle
		settled.ContentLink = resp.PromptS3URI
		settled.WordsToBold = resp.WordsToBold
		settled.CartItems = resp.CartItems()
		settled.HTML = string(out.Body)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.state.Sessions.Get(sessionID)
	if !ok {
		logger.WithFields(fields).Info("Session removed before its answer arrived, dropping answer")
		return settled
	}
	idx := session.MessageIndex(messageID)
	if idx < 0 || !session.Conversation[idx].IsPending() {
		logger.WithFields(fields).Warn("Pending message no longer present, dropping answer")
		return settled
	}

	session.Conversation[idx] = settled
	s.persist()
	s.publish(Event{Type: EventConversationChanged, SessionID: sessionID, MessageID: messageID})

	logger.WithFields(fields).Infof("Answer settled: %s", settled.State)
	return settled.Clone()
}

// CreateSession adds an empty session and makes it current.
func (s *ChatService) CreateSession() *model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := model.NewSession()
	s.state.Sessions.Put(session)
	s.state.CurrentSessionID = session.ID
	s.persist()
	s.publish(
		Event{Type: EventSessionCreated, SessionID: session.ID},
		Event{Type: EventCurrentChanged, SessionID: session.ID},
	)

	return session.Clone()
}

// RemoveSession deletes a session. Removing the only session clears all
// sessions instead; removing the current one makes the most recently created
// remaining session current.
func (s *ChatService) RemoveSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.Sessions.Get(id); !ok {
		return ErrSessionNotFound
	}
	if s.state.Sessions.Len() == 1 {
		s.clearLocked()
		return nil
	}

	s.state.Sessions.Delete(id)
	events := []Event{{Type: EventSessionRemoved, SessionID: id}}
	if s.state.CurrentSessionID == id {
		s.state.CurrentSessionID = s.state.Sessions.Last().ID
		events = append(events, Event{Type: EventCurrentChanged, SessionID: s.state.CurrentSessionID})
	}
	s.persist()
	s.publish(events...)

	return nil
}

// ClearSessions replaces every session with a single empty one.
func (s *ChatService) ClearSessions() *model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.clearLocked()
}

func (s *ChatService) clearLocked() *model.Session {
	session := model.NewSession()
	s.state.Sessions = model.NewSessions(session)
	s.state.CurrentSessionID = session.ID
	s.persist()
	s.publish(
		Event{Type: EventSessionsCleared, SessionID: session.ID},
		Event{Type: EventCurrentChanged, SessionID: session.ID},
	)

	return session.Clone()
}

// SetCurrentSession makes id the current session.
func (s *ChatService) SetCurrentSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.Sessions.Get(id); !ok {
		return ErrSessionNotFound
	}
	if s.state.CurrentSessionID == id {
		return nil
	}

	s.state.CurrentSessionID = id
	s.persist()
	s.publish(Event{Type: EventCurrentChanged, SessionID: id})

	return nil
}

// SetUseRag toggles retrieval for later prompts.
func (s *ChatService) SetUseRag(useRag bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := s.state.Settings
	settings.UseRag = useRag
	s.setSettingsLocked(settings)
}

// SetStrictPrompt toggles the strict prompt for later prompts.
func (s *ChatService) SetStrictPrompt(strict bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := s.state.Settings
	settings.StrictPrompt = strict
	s.setSettingsLocked(settings)
}

// SetModelName selects the model for later prompts. The name must not be blank.
func (s *ChatService) SetModelName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidModelName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	settings := s.state.Settings
	settings.ModelName = name
	s.setSettingsLocked(settings)
	return nil
}

// UpdateSettings replaces all settings at once.
func (s *ChatService) UpdateSettings(settings model.Settings) error {
	settings.ModelName = strings.TrimSpace(settings.ModelName)
	if settings.ModelName == "" {
		return ErrInvalidModelName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.setSettingsLocked(settings)
	return nil
}

// PatchSettings applies the fields set in req and returns the result.
func (s *ChatService) PatchSettings(req model.UpdateSettingsRequest) (model.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := req.Apply(s.state.Settings)
	settings.ModelName = strings.TrimSpace(settings.ModelName)
	if settings.ModelName == "" {
		return s.state.Settings, ErrInvalidModelName
	}

	s.setSettingsLocked(settings)
	return settings, nil
}

func (s *ChatService) setSettingsLocked(settings model.Settings) {
	if s.state.Settings == settings {
		return
	}
	s.state.Settings = settings
	s.persist()
	s.publish(Event{Type: EventSettingsChanged})
}

// Snapshot returns a deep copy of the whole state.
func (s *ChatService) Snapshot() *model.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.Clone()
}

// Settings returns the current settings.
func (s *ChatService) Settings() model.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.Settings
}

// GetSession returns a copy of the session with the given ID.
func (s *ChatService) GetSession(id string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.state.Sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session.Clone(), nil
}

// CurrentSession returns a copy of the current session.
func (s *ChatService) CurrentSession() *model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.CurrentSession().Clone()
}

// Backup snapshots the persisted state with the storage backend.
func (s *ChatService) Backup() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.Backup()
}

// Wait blocks until every submitted prompt has settled.
func (s *ChatService) Wait() {
	s.inflight.Wait()
}

// persist must be called with s.mu held. A failed write leaves the in-memory
// state authoritative; the next mutation writes everything again.
func (s *ChatService) persist() {
	if err := s.store.Save(s.state); err != nil {
		logger.Errorf("Failed to persist chat state: %v", err)
	}
}
