package storage

import (
	"encoding/json"
	"fmt"

	"bedrock-chat/internal/config"
	"bedrock-chat/internal/model"
	"bedrock-chat/pkg/logger"
)

// Persistence keys, one JSON value each.
const (
	KeyChatSessions     = "CHAT_SESSIONS"
	KeyUseRag           = "USE_RAG"
	KeyStrictPrompt     = "STRICT_PROMPT"
	KeyModelName        = "MODEL_NAME"
	KeyCurrentSessionID = "CURRENT_CHAT_SESSION_ID"
)

// New builds the backend named by cfg.Type, falling back to memory when it
// cannot be initialized.
func New(cfg config.StorageConfig) Storage {
	var store Storage

	switch cfg.Type {
	case "disk":
		store = NewDiskStorage(cfg.DataDir)
	case "sqlite":
		store = NewSQLiteStorage(cfg.SQLitePath)
	default:
		store = NewMemoryStorage()
	}

	if err := store.Init(); err != nil {
		logger.Errorf("Failed to initialize %s storage, falling back to memory: %v", cfg.Type, err)
		store = NewMemoryStorage()
	}

	return store
}

// SessionStore maps the chat state onto the persistence keys of a Storage.
type SessionStore struct {
	storage  Storage
	defaults model.Settings
}

// NewSessionStore creates a SessionStore over storage. defaults fill in missing settings.
func NewSessionStore(storage Storage, defaults model.Settings) *SessionStore {
	return &SessionStore{
		storage:  storage,
		defaults: defaults,
	}
}

// Load reconstructs the persisted state. Missing or corrupt values fall back
// to their defaults, so Load always returns a usable state with at least one
// session and a current session that exists.
func (s *SessionStore) Load() *model.State {
	state := &model.State{Settings: s.defaults}

	var sessions model.Sessions
	if s.read(KeyChatSessions, &sessions) && sessions.Len() > 0 {
		state.Sessions = &sessions
	} else {
		state.Sessions = model.NewSessions(model.NewSession())
	}

	var useRag, strictPrompt bool
	if s.read(KeyUseRag, &useRag) {
		state.Settings.UseRag = useRag
	}
	if s.read(KeyStrictPrompt, &strictPrompt) {
		state.Settings.StrictPrompt = strictPrompt
	}
	var modelName string
	if s.read(KeyModelName, &modelName) && modelName != "" {
		state.Settings.ModelName = modelName
	}

	var currentID string
	s.read(KeyCurrentSessionID, &currentID)
	if _, ok := state.Sessions.Get(currentID); !ok {
		currentID = state.Sessions.First().ID
	}
	state.CurrentSessionID = currentID

	return state
}

// Save writes every key of the state.
func (s *SessionStore) Save(state *model.State) error {
	values := []struct {
		key   string
		value any
	}{
		{KeyChatSessions, state.Sessions},
		{KeyUseRag, state.Settings.UseRag},
		{KeyStrictPrompt, state.Settings.StrictPrompt},
		{KeyModelName, state.Settings.ModelName},
		{KeyCurrentSessionID, state.CurrentSessionID},
	}

	for _, v := range values {
		data, err := json.Marshal(v.value)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidData, v.key, err)
		}
		if err := s.storage.Set(v.key, string(data)); err != nil {
			return fmt.Errorf("failed to save %s: %w", v.key, err)
		}
	}

	return nil
}

// Backup asks the backend for a backup copy.
func (s *SessionStore) Backup() error {
	return s.storage.Backup()
}

func (s *SessionStore) read(key string, into any) bool {
	raw, found, err := s.storage.Get(key)
	if err != nil {
		logger.Warnf("Failed to read %s, using default: %v", key, err)
		return false
	}
	if !found {
		return false
	}
	if err := json.Unmarshal([]byte(raw), into); err != nil {
		logger.Warnf("Ignoring corrupt value for %s: %v", key, err)
		return false
	}
	return true
}
