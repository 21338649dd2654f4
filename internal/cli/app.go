package cli

import (
	"errors"
	"fmt"
	"os"

	"bedrock-chat/internal/answer"
	"bedrock-chat/internal/config"
	"bedrock-chat/internal/deploy"
	"bedrock-chat/internal/model"
	"bedrock-chat/internal/service"
	"bedrock-chat/internal/storage"
	"bedrock-chat/pkg/logger"
)

// app holds what every command shares; it is built once per invocation.
type app struct {
	cfg       *config.Config
	storage   storage.Storage
	chat      *service.ChatService
	clientErr error
}

func newApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.InitWithOutput(cfg.Log.Level, cfg.Log.Format, os.Stderr); err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	if err := deploy.ApplyAnswerEndpoint(cfg); err != nil {
		logger.Warnf("Could not read the answer endpoint from stack outputs: %v", err)
	}

	a := &app{cfg: cfg}

	client, err := answer.New(cfg.Answer)
	if err != nil {
		a.clientErr = err
		client = unavailableClient{err: err}
	}

	a.storage = storage.New(cfg.Storage)
	defaults := model.Settings{
		UseRag:       cfg.Defaults.UseRag,
		StrictPrompt: cfg.Defaults.StrictPrompt,
		ModelName:    cfg.Defaults.ModelName,
	}
	a.chat = service.NewChatService(storage.NewSessionStore(a.storage, defaults), client)

	return a, nil
}

func (a *app) close() error {
	a.chat.Wait()
	return a.storage.Close()
}

// requireClient fails commands that need the answer endpoint when it is not
// configured.
func (a *app) requireClient() error {
	if a.clientErr == nil {
		return nil
	}
	if errors.Is(a.clientErr, answer.ErrNotConfigured) {
		return fmt.Errorf("%w: set answer.base_url, CHAT_ANSWER_BASE_URL or deploy.outputs_file", a.clientErr)
	}
	return a.clientErr
}
