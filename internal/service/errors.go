package service

import (
	"errors"

	"bedrock-chat/internal/storage"
)

var (
	ErrEmptyPrompt      = errors.New("prompt is empty")
	ErrPromptPending    = errors.New("an answer is already pending in this session")
	ErrSessionNotFound  = storage.ErrSessionNotFound
	ErrInvalidModelName = errors.New("model name must not be empty")
)
