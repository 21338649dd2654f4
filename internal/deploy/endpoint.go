package deploy

import (
	"bedrock-chat/internal/config"
	"bedrock-chat/pkg/logger"
)

// ApplyAnswerEndpoint fills answer.base_url from the RestAPIEndpoint output
// when it is unset and an outputs file is configured.
func ApplyAnswerEndpoint(cfg *config.Config) error {
	if cfg.Answer.BaseURL != "" || cfg.Deploy.OutputsFile == "" {
		return nil
	}

	outputs, err := LoadOutputs(cfg.Deploy.OutputsFile, cfg.Deploy.StackName)
	if err != nil {
		return err
	}
	endpoint, err := outputs.APIEndpoint()
	if err != nil {
		return err
	}

	cfg.Answer.BaseURL = endpoint
	logger.WithFields(logger.Fields{
		"stack":    outputs.Stack,
		"endpoint": endpoint,
	}).Info("Answer endpoint taken from stack outputs")
	return nil
}
