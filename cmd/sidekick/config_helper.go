package main

import (
	"os"

	"github.com/ChamsBouzaiene/sidekick/internal/config"
)

// applyConfigToEnv seeds the environment from the saved config so the
// provider factory sees the user's choices. Values already present in the
// environment (shell or .env) win.
func applyConfigToEnv(cfg *config.Config) {
	setIfUnset("SIDEKICK_ASSISTANT_PROVIDER", cfg.AssistantProvider)
	setIfUnset("SIDEKICK_ASSISTANT_MODEL", cfg.AssistantModel)
	setIfUnset("SIDEKICK_EVALUATOR_PROVIDER", cfg.EvaluatorProvider)
	setIfUnset("SIDEKICK_EVALUATOR_MODEL", cfg.EvaluatorModel)

	setIfUnset("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	setIfUnset("ANTHROPIC_API_KEY", cfg.AnthropicAPIKey)
	setIfUnset("GROQ_API_KEY", cfg.GroqAPIKey)

	setIfUnset("SERPER_API_KEY", cfg.SerperAPIKey)
	setIfUnset("PUSHOVER_TOKEN", cfg.PushoverToken)
	setIfUnset("PUSHOVER_USER", cfg.PushoverUserKey)
}

func setIfUnset(key, value string) {
	if value != "" && os.Getenv(key) == "" {
		os.Setenv(key, value)
	}
}
