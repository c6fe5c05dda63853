package providers

import (
	"fmt"
	"os"
	"strings"

	"github.com/ChamsBouzaiene/sidekick/internal/engine"
)

// Role identifies which reasoning capability a client is built for. The two
// roles default to different providers: a fast model does the acting, a
// stronger one does the judging.
type Role string

const (
	RoleAssistant Role = "assistant"
	RoleEvaluator Role = "evaluator"
)

const (
	defaultAssistantProvider = "groq"
	defaultAssistantModel    = "llama-3.1-70b-versatile"
	defaultEvaluatorProvider = "openai"
	defaultEvaluatorModel    = "gpt-4o"
)

// NewClientsFromEnv builds both role clients from environment variables.
// SIDEKICK_ASSISTANT_PROVIDER / SIDEKICK_EVALUATOR_PROVIDER select providers,
// SIDEKICK_ASSISTANT_MODEL / SIDEKICK_EVALUATOR_MODEL select models, and the
// usual provider API key variables supply credentials.
func NewClientsFromEnv() (engine.Clients, error) {
	assistant, assistantModel, err := NewClientForRole(RoleAssistant)
	if err != nil {
		return engine.Clients{}, fmt.Errorf("assistant client: %w", err)
	}

	evaluator, evaluatorModel, err := NewClientForRole(RoleEvaluator)
	if err != nil {
		return engine.Clients{}, fmt.Errorf("evaluator client: %w", err)
	}

	return engine.Clients{
		Assistant:      assistant,
		AssistantModel: assistantModel,
		Evaluator:      evaluator,
		EvaluatorModel: evaluatorModel,
	}, nil
}

// NewClientForRole creates the client and model name for one role.
func NewClientForRole(role Role) (engine.LLMClient, string, error) {
	roleUpper := strings.ToUpper(string(role))

	provider := os.Getenv("SIDEKICK_" + roleUpper + "_PROVIDER")
	if provider == "" {
		if role == RoleEvaluator {
			provider = defaultEvaluatorProvider
		} else {
			provider = defaultAssistantProvider
		}
		// When the default provider has no credentials, run the role on
		// whichever provider is configured instead of failing outright. An
		// explicit SIDEKICK_*_PROVIDER choice is never overridden.
		if !hasCredentials(provider) {
			if alt := configuredProvider(); alt != "" {
				provider = alt
			}
		}
	}

	modelName := os.Getenv("SIDEKICK_" + roleUpper + "_MODEL")

	client, defaultModel, err := newClient(provider)
	if err != nil {
		return nil, "", err
	}
	if modelName == "" {
		modelName = defaultModel
		if role == RoleEvaluator && provider == defaultEvaluatorProvider {
			modelName = defaultEvaluatorModel
		}
		if role == RoleAssistant && provider == defaultAssistantProvider {
			modelName = defaultAssistantModel
		}
	}

	return client, modelName, nil
}

// hasCredentials reports whether the environment carries what newClient needs
// for the provider. Ollama counts only when its base URL is set explicitly.
func hasCredentials(provider string) bool {
	switch provider {
	case "openai":
		return os.Getenv("OPENAI_API_KEY") != ""
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY") != ""
	case "groq":
		return os.Getenv("GROQ_API_KEY") != ""
	case "deepseek":
		return os.Getenv("DEEPSEEK_API_KEY") != ""
	case "ollama":
		return os.Getenv("OLLAMA_BASE_URL") != ""
	}
	return false
}

// configuredProvider returns the first provider with credentials present, in
// preference order, or "" when none is configured.
func configuredProvider() string {
	for _, p := range []string{"groq", "openai", "anthropic", "deepseek", "ollama"} {
		if hasCredentials(p) {
			return p
		}
	}
	return ""
}

func newClient(provider string) (engine.LLMClient, string, error) {
	switch provider {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, "", fmt.Errorf("OPENAI_API_KEY not set")
		}
		client, err := NewOpenAIClient(apiKey, os.Getenv("OPENAI_BASE_URL"))
		return client, "gpt-4o-mini", err

	case "anthropic":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, "", fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
		client, err := NewAnthropicClient(apiKey)
		return client, "claude-3-5-sonnet-20241022", err

	case "groq":
		// OpenAI-compatible, very fast inference.
		apiKey := os.Getenv("GROQ_API_KEY")
		if apiKey == "" {
			return nil, "", fmt.Errorf("GROQ_API_KEY not set")
		}
		baseURL := os.Getenv("GROQ_BASE_URL")
		if baseURL == "" {
			baseURL = "https://api.groq.com/openai/v1"
		}
		client, err := NewOpenAIClient(apiKey, baseURL)
		return client, defaultAssistantModel, err

	case "deepseek":
		apiKey := os.Getenv("DEEPSEEK_API_KEY")
		if apiKey == "" {
			return nil, "", fmt.Errorf("DEEPSEEK_API_KEY not set")
		}
		client, err := NewOpenAIClient(apiKey, "https://api.deepseek.com/v1")
		return client, "deepseek-chat", err

	case "ollama":
		// Local OpenAI-compatible server; the key is a placeholder.
		baseURL := os.Getenv("OLLAMA_BASE_URL")
		if baseURL == "" {
			baseURL = "http://localhost:11434/v1"
		}
		apiKey := os.Getenv("OLLAMA_API_KEY")
		if apiKey == "" {
			apiKey = "ollama"
		}
		client, err := NewOpenAIClient(apiKey, baseURL)
		return client, "llama3.1", err

	default:
		return nil, "", fmt.Errorf("unknown provider: %s (supported: openai, anthropic, groq, deepseek, ollama)", provider)
	}
}
