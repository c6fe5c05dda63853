package engine

import "time"

// DefaultMaxRounds caps evaluator rejections per run. The evaluator prompt is
// the primary stuck-detection mechanism; this ceiling is the hard fallback
// that forces RequiredUserInput when prompting alone fails to converge.
const DefaultMaxRounds = 10

// DefaultVerdictAttempts is how many times a malformed evaluator verdict is
// re-requested before the run fails with a ReasoningError.
const DefaultVerdictAttempts = 3

// DefaultRetryConfig returns sensible default retry policies.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		LLMPolicy: RetryPolicy{
			MaxRetries:   3,
			InitialDelay: 1 * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
			Jitter:       true,
		},
		ToolPolicy: RetryPolicy{
			MaxRetries:   2,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     10 * time.Second,
			Multiplier:   2.0,
			Jitter:       true,
		},
	}
}

// getRetryConfig returns the retry configuration, using defaults if not provided.
func getRetryConfig(opts ChatOptions) *RetryConfig {
	if opts.RetryConfig != nil {
		return opts.RetryConfig
	}
	defaultConfig := DefaultRetryConfig()
	return &defaultConfig
}
