package questiongen

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// MaxAttempts bounds how often generation is retried when the model
	// repeats an asked question or fails.
	MaxAttempts int

	MaxTokens   int
	Temperature float64

	// MaxPriorQuestions is the maximum number of asked questions listed in
	// the prompt.
	MaxPriorQuestions int
}

// DefaultConfig returns the recommended defaults.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:       3,
		MaxTokens:         1024,
		Temperature:       0.7,
		MaxPriorQuestions: 30,
	}
}
