package config

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Port:            8080,
		DataDir:         "data",
		AllowAllOrigins: false,
		TokenTTLMinutes: 60,
		AI: AIConfig{
			BaseURL:        "https://openrouter.ai/api/v1",
			Model:          "openai/gpt-4o-mini",
			MaxTokens:      1024,
			Temperature:    0.7,
			EmbeddingModel: "text-embedding-3-small",
			Memory:         false,
		},
		Presence: PresenceConfig{
			StaleAfterMinutes: 5,
			PollSeconds:       30,
		},
		Notify: NotifyConfig{
			Simulate:    true,
			TickSeconds: 30,
			Probability: 0.3,
		},
	}
}
