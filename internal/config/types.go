package config

// Config is the top-level horizon configuration, corresponding to .horizon.yml.
type Config struct {
	Port            int     `yaml:"port" koanf:"port"`
	DataDir         string  `yaml:"data_dir" koanf:"data_dir"`
	AllowAllOrigins bool    `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	JWTSecret       string  `yaml:"jwt_secret" koanf:"jwt_secret"`
	TokenTTLMinutes int     `yaml:"token_ttl_minutes" koanf:"token_ttl_minutes"`

	AI       AIConfig       `yaml:"ai" koanf:"ai"`
	Presence PresenceConfig `yaml:"presence" koanf:"presence"`
	Notify   NotifyConfig   `yaml:"notify" koanf:"notify"`
}

// AIConfig holds settings for the upstream LLM gateway.
type AIConfig struct {
	BaseURL        string  `yaml:"base_url" koanf:"base_url"`
	Model          string  `yaml:"model" koanf:"model"`
	MaxTokens      int     `yaml:"max_tokens" koanf:"max_tokens"`
	Temperature    float64 `yaml:"temperature" koanf:"temperature"`
	EmbeddingModel string  `yaml:"embedding_model" koanf:"embedding_model"`
	Memory         bool    `yaml:"memory" koanf:"memory"`
}

// PresenceConfig controls the online-user bookkeeping.
type PresenceConfig struct {
	StaleAfterMinutes int `yaml:"stale_after_minutes" koanf:"stale_after_minutes"`
	PollSeconds       int `yaml:"poll_seconds" koanf:"poll_seconds"`
}

// NotifyConfig controls the demo notification generator.
type NotifyConfig struct {
	Simulate    bool    `yaml:"simulate" koanf:"simulate"`
	TickSeconds int     `yaml:"tick_seconds" koanf:"tick_seconds"`
	Probability float64 `yaml:"probability" koanf:"probability"`
}
