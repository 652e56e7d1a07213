package config

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
)

// knownGateways maps a friendly gateway name to its OpenAI-compatible base URL.
var knownGateways = []struct {
	Name    string
	BaseURL string
}{
	{Name: "OpenRouter", BaseURL: "https://openrouter.ai/api/v1"},
	{Name: "OpenAI", BaseURL: "https://api.openai.com/v1"},
	{Name: "Custom", BaseURL: ""},
}

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .horizon.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to horizon! Let's configure your server.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Port.
	portPrompt := promptui.Prompt{
		Label:   "HTTP port",
		Default: strconv.Itoa(cfg.Port),
		Validate: func(s string) error {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 65535 {
				return fmt.Errorf("enter a port between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port prompt: %w", err)
	}
	cfg.Port, _ = strconv.Atoi(portStr)

	// 2. Data directory.
	dataPrompt := promptui.Prompt{
		Label:   "Data directory",
		Default: cfg.DataDir,
	}
	if cfg.DataDir, err = dataPrompt.Run(); err != nil {
		return nil, fmt.Errorf("data dir prompt: %w", err)
	}

	// 3. AI gateway selection.
	names := make([]string, len(knownGateways))
	for i, g := range knownGateways {
		names[i] = g.Name
	}
	gatewayPrompt := promptui.Select{
		Label: "Select AI gateway",
		Items: names,
	}
	idx, _, err := gatewayPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("gateway selection: %w", err)
	}
	if knownGateways[idx].BaseURL != "" {
		cfg.AI.BaseURL = knownGateways[idx].BaseURL
	} else {
		urlPrompt := promptui.Prompt{
			Label:   "Gateway base URL",
			Default: cfg.AI.BaseURL,
		}
		if cfg.AI.BaseURL, err = urlPrompt.Run(); err != nil {
			return nil, fmt.Errorf("base URL prompt: %w", err)
		}
	}

	// 4. Model.
	modelPrompt := promptui.Prompt{
		Label:   "Chat model",
		Default: cfg.AI.Model,
	}
	if cfg.AI.Model, err = modelPrompt.Run(); err != nil {
		return nil, fmt.Errorf("model prompt: %w", err)
	}

	// 5. Demo notifications.
	simPrompt := promptui.Select{
		Label: "Generate demo notifications",
		Items: []string{"yes", "no"},
	}
	_, sim, err := simPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("simulate selection: %w", err)
	}
	cfg.Notify.Simulate = sim == "yes"

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = NewSecret()
	}

	if err := cfg.Save(".horizon.yml"); err != nil {
		return nil, err
	}

	fmt.Println()
	fmt.Println("Configuration saved to .horizon.yml")
	if GatewayAPIKey() == "" {
		fmt.Println("Note: set HORIZON_AI_API_KEY for the AI assistant endpoints.")
	}

	return cfg, nil
}
