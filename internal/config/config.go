package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// DefaultSystemPrompt is the instructional preamble sent with every
// completion. It is configuration: override with CHAT_SYSTEM_PROMPT.
const DefaultSystemPrompt = `You are CryptoLegal's AI Tax Assistant, an expert in cryptocurrency taxation and financial strategies. Your role is to:

- Provide clear, accurate guidance on crypto tax regulations
- Explain complex concepts in simple terms
- Direct users to official resources when needed
- Suggest tax-efficient strategies
- Help users understand DeFi opportunities and their tax implications

Important guidelines:
1. Always start with the most relevant information
2. Use specific examples when helpful
3. Cite official sources (IRS, etc.) when applicable
4. Remind users that this is educational guidance, not professional tax advice
5. Focus on US tax regulations unless specified otherwise

Knowledge Base:
- Latest IRS cryptocurrency guidelines
- Common DeFi protocols and their tax treatment
- Tax-loss harvesting strategies
- Record-keeping requirements
- Form requirements (8949, Schedule D, etc.)`

type Config struct {
	// Server
	Port string
	Env  string

	// Redis (rate-limit counter store)
	RedisURL string

	// Gemini AI
	GeminiAPIKey          string
	GeminiModel           string
	GeminiMaxOutputTokens int
	GeminiTemperature     float64

	// Chat
	SystemPrompt       string
	ChatTimeoutSeconds int

	// Rate limiting
	RateLimitRequests      int
	RateLimitWindowSeconds int

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:     getEnvOrDefault("PORT", "8080"),
		Env:      getEnvOrDefault("ENV", "development"),
		RedisURL: mustGetEnv("REDIS_URL"),

		GeminiAPIKey:          mustGetEnv("GEMINI_API_KEY"),
		GeminiModel:           getEnvOrDefault("GEMINI_MODEL", "gemini-3-flash-preview"),
		GeminiMaxOutputTokens: getEnvAsIntOrDefault("GEMINI_MAX_OUTPUT_TOKENS", 1024),
		GeminiTemperature:     getEnvAsFloatOrDefault("GEMINI_TEMPERATURE", 0.7),

		SystemPrompt:       getEnvOrDefault("CHAT_SYSTEM_PROMPT", DefaultSystemPrompt),
		ChatTimeoutSeconds: getEnvAsIntOrDefault("CHAT_TIMEOUT_SECONDS", 30),

		RateLimitRequests:      getEnvAsIntOrDefault("RATE_LIMIT_REQUESTS", 20),
		RateLimitWindowSeconds: getEnvAsIntOrDefault("RATE_LIMIT_WINDOW_SECONDS", 60),

		FrontendURL: getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsFloatOrDefault(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}
