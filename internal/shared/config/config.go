package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	Port        string
	Env         string
	FrontendURL string

	// LLM backends, tried in order on every classification call
	LLMProviders []string
	LLMModel     string
	OpenAIKey    string
	GeminiKey    string
	ClaudeKey    string

	// Optional CRM event fan-out
	AMQPURL      string
	AMQPExchange string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment variables")
	}

	cfg := &Config{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		Port:         os.Getenv("PORT"),
		Env:          os.Getenv("ENV"),
		FrontendURL:  os.Getenv("FRONTEND_URL"),
		LLMModel:     os.Getenv("LLM_MODEL"),
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		GeminiKey:    os.Getenv("GEMINI_API_KEY"),
		ClaudeKey:    os.Getenv("CLAUDE_API_KEY"),
		AMQPURL:      os.Getenv("AMQP_URL"),
		AMQPExchange: os.Getenv("AMQP_EXCHANGE"),
	}

	// Default values
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.FrontendURL == "" {
		cfg.FrontendURL = "http://localhost:5173"
	}
	if cfg.AMQPExchange == "" {
		cfg.AMQPExchange = "crm.events"
	}

	providers := os.Getenv("LLM_PROVIDERS")
	if providers == "" {
		providers = "openai,gemini,claude"
	}
	for _, p := range strings.Split(providers, ",") {
		if p = strings.TrimSpace(p); p != "" {
			cfg.LLMProviders = append(cfg.LLMProviders, p)
		}
	}

	return cfg
}
