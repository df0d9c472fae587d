package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/nbarrios/forgeline/internal/domain"
)

type Config struct {
	APIKey          string
	ChatModel       string
	ImageModel      string
	Temperature     float32
	TopP            float32
	MaxOutputTokens int32

	StorageBackend string // "file" or "memory"
	StorePath      string
	DefaultMode    domain.Mode
	UseMockGateway bool // true = never touch the network
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "TRUE"
}

func getFloatEnv(key string, def float32) float32 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return def
	}
	return float32(f)
}

// Load reads all env vars and builds the config. A .env file in the working
// directory is applied first when present; missing is fine.
func Load() *Config {
	_ = godotenv.Load()

	apiKey := getEnv("FORGELINE_API_KEY", "")
	if apiKey == "" {
		apiKey = getEnv("GEMINI_API_KEY", "")
	}

	mode := domain.Mode(getEnv("FORGELINE_DEFAULT_MODE", string(domain.ModeLua)))
	if !domain.ValidMode(mode) {
		mode = domain.ModeLua
	}

	return &Config{
		APIKey:          apiKey,
		ChatModel:       getEnv("FORGELINE_CHAT_MODEL", "gemini-3-pro-preview"),
		ImageModel:      getEnv("FORGELINE_IMAGE_MODEL", "imagen-3.0-generate-002"),
		Temperature:     getFloatEnv("FORGELINE_TEMPERATURE", 0.8),
		TopP:            getFloatEnv("FORGELINE_TOP_P", 0.95),
		MaxOutputTokens: 8192,

		StorageBackend: getEnv("FORGELINE_STORAGE_BACKEND", "file"),
		StorePath:      getEnv("FORGELINE_STORE_PATH", defaultStorePath()),
		DefaultMode:    mode,
		UseMockGateway: getBoolEnv("FORGELINE_USE_MOCK_GATEWAY", false),
	}
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "forgeline-store.json"
	}
	return filepath.Join(dir, "forgeline", "store.json")
}
