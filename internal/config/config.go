package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	appName       = "FinAdvisor"
	defaultDBName = "advisor.db"
	defaultPort   = 8000
)

// Environment variables read by Load.
const (
	EnvDataDir           = "FIN_ADVISOR_DATA_DIR"
	EnvDBPath            = "FIN_ADVISOR_DB_PATH"
	EnvPort              = "FIN_ADVISOR_PORT"
	EnvStore             = "FIN_ADVISOR_STORE"
	EnvPostgresDSN       = "FIN_ADVISOR_POSTGRES_DSN"
	EnvResponder         = "FIN_ADVISOR_RESPONDER"
	EnvLLMProvider       = "FIN_ADVISOR_LLM_PROVIDER"
	EnvLLMAPIKey         = "FIN_ADVISOR_LLM_API_KEY"
	EnvLLMBaseURL        = "FIN_ADVISOR_LLM_BASE_URL"
	EnvLLMModel          = "FIN_ADVISOR_LLM_MODEL"
	EnvLLMTimeout        = "FIN_ADVISOR_LLM_TIMEOUT"
	EnvCORSOrigins       = "FIN_ADVISOR_CORS_ORIGINS"
	EnvGuidanceCacheSize = "FIN_ADVISOR_GUIDANCE_CACHE_SIZE"
	EnvGuidanceCacheTTL  = "FIN_ADVISOR_GUIDANCE_CACHE_TTL"
)

type StoreKind string

const (
	StoreSQLite   StoreKind = "sqlite"
	StorePostgres StoreKind = "postgres"
	StoreMemory   StoreKind = "memory"
)

type ResponderKind string

const (
	ResponderLLM      ResponderKind = "llm"
	ResponderTemplate ResponderKind = "template"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

var defaultModels = map[string]string{
	ProviderOpenAI:    "gpt-3.5-turbo",
	ProviderAnthropic: "claude-3-5-haiku-latest",
	ProviderGemini:    "gemini-1.5-flash",
}

// providerKeyEnv is consulted when FIN_ADVISOR_LLM_API_KEY is unset.
var providerKeyEnv = map[string]string{
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
	ProviderGemini:    "GEMINI_API_KEY",
}

// UserConfig is the JSON file kept in the application config directory.
type UserConfig struct {
	DBName      string `json:"db_name"`
	DataDir     string `json:"data_dir"`
	LLMProvider string `json:"llm_provider,omitempty"`
	LLMModel    string `json:"llm_model,omitempty"`
}

// LLMSettings selects the remote completion backend. An empty APIKey means
// no remote backend; every answer then comes from the mock.
type LLMSettings struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration
}

// Settings is the resolved process configuration.
type Settings struct {
	Port         int
	DataDir      string
	DBPath       string
	LogDir       string
	Store        StoreKind
	PostgresDSN  string
	Responder    ResponderKind
	LLM          LLMSettings
	CORSOrigins  []string
	CacheEntries int64
	CacheTTL     time.Duration
}

var runtimeDataDir string
var runtimePort = defaultPort

func IsMacOS() bool {
	return runtime.GOOS == "darwin"
}

func IsWindows() bool {
	return runtime.GOOS == "windows"
}

// SetRuntimeDataDir pins the data directory, typically from a command-line
// flag. It wins over every other source.
func SetRuntimeDataDir(dir string) {
	runtimeDataDir = dir
}

func SetRuntimePort(port int) {
	if port > 0 {
		runtimePort = port
	}
}

func GetRuntimePort() int {
	return runtimePort
}

func appConfigDir() (string, error) {
	if IsMacOS() {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", appName), nil
	}
	if IsWindows() {
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = home
		}
		return filepath.Join(appData, appName), nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "finadvisor"), nil
	}
	return filepath.Join(configDir, "finadvisor"), nil
}

// UserConfigPath is where SaveUserConfig writes.
func UserConfigPath() (string, error) {
	dir, err := appConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// localConfigPath finds a config.json next to the working directory or the
// executable, for portable installs.
func localConfigPath() string {
	if cwd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(cwd, "config.json")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), "config.json")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// LoadUserConfig reads the user config, falling back to defaults when the
// file is missing or unreadable.
func LoadUserConfig() UserConfig {
	defaults := UserConfig{DBName: defaultDBName}
	configPath, err := UserConfigPath()
	if err != nil {
		return defaults
	}
	pathToUse := ""
	if _, err := os.Stat(configPath); err == nil {
		pathToUse = configPath
	} else if local := localConfigPath(); local != "" {
		pathToUse = local
	}
	if pathToUse == "" {
		return defaults
	}
	file, err := os.Open(pathToUse)
	if err != nil {
		return defaults
	}
	defer file.Close()

	cfg := defaults
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return defaults
	}
	if cfg.DBName == "" {
		cfg.DBName = defaultDBName
	}
	return cfg
}

func SaveUserConfig(cfg UserConfig) error {
	path, err := UserConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// GetDataDir resolves and creates the data directory: runtime override,
// then FIN_ADVISOR_DATA_DIR, then the user config, then the OS config dir.
func GetDataDir() (string, error) {
	dir := runtimeDataDir
	if dir == "" {
		dir = os.Getenv(EnvDataDir)
	}
	if dir == "" {
		dir = LoadUserConfig().DataDir
	}
	if dir == "" {
		defaultDir, err := appConfigDir()
		if err != nil {
			return "", err
		}
		dir = defaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func GetDBPath() (string, error) {
	if envPath := os.Getenv(EnvDBPath); envPath != "" {
		return envPath, nil
	}
	cfg := LoadUserConfig()
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, cfg.DBName), nil
}

// Load reads envFiles (or ./.env when none are given) into the process
// environment without overriding variables that are already set, then
// resolves Settings. A missing default .env is not an error.
func Load(envFiles ...string) (Settings, error) {
	if len(envFiles) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Settings{}, fmt.Errorf("load .env: %w", err)
		}
	} else if err := godotenv.Load(envFiles...); err != nil {
		return Settings{}, fmt.Errorf("load env files: %w", err)
	}
	return FromEnv()
}

// FromEnv resolves Settings from the current environment and user config.
func FromEnv() (Settings, error) {
	user := LoadUserConfig()
	s := Settings{
		Port:        runtimePort,
		Store:       StoreKind(strings.ToLower(envOr(EnvStore, string(StoreSQLite)))),
		PostgresDSN: strings.TrimSpace(os.Getenv(EnvPostgresDSN)),
		Responder:   ResponderKind(strings.ToLower(envOr(EnvResponder, string(ResponderLLM)))),
		CORSOrigins: splitList(envOr(EnvCORSOrigins, "*")),
	}

	if raw := strings.TrimSpace(os.Getenv(EnvPort)); raw != "" && runtimePort == defaultPort {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 {
			return Settings{}, fmt.Errorf("invalid %s: %q", EnvPort, raw)
		}
		s.Port = port
	}

	switch s.Store {
	case StoreSQLite, StorePostgres, StoreMemory:
	default:
		return Settings{}, fmt.Errorf("invalid %s: %q", EnvStore, s.Store)
	}
	if s.Store == StorePostgres && s.PostgresDSN == "" {
		return Settings{}, fmt.Errorf("%s is required when %s=postgres", EnvPostgresDSN, EnvStore)
	}
	switch s.Responder {
	case ResponderLLM, ResponderTemplate:
	default:
		return Settings{}, fmt.Errorf("invalid %s: %q", EnvResponder, s.Responder)
	}

	llm, err := llmFromEnv(user)
	if err != nil {
		return Settings{}, err
	}
	s.LLM = llm

	if raw := strings.TrimSpace(os.Getenv(EnvGuidanceCacheSize)); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			return Settings{}, fmt.Errorf("invalid %s: %q", EnvGuidanceCacheSize, raw)
		}
		s.CacheEntries = n
	}
	if raw := strings.TrimSpace(os.Getenv(EnvGuidanceCacheTTL)); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return Settings{}, fmt.Errorf("invalid %s: %q", EnvGuidanceCacheTTL, raw)
		}
		s.CacheTTL = d
	}

	dataDir, err := GetDataDir()
	if err != nil {
		return Settings{}, fmt.Errorf("resolve data dir: %w", err)
	}
	s.DataDir = dataDir
	s.LogDir = filepath.Join(dataDir, "logs")
	if s.Store == StoreSQLite {
		if s.DBPath, err = GetDBPath(); err != nil {
			return Settings{}, fmt.Errorf("resolve db path: %w", err)
		}
	}
	return s, nil
}

func llmFromEnv(user UserConfig) (LLMSettings, error) {
	provider := strings.ToLower(envOr(EnvLLMProvider, user.LLMProvider))
	if provider == "" {
		provider = ProviderOpenAI
	}
	if _, ok := defaultModels[provider]; !ok {
		return LLMSettings{}, fmt.Errorf("invalid %s: %q", EnvLLMProvider, provider)
	}

	llm := LLMSettings{
		Provider: provider,
		APIKey:   strings.TrimSpace(os.Getenv(EnvLLMAPIKey)),
		BaseURL:  strings.TrimSpace(os.Getenv(EnvLLMBaseURL)),
		Model:    envOr(EnvLLMModel, user.LLMModel),
	}
	if llm.APIKey == "" {
		llm.APIKey = strings.TrimSpace(os.Getenv(providerKeyEnv[provider]))
	}
	if llm.Model == "" {
		llm.Model = defaultModels[provider]
	}
	if raw := strings.TrimSpace(os.Getenv(EnvLLMTimeout)); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return LLMSettings{}, fmt.Errorf("invalid %s: %q", EnvLLMTimeout, raw)
		}
		llm.Timeout = d
	}
	return llm, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return strings.TrimSpace(fallback)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
