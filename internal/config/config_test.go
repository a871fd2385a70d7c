package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

// isolate points the user config dir at a fresh home and clears every
// FIN_ADVISOR_* variable this package reads.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, key := range []string{
		EnvDataDir, EnvDBPath, EnvPort, EnvStore, EnvPostgresDSN, EnvResponder,
		EnvLLMProvider, EnvLLMAPIKey, EnvLLMBaseURL, EnvLLMModel, EnvLLMTimeout,
		EnvCORSOrigins, EnvGuidanceCacheSize, EnvGuidanceCacheTTL,
		"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY",
	} {
		t.Setenv(key, "")
	}
	SetRuntimeDataDir("")
	t.Cleanup(func() { SetRuntimeDataDir("") })
	return home
}

func TestRuntimePort(t *testing.T) {
	orig := GetRuntimePort()
	defer SetRuntimePort(orig)

	SetRuntimePort(0)
	if got := GetRuntimePort(); got != orig {
		t.Fatalf("expected port to remain %d, got %d", orig, got)
	}

	SetRuntimePort(9090)
	if got := GetRuntimePort(); got != 9090 {
		t.Fatalf("expected port 9090, got %d", got)
	}
}

func TestRuntimeDataDirAndEnv(t *testing.T) {
	isolate(t)

	tmp := t.TempDir()
	SetRuntimeDataDir(tmp)
	dir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir: %v", err)
	}
	if dir != tmp {
		t.Fatalf("expected runtime dir %q, got %q", tmp, dir)
	}

	SetRuntimeDataDir("")
	tmpEnv := filepath.Join(t.TempDir(), "data")
	t.Setenv(EnvDataDir, tmpEnv)
	dir, err = GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir env: %v", err)
	}
	if dir != tmpEnv {
		t.Fatalf("expected env dir %q, got %q", tmpEnv, dir)
	}
	if _, err := os.Stat(tmpEnv); err != nil {
		t.Fatalf("expected data dir to be created: %v", err)
	}
}

func TestGetDBPathEnv(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "db.sqlite")
	t.Setenv(EnvDBPath, path)
	got, err := GetDBPath()
	if err != nil {
		t.Fatalf("GetDBPath: %v", err)
	}
	if got != path {
		t.Fatalf("expected %q, got %q", path, got)
	}
}

func TestIsMacOSWindows(t *testing.T) {
	if IsMacOS() != (runtime.GOOS == "darwin") {
		t.Fatalf("IsMacOS mismatch")
	}
	if IsWindows() != (runtime.GOOS == "windows") {
		t.Fatalf("IsWindows mismatch")
	}
}

func TestLoadSaveUserConfig(t *testing.T) {
	home := isolate(t)

	if got := LoadUserConfig(); got.DBName != defaultDBName || got.DataDir != "" {
		t.Fatalf("expected defaults without a config file, got %+v", got)
	}

	cfg := UserConfig{
		DBName:      "my.db",
		DataDir:     filepath.Join(home, "data"),
		LLMProvider: ProviderAnthropic,
	}
	if err := SaveUserConfig(cfg); err != nil {
		t.Fatalf("SaveUserConfig: %v", err)
	}

	loaded := LoadUserConfig()
	if loaded != cfg {
		t.Fatalf("loaded config mismatch: %+v", loaded)
	}

	path, err := GetDBPath()
	if err != nil {
		t.Fatalf("GetDBPath: %v", err)
	}
	if path != filepath.Join(cfg.DataDir, cfg.DBName) {
		t.Fatalf("expected db path %q, got %q", filepath.Join(cfg.DataDir, cfg.DBName), path)
	}
}

func TestLocalConfigPath(t *testing.T) {
	isolate(t)
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	tmp := t.TempDir()
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	defer func() {
		_ = os.Chdir(cwd)
	}()

	path := filepath.Join(tmp, "config.json")
	if err := os.WriteFile(path, []byte(`{"db_name":"portable.db"}`), 0o644); err != nil {
		t.Fatalf("write local config: %v", err)
	}

	local := localConfigPath()
	if local == "" {
		t.Fatalf("expected local path, got empty")
	}
	localEval, localErr := filepath.EvalSymlinks(local)
	pathEval, pathErr := filepath.EvalSymlinks(path)
	if localErr == nil && pathErr == nil {
		if localEval != pathEval {
			t.Fatalf("expected local path %q, got %q", pathEval, localEval)
		}
	} else if local != path {
		t.Fatalf("expected local path %q, got %q", path, local)
	}

	if got := LoadUserConfig().DBName; got != "portable.db" {
		t.Fatalf("expected the local config to be read, got %q", got)
	}
}

func TestFromEnvDefaults(t *testing.T) {
	isolate(t)
	dataDir := t.TempDir()
	t.Setenv(EnvDataDir, dataDir)

	s, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if s.Store != StoreSQLite || s.Responder != ResponderLLM {
		t.Fatalf("unexpected store/responder %q/%q", s.Store, s.Responder)
	}
	if s.DBPath != filepath.Join(dataDir, defaultDBName) || s.LogDir != filepath.Join(dataDir, "logs") {
		t.Fatalf("unexpected paths %+v", s)
	}
	if s.LLM.Provider != ProviderOpenAI || s.LLM.Model != "gpt-3.5-turbo" || s.LLM.APIKey != "" {
		t.Fatalf("unexpected llm settings %+v", s.LLM)
	}
	if len(s.CORSOrigins) != 1 || s.CORSOrigins[0] != "*" {
		t.Fatalf("unexpected cors origins %v", s.CORSOrigins)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv(EnvDataDir, t.TempDir())
	t.Setenv(EnvStore, "POSTGRES")
	t.Setenv(EnvPostgresDSN, "postgres://u:p@localhost/advisor?sslmode=disable")
	t.Setenv(EnvResponder, "template")
	t.Setenv(EnvLLMProvider, "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", " sk-ant ")
	t.Setenv(EnvLLMTimeout, "45s")
	t.Setenv(EnvCORSOrigins, "https://a.example, https://b.example,")
	t.Setenv(EnvGuidanceCacheSize, "50")
	t.Setenv(EnvGuidanceCacheTTL, "10m")

	s, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if s.Store != StorePostgres || s.DBPath != "" {
		t.Fatalf("unexpected store settings %+v", s)
	}
	if s.Responder != ResponderTemplate {
		t.Fatalf("unexpected responder %q", s.Responder)
	}
	want := LLMSettings{Provider: ProviderAnthropic, APIKey: "sk-ant", Model: "claude-3-5-haiku-latest", Timeout: 45 * time.Second}
	if s.LLM != want {
		t.Fatalf("got %+v want %+v", s.LLM, want)
	}
	if len(s.CORSOrigins) != 2 || s.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected cors origins %v", s.CORSOrigins)
	}
	if s.CacheEntries != 50 || s.CacheTTL != 10*time.Minute {
		t.Fatalf("unexpected cache settings %d %v", s.CacheEntries, s.CacheTTL)
	}
}

func TestFromEnvExplicitKeyWins(t *testing.T) {
	isolate(t)
	t.Setenv(EnvDataDir, t.TempDir())
	t.Setenv(EnvLLMAPIKey, "explicit")
	t.Setenv("OPENAI_API_KEY", "fallback")
	t.Setenv(EnvLLMModel, "gpt-4o-mini")

	s, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if s.LLM.APIKey != "explicit" || s.LLM.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected llm settings %+v", s.LLM)
	}
}

func TestFromEnvInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"store", map[string]string{EnvStore: "mongo"}},
		{"postgres without dsn", map[string]string{EnvStore: "postgres"}},
		{"responder", map[string]string{EnvResponder: "oracle"}},
		{"provider", map[string]string{EnvLLMProvider: "llama"}},
		{"timeout", map[string]string{EnvLLMTimeout: "soon"}},
		{"cache size", map[string]string{EnvGuidanceCacheSize: "-1"}},
		{"cache ttl", map[string]string{EnvGuidanceCacheTTL: "0s"}},
		{"port", map[string]string{EnvPort: "http"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(EnvDataDir, t.TempDir())
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := FromEnv(); err == nil {
				t.Fatalf("expected error for %v", tc.env)
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	isolate(t)
	dataDir := t.TempDir()
	envFile := filepath.Join(t.TempDir(), "advisor.env")
	content := EnvDataDir + "=" + dataDir + "\n" + EnvResponder + "=template\n"
	if err := os.WriteFile(envFile, []byte(content), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	// godotenv sets variables directly; unset them again after the test.
	t.Cleanup(func() {
		_ = os.Unsetenv(EnvDataDir)
		_ = os.Unsetenv(EnvResponder)
	})
	_ = os.Unsetenv(EnvDataDir)
	_ = os.Unsetenv(EnvResponder)

	s, err := Load(envFile)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.DataDir != dataDir || s.Responder != ResponderTemplate {
		t.Fatalf("expected values from the env file, got %+v", s)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatal("expected error for an explicit missing env file")
	}
}
