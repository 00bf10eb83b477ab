package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables that override file settings.
const (
	EnvUser     = "SHADOW_USER"
	EnvDBPath   = "SHADOW_DB_PATH"
	EnvLogLevel = "SHADOW_LOG_LEVEL"
	EnvAudioDir = "SHADOW_AUDIO_DIR"
)

// LoadEnvFile loads variables from a .env file without overriding the
// process environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// ApplyEnv overrides settings from SHADOW_* variables. Empty values are ignored.
func (s *Settings) ApplyEnv(lookup func(string) (string, bool)) {
	for name, target := range map[string]*string{
		EnvUser:     &s.UserID,
		EnvDBPath:   &s.DBPath,
		EnvLogLevel: &s.LogLevel,
		EnvAudioDir: &s.AudioDir,
	} {
		if v, ok := lookup(name); ok && v != "" {
			*target = v
		}
	}
}
