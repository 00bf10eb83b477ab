package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/verte-zerg/shadow/internal/progression"
	"github.com/verte-zerg/shadow/internal/speech"
)

// DefaultUserID identifies the single local user.
const DefaultUserID = "local"

// Settings is the resolved configuration after defaults, file and environment.
type Settings struct {
	UserID              string
	DailyTarget         int
	DegradeOnStoreError bool
	WordsPerMinute      int
	SampleRate          int
	LogLevel            string
	LogFormat           string
	DBPath              string
	AudioDir            string
}

// Defaults returns settings used when nothing is configured.
func Defaults() Settings {
	return Settings{
		UserID:              DefaultUserID,
		DailyTarget:         progression.DefaultDailyTarget,
		DegradeOnStoreError: true,
		WordsPerMinute:      speech.DefaultWordsPerMinute,
		SampleRate:          speech.DefaultSampleRate,
		LogLevel:            "warn",
		LogFormat:           "console",
		DBPath:              DefaultDBPath(),
		AudioDir:            DefaultAudioDir(),
	}
}

// ApplyFile overrides settings with values present in the file.
func (s *Settings) ApplyFile(fc FileConfig) {
	setIf(&s.UserID, fc.User.ID)
	setIf(&s.DailyTarget, fc.Practice.DailyTarget)
	setIf(&s.DegradeOnStoreError, fc.Practice.DegradeOnStoreError)
	setIf(&s.WordsPerMinute, fc.Speech.WordsPerMinute)
	setIf(&s.SampleRate, fc.Speech.SampleRate)
	setIf(&s.LogLevel, fc.Log.Level)
	setIf(&s.LogFormat, fc.Log.Format)
}

// Validate reports the first invalid setting.
func (s Settings) Validate() error {
	if strings.TrimSpace(s.UserID) == "" {
		return fmt.Errorf("user id must not be empty")
	}
	if s.DailyTarget <= 0 {
		return fmt.Errorf("practice.daily-target must be > 0")
	}
	if s.WordsPerMinute <= 0 {
		return fmt.Errorf("speech.words-per-minute must be > 0")
	}
	if s.SampleRate <= 0 {
		return fmt.Errorf("speech.sample-rate must be > 0")
	}
	switch s.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json")
	}
	return nil
}

// Load resolves settings from the default config and .env locations.
func Load() (Settings, error) {
	settings := Defaults()
	fc, err := LoadConfig(DefaultConfigPath())
	if err != nil {
		return Settings{}, err
	}
	settings.ApplyFile(fc)
	if err := LoadEnvFile(DefaultEnvPath()); err != nil {
		return Settings{}, err
	}
	settings.ApplyEnv(os.LookupEnv)
	return settings, nil
}

// Template returns the commented config written by `shadow config`.
func Template() string {
	d := Defaults()
	return fmt.Sprintf(`# shadow configuration
# Uncomment a value to enable it. CLI flags and SHADOW_* variables override config values.

[user]
# id = %q                      # Local user the progress belongs to

[practice]
# daily-target = %d              # Practices per day for the daily goal
# degrade-on-store-error = %t  # Show zeroed stats when the database fails

[speech]
# words-per-minute = %d        # Speaking rate used for audio length
# sample-rate = %d           # Sample rate of generated WAV files

[log]
# level = %q                 # trace, debug, info, warn, error
# format = %q             # console or json
`,
		d.UserID,
		d.DailyTarget,
		d.DegradeOnStoreError,
		d.WordsPerMinute,
		d.SampleRate,
		d.LogLevel,
		d.LogFormat,
	)
}

func setIf[T any](target *T, value *T) {
	if value == nil {
		return
	}
	*target = *value
}
