package config

import (
	"strconv"
	"strings"
)

const envPrefix = "CONTRACT_GEN_"

// Settings holds the environment-derived options. It is read once at process
// entry and passed down; nothing else in the module consults the environment.
type Settings struct {
	LogLevel   string
	LogFormat  string
	ConfigPath string
	Strict     bool
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// SettingsFromEnv resolves Settings through lookup.
// Priority for the level: CONTRACT_GEN_LOG_LEVEL > LOG_LEVEL > "info".
func SettingsFromEnv(lookup LookupFunc) Settings {
	get := func(key string) string {
		if lookup == nil {
			return ""
		}
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	s := Settings{
		LogLevel:   get(envPrefix + "LOG_LEVEL"),
		LogFormat:  get(envPrefix + "LOG_FORMAT"),
		ConfigPath: get(envPrefix + "CONFIG"),
	}
	if s.LogLevel == "" {
		s.LogLevel = get("LOG_LEVEL")
	}
	if s.LogLevel == "" {
		s.LogLevel = "info"
	}
	if s.LogFormat == "" {
		s.LogFormat = "text"
	}
	if raw := get(envPrefix + "STRICT"); raw != "" {
		if b, err := strconv.ParseBool(raw); err == nil {
			s.Strict = b
		}
	}
	return s
}
