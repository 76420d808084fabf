package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Environment variable names, without EnvPrefix.
const (
	EnvServerAddr          = "SERVER_ADDR"
	EnvServerShutdownGrace = "SERVER_SHUTDOWN_GRACE"
	EnvServerMode          = "SERVER_MODE"
	EnvServerTitle         = "SERVER_TITLE"
	EnvLogLevel            = "LOG_LEVEL"
	EnvLogCaller           = "LOG_CALLER"
	EnvLogJSON             = "LOG_JSON"
	EnvTemplatesSeedFile   = "TEMPLATES_SEED_FILE"
	EnvTemplatesDir        = "TEMPLATES_DIR"
	EnvTemplatesReload     = "TEMPLATES_RELOAD"
	EnvValidationEnforce   = "VALIDATION_ENFORCE"
	EnvThemeName           = "THEME_NAME"
	EnvThemeVariant        = "THEME_VARIANT"
	// EnvThemeTokens holds comma separated key=value pairs.
	EnvThemeTokens = "THEME_TOKENS"
)

type envReader struct {
	lookup func(string) (string, bool)
	errs   []string
}

func (r *envReader) value(name string) (string, bool) {
	v, ok := r.lookup(EnvPrefix + name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (r *envReader) str(name string, dst *string) {
	if v, ok := r.value(name); ok {
		*dst = v
	}
}

func (r *envReader) flag(name string, dst *bool) {
	v, ok := r.value(name)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("%s%s: %v", EnvPrefix, name, err))
		return
	}
	*dst = b
}

func (r *envReader) duration(name string, dst *time.Duration) {
	v, ok := r.value(name)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("%s%s: %v", EnvPrefix, name, err))
		return
	}
	*dst = d
}

func (r *envReader) tokens(name string, dst *map[string]string) {
	v, ok := r.value(name)
	if !ok {
		return
	}
	tokens, err := ParseTokens(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("%s%s: %v", EnvPrefix, name, err))
		return
	}
	*dst = tokens
}

func envLayer(lookup func(string) (string, bool)) (Config, error) {
	var cfg Config
	r := &envReader{lookup: lookup}

	r.str(EnvServerAddr, &cfg.Server.Addr)
	r.duration(EnvServerShutdownGrace, &cfg.Server.ShutdownGrace)
	r.str(EnvServerMode, &cfg.Server.Mode)
	r.str(EnvServerTitle, &cfg.Server.Title)
	r.str(EnvLogLevel, &cfg.Log.Level)
	r.flag(EnvLogCaller, &cfg.Log.Caller)
	r.flag(EnvLogJSON, &cfg.Log.JSON)
	r.str(EnvTemplatesSeedFile, &cfg.Templates.SeedFile)
	r.str(EnvTemplatesDir, &cfg.Templates.Dir)
	r.flag(EnvTemplatesReload, &cfg.Templates.Reload)
	r.flag(EnvValidationEnforce, &cfg.Validation.Enforce)
	r.str(EnvThemeName, &cfg.Theme.Name)
	r.str(EnvThemeVariant, &cfg.Theme.Variant)
	r.tokens(EnvThemeTokens, &cfg.Theme.Tokens)

	if len(r.errs) > 0 {
		return Config{}, fmt.Errorf("config: environment: %s", strings.Join(r.errs, "; "))
	}
	return cfg, nil
}

// ParseTokens reads "key=value,key=value" into a token map.
func ParseTokens(raw string) (map[string]string, error) {
	out := map[string]string{}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("token %q is not key=value", pair)
		}
		out[key] = strings.TrimSpace(value)
	}
	return out, nil
}
