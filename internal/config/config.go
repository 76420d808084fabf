// Package config loads formbuilder settings. Layers apply in order: built-in
// defaults, a TOML file, .env files and FORMBUILDER_* environment variables,
// then command-line overrides. The merged result is validated before use.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// DefaultFile is read when LoadOptions.File is empty and the file exists.
const DefaultFile = "formbuilder.toml"

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "FORMBUILDER_"

// Config is the full application configuration.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Log        LogConfig        `toml:"log"`
	Templates  TemplatesConfig  `toml:"templates"`
	Validation ValidationConfig `toml:"validation"`
	Theme      ThemeConfig      `toml:"theme"`
}

type ServerConfig struct {
	Addr          string        `toml:"addr" validate:"required,hostname_port"`
	ShutdownGrace time.Duration `toml:"shutdown_grace" validate:"gte=0"`
	Mode          string        `toml:"mode" validate:"oneof=debug release test"`
	Title         string        `toml:"title"`
}

type LogConfig struct {
	Level  string `toml:"level" validate:"oneof=trace debug info warn warning error fatal"`
	Caller bool   `toml:"caller"`
	JSON   bool   `toml:"json"`
}

type TemplatesConfig struct {
	// SeedFile is a JSON or YAML template document loaded at startup.
	SeedFile string `toml:"seed_file"`
	// Dir overrides the embedded page templates file by file.
	Dir    string `toml:"dir"`
	Reload bool   `toml:"reload"`
}

type ValidationConfig struct {
	// Enforce rejects saves and submissions with issues instead of only
	// logging them.
	Enforce bool `toml:"enforce"`
}

type ThemeConfig struct {
	Name    string            `toml:"name"`
	Variant string            `toml:"variant"`
	Tokens  map[string]string `toml:"tokens" validate:"dive,keys,required,endkeys,cssvalue"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:          "127.0.0.1:8080",
			ShutdownGrace: 10 * time.Second,
			Mode:          "release",
			Title:         "Form Builder",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadOptions control where Load reads from.
type LoadOptions struct {
	// File is the TOML file. Empty means DefaultFile when present.
	File string
	// EnvFiles are read with godotenv. Missing files are skipped unless
	// named explicitly.
	EnvFiles []string
	// Lookup reads process environment variables. Defaults to os.LookupEnv.
	Lookup func(string) (string, bool)
	// Overrides are applied last; zero fields leave lower layers untouched.
	Overrides Config
}

// Load builds and validates the configuration. Zero values never override a
// lower layer, so a false boolean cannot switch off what a file switched on.
func Load(opts LoadOptions) (Config, error) {
	cfg := Default()

	file := strings.TrimSpace(opts.File)
	explicitFile := file != ""
	if !explicitFile {
		file = DefaultFile
	}
	fromFile, err := readFile(file, explicitFile)
	if err != nil {
		return Config{}, err
	}
	if err := mergo.Merge(&cfg, fromFile, mergo.WithOverride); err != nil {
		return Config{}, fmt.Errorf("config: merge %s: %w", file, err)
	}

	env, err := readEnvFiles(opts.EnvFiles)
	if err != nil {
		return Config{}, err
	}
	lookup := opts.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	fromEnv, err := envLayer(func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := env[key]
		return v, ok
	})
	if err != nil {
		return Config{}, err
	}
	if err := mergo.Merge(&cfg, fromEnv, mergo.WithOverride); err != nil {
		return Config{}, fmt.Errorf("config: merge environment: %w", err)
	}

	if err := mergo.Merge(&cfg, opts.Overrides, mergo.WithOverride); err != nil {
		return Config{}, fmt.Errorf("config: merge overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string, required bool) (Config, error) {
	var out Config
	if _, err := os.Stat(path); err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return out, nil
		}
		return out, fmt.Errorf("config: read %s: %w", path, err)
	}
	meta, err := toml.DecodeFile(path, &out)
	if err != nil {
		return out, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return out, fmt.Errorf("config: %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return out, nil
}

func readEnvFiles(files []string) (map[string]string, error) {
	out := map[string]string{}
	explicit := len(files) > 0
	if !explicit {
		files = []string{".env"}
	}
	for _, file := range files {
		values, err := godotenv.Read(file)
		if err != nil {
			if !explicit && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("config: read %s: %w", file, err)
		}
		for k, v := range values {
			if _, seen := out[k]; !seen {
				out[k] = v
			}
		}
	}
	return out, nil
}

var cssValueUnsafe = regexp.MustCompile(`(?i)[;{}<>]|/\*|expression\(|url\(`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("cssvalue", func(fl validator.FieldLevel) bool {
		return !cssValueUnsafe.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// Validate checks every field constraint and reports all violations at once.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config: %w", err)
	}
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, fmt.Sprintf("%s failed %q (value %v)", fieldPath(fe.Namespace()), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("config: invalid configuration: %s", strings.Join(messages, "; "))
}

func fieldPath(namespace string) string {
	if idx := strings.IndexByte(namespace, '.'); idx >= 0 {
		return namespace[idx+1:]
	}
	return namespace
}
