// Package config loads the gateway configuration from a YAML file overlaid
// with SHARP_-prefixed environment variables.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	defaultPath = "."
	envPrefix   = "SHARP_"

	// DriverSQLite selects the embedded pure-Go SQLite backend.
	DriverSQLite = "sqlite"
	// DriverPostgres selects the PostgreSQL backend.
	DriverPostgres = "postgres"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Address  string `json:"address" yaml:"address"`
		Port     int    `json:"port" yaml:"port"`
		Timeouts struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	// Upstream is the single protected origin every authenticated request
	// is forwarded to.
	Upstream struct {
		URL string `json:"url" yaml:"url"`
	} `json:"upstream" yaml:"upstream"`

	Auth struct {
		// RedirectURL is where a fresh login or registration lands.
		RedirectURL string `json:"redirectUrl" yaml:"redirectUrl"`
	} `json:"auth" yaml:"auth"`

	Gateway struct {
		// ExemptPaths bypass authentication entirely and are forwarded
		// as-is. Defaults cover the well-known crawler probes.
		ExemptPaths []string `json:"exemptPaths" yaml:"exemptPaths"`

		// CustomCSSPath optionally points at a stylesheet served on the
		// auth pages in place of the embedded default.
		CustomCSSPath string `json:"customCssPath" yaml:"customCssPath"`
	} `json:"gateway" yaml:"gateway"`

	Database DatabaseConfig `json:"database" yaml:"database"`
}

// DatabaseConfig selects and tunes the credential and session store.
type DatabaseConfig struct {
	Driver          string        `json:"driver" yaml:"driver"`
	DSN             string        `json:"dsn" yaml:"dsn"`
	MaxOpenConns    int           `json:"maxOpenConns" yaml:"maxOpenConns"`
	MaxIdleConns    int           `json:"maxIdleConns" yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime" yaml:"connMaxLifetime"`
	AutoMigrate     bool          `json:"autoMigrate" yaml:"autoMigrate"`

	// Replicas lists read-replica DSNs. Postgres only; ignored for sqlite.
	Replicas []string `json:"replicas" yaml:"replicas"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}

	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Overlay SHARP_-prefixed environment variables. Each variable name is
	// converted to a config path whose segments are aligned with the keys
	// already present in the YAML, so SHARP_DATABASE_MAXOPENCONNS lands on
	// database.maxOpenConns rather than creating a parallel key.
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			key := canonicalizeEnvKey(strings.TrimPrefix(k, envPrefix), existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

// New loads the gateway configuration and applies defaults plus the short
// environment variable aliases.
func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	applyEnvAliases(cfg)
	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvAliases honors the short deployment-oriented variable names that
// predate the structured config file. They win over the YAML but lose to
// the structured SHARP_HTTP_*, SHARP_UPSTREAM_* and SHARP_DATABASE_*
// variables, which are applied during loading.
func applyEnvAliases(cfg *Config) {
	if v := os.Getenv("SHARP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("SHARP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Port = port
		}
	}
	if v := os.Getenv("SHARP_UPSTREAM"); v != "" {
		cfg.Upstream.URL = v
	}
	if v := os.Getenv("SHARP_DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Address == "" {
		cfg.HTTP.Address = "127.0.0.1"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.Auth.RedirectURL == "" {
		cfg.Auth.RedirectURL = "/"
	}
	if len(cfg.Gateway.ExemptPaths) == 0 {
		cfg.Gateway.ExemptPaths = []string{"/favicon.ico", "/robots.txt", "/sitemap.xml"}
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverSQLite
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == DriverSQLite {
		cfg.Database.DSN = "sharp.db"
	}
}

func validate(cfg *Config) error {
	if cfg.Upstream.URL == "" {
		return errors.New("upstream.url must be set")
	}
	if cfg.Database.Driver != DriverSQLite && cfg.Database.Driver != DriverPostgres {
		return errors.Errorf("unsupported database driver: %q", cfg.Database.Driver)
	}
	if cfg.Database.DSN == "" {
		return errors.New("database.dsn must be set")
	}

	return nil
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
