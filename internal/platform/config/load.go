package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "CONTENTGW_"

// Load builds the configuration in three layers, later layers winning:
// struct defaults, the optional YAML file at path, then CONTENTGW_ variables.
//
// Environment keys use a double underscore as the section separator:
//
//	CONTENTGW_SERVER__ADDR              -> server.addr
//	CONTENTGW_RATELIMIT__SCRAPE__WINDOW -> ratelimit.scrape.window
//	CONTENTGW_FETCH__USER_AGENTS        -> fetch.user_agents ("|" separated)
//	CONTENTGW_SERVER__TRUSTED_PROXIES   -> server.trusted_proxies ("," separated)
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func envTransform(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	key = strings.ReplaceAll(key, "__", ".")
	switch key {
	case "fetch.user_agents":
		return key, splitList(value, "|")
	case "server.trusted_proxies":
		return key, splitList(value, ",")
	}
	return key, value
}

func splitList(value, sep string) []string {
	var out []string
	for _, part := range strings.Split(value, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks struct constraints and the cross-field rules validator tags
// cannot express.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	needsRedis := c.Cache.Backend == "redis" || c.RateLimit.Backend == "redis" || c.AgeVerify.TokenStore == "redis"
	if needsRedis && c.Redis.URL == "" {
		return fmt.Errorf("configuration validation failed: redis.url is required by the selected backends")
	}
	if c.AgeVerify.IdentityStore == "postgres" && c.Postgres.DSN == "" {
		return fmt.Errorf("configuration validation failed: postgres.dsn is required by identity_store=postgres")
	}
	needsBadger := c.Cache.Backend == "badger" || c.AgeVerify.TokenStore == "badger"
	if needsBadger && c.Badger.Path == "" && !c.Badger.InMemory {
		return fmt.Errorf("configuration validation failed: badger.path is required by the selected backends")
	}

	for name, src := range map[string]APISource{"jikan": c.Sources.Jikan, "kitsu": c.Sources.Kitsu} {
		if src.Enabled && src.BaseURL == "" {
			return fmt.Errorf("configuration validation failed: sources.%s.base_url is required when enabled", name)
		}
	}

	seen := make(map[string]struct{})
	for _, id := range c.sourceIDs() {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("configuration validation failed: duplicate source id %q", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func (c *Config) sourceIDs() []string {
	ids := []string{"jikan", "kitsu"}
	for _, b := range c.Sources.Booru {
		ids = append(ids, b.ID)
	}
	for _, l := range c.Sources.Listing {
		ids = append(ids, l.ID)
	}
	return ids
}
