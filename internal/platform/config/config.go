package config

import (
	"time"
)

// Config is the full runtime configuration of the gateway.
type Config struct {
	Server    Server    `koanf:"server"`
	Log       Log       `koanf:"log"`
	Cache     Cache     `koanf:"cache"`
	RateLimit RateLimit `koanf:"ratelimit"`
	Fetch     Fetch     `koanf:"fetch"`
	Sources   Sources   `koanf:"sources"`
	AgeVerify AgeVerify `koanf:"ageverify"`
	Redis     Redis     `koanf:"redis"`
	Postgres  Postgres  `koanf:"postgres"`
	Badger    Badger    `koanf:"badger"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `koanf:"addr" validate:"required"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	JanitorInterval time.Duration `koanf:"janitor_interval" validate:"gte=0"`
	// TrustedProxies lists the CIDRs of reverse proxies whose forwarding
	// headers are honored. Empty means the socket address is the identity.
	TrustedProxies []string `koanf:"trusted_proxies" validate:"dive,cidr"`
}

type Log struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json text"`
}

// Cache selects the response cache backend and the per-class TTLs.
type Cache struct {
	Backend    string        `koanf:"backend" validate:"oneof=memory redis badger"`
	CatalogTTL time.Duration `koanf:"catalog_ttl" validate:"gt=0"`
	SafetyTTL  time.Duration `koanf:"safety_ttl" validate:"gt=0"`
	// UpstreamTimeout bounds a single adapter call made on a cache miss.
	UpstreamTimeout time.Duration `koanf:"upstream_timeout" validate:"gt=0"`
}

type RateLimit struct {
	Backend  string `koanf:"backend" validate:"oneof=memory redis"`
	Scrape   Policy `koanf:"scrape"`
	Classify Policy `koanf:"classify"`
}

type Policy struct {
	MaxEvents int           `koanf:"max_events" validate:"gt=0"`
	Window    time.Duration `koanf:"window" validate:"gt=0"`
}

// Fetch configures the shared outbound HTTP client used by every adapter.
type Fetch struct {
	UserAgents   []string      `koanf:"user_agents" validate:"min=1,dive,required"`
	MinDelay     time.Duration `koanf:"min_delay" validate:"gte=0"`
	MaxDelay     time.Duration `koanf:"max_delay" validate:"gtefield=MinDelay"`
	Timeout      time.Duration `koanf:"timeout" validate:"gt=0"`
	MaxBodyBytes int64         `koanf:"max_body_bytes" validate:"gt=0"`
	HostRate     float64       `koanf:"host_rate" validate:"gte=0"`
	HostBurst    int           `koanf:"host_burst" validate:"gte=1"`
	Breaker      Breaker       `koanf:"breaker"`
}

type Breaker struct {
	FailureThreshold uint32        `koanf:"failure_threshold" validate:"gte=1"`
	OpenTimeout      time.Duration `koanf:"open_timeout" validate:"gt=0"`
	HalfOpenRequests uint32        `koanf:"half_open_requests" validate:"gte=1"`
}

type Sources struct {
	Jikan   APISource `koanf:"jikan"`
	Kitsu   APISource `koanf:"kitsu"`
	Booru   []Booru   `koanf:"booru" validate:"dive"`
	Listing []Listing `koanf:"listing" validate:"dive"`
}

type APISource struct {
	Enabled bool   `koanf:"enabled"`
	BaseURL string `koanf:"base_url" validate:"omitempty,url"`
}

// Booru describes one dapi-style JSON post API.
type Booru struct {
	ID      string `koanf:"id" validate:"required,alphanum"`
	Name    string `koanf:"name"`
	BaseURL string `koanf:"base_url" validate:"required,url"`
	// SiteURL hosts the human-facing post pages when the API lives elsewhere.
	SiteURL string `koanf:"site_url" validate:"omitempty,url"`
}

// Listing describes one HTML listing site scraped with CSS selectors.
type Listing struct {
	ID         string           `koanf:"id" validate:"required,alphanum"`
	Name       string           `koanf:"name"`
	BaseURL    string           `koanf:"base_url" validate:"required,url"`
	SearchPath string           `koanf:"search_path" validate:"required"`
	BrowsePath string           `koanf:"browse_path" validate:"required"`
	Selectors  ListingSelectors `koanf:"selectors"`
}

type ListingSelectors struct {
	Block    string `koanf:"block" validate:"required"`
	Link     string `koanf:"link" validate:"required"`
	Title    string `koanf:"title"`
	Duration string `koanf:"duration"`
	Thumb    string `koanf:"thumb"`
	Meta     string `koanf:"meta"`
}

type AgeVerify struct {
	TokenTTL       time.Duration `koanf:"token_ttl" validate:"gt=0"`
	TokenRetention time.Duration `koanf:"token_retention" validate:"gte=0"`
	TokenStore     string        `koanf:"token_store" validate:"oneof=memory redis badger"`
	IdentityStore  string        `koanf:"identity_store" validate:"oneof=memory file postgres"`
	IdentityFile   string        `koanf:"identity_file" validate:"required_if=IdentityStore file"`
}

type Redis struct {
	URL          string        `koanf:"url" validate:"omitempty,url"`
	PoolSize     int           `koanf:"pool_size" validate:"gte=0"`
	MinIdleConns int           `koanf:"min_idle_conns" validate:"gte=0"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

type Postgres struct {
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns" validate:"gte=0"`
}

type Badger struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: Server{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
			JanitorInterval: 5 * time.Minute,
		},
		Log: Log{Level: "info", Format: "json"},
		Cache: Cache{
			Backend:         "memory",
			CatalogTTL:      time.Hour,
			SafetyTTL:       30 * time.Minute,
			UpstreamTimeout: 15 * time.Second,
		},
		RateLimit: RateLimit{
			Backend:  "memory",
			Scrape:   Policy{MaxEvents: 30, Window: time.Hour},
			Classify: Policy{MaxEvents: 100, Window: time.Hour},
		},
		Fetch: Fetch{
			UserAgents:   DefaultUserAgents(),
			MinDelay:     time.Second,
			MaxDelay:     3 * time.Second,
			Timeout:      10 * time.Second,
			MaxBodyBytes: 5 << 20,
			HostRate:     2,
			HostBurst:    2,
			Breaker: Breaker{
				FailureThreshold: 5,
				OpenTimeout:      30 * time.Second,
				HalfOpenRequests: 1,
			},
		},
		Sources: Sources{
			Jikan: APISource{Enabled: true, BaseURL: "https://api.jikan.moe/v4"},
			Kitsu: APISource{Enabled: true, BaseURL: "https://kitsu.io/api/edge"},
		},
		AgeVerify: AgeVerify{
			TokenTTL:       30 * time.Minute,
			TokenRetention: 24 * time.Hour,
			TokenStore:     "memory",
			IdentityStore:  "file",
			IdentityFile:   "data/verified_ips.json",
		},
		Redis: Redis{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Postgres: Postgres{MaxOpenConns: 10},
		Badger:   Badger{Path: "data/badger"},
	}
}

// DefaultUserAgents is the rotation pool of desktop browser identities.
func DefaultUserAgents() []string {
	return []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	}
}
