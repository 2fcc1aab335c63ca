package config

import (
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DBConfig contains PostgreSQL database configuration.
type DBConfig struct {
	// URL, when set, is used verbatim and the discrete fields below are ignored.
	URL      string `env:"URL"`
	Host     string `env:"HOST"     envDefault:"localhost"`
	Port     int    `env:"PORT"     envDefault:"5432"`
	User     string `env:"USER"     envDefault:"sla"`
	Password string `env:"PASSWORD" envDefault:"sla"`
	Name     string `env:"NAME"     envDefault:"sla_summary"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"`

	RunMigrationsOnStart bool          `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
	MaxOpenConns         int           `env:"MAX_OPEN_CONNS"          envDefault:"25"`
	MaxIdleConns         int           `env:"MAX_IDLE_CONNS"          envDefault:"5"`
	ConnMaxLifetime      time.Duration `env:"CONN_MAX_LIFETIME"       envDefault:"5m"`
}

// DSN returns the connection string handed to the pgx driver.
func (c DBConfig) DSN() string {
	if u := strings.TrimSpace(c.URL); u != "" {
		return u
	}
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Name,
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
	}
	return u.String()
}

// RedisConfig selects one of three topologies: a direct node (URI), a
// Sentinel-managed primary, or a cluster.
type RedisConfig struct {
	// URI is host:port or a redis:// / rediss:// URL.
	URI      string `env:"URI"      envDefault:"localhost:6379"`
	Password string `env:"PASSWORD" envDefault:""`
	DB       int    `env:"DB"       envDefault:"0"`

	SentinelNodes      []string `env:"SENTINEL_NODES"       envDefault:"localhost:26379"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME" envDefault:"mymaster"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"    envDefault:""`
	UseSentinel        bool     `env:"USE_SENTINEL"         envDefault:"false"`

	// ClusterNodes falls back to URI when empty.
	ClusterNodes []string `env:"CLUSTER_NODES" envDefault:""`
	UseCluster   bool     `env:"USE_CLUSTER"   envDefault:"false"`
}

// Configured reports whether the selected topology has somewhere to connect.
func (c RedisConfig) Configured() bool {
	uri := strings.TrimSpace(c.URI) != ""
	switch {
	case c.UseCluster:
		return uri || len(nonEmpty(c.ClusterNodes)) > 0
	case c.UseSentinel:
		return len(nonEmpty(c.SentinelNodes)) > 0
	default:
		return uri
	}
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// CacheConfig controls the read-through summary cache.
type CacheConfig struct {
	// Enabled turns the Redis summary cache on. When off, reads always hit Postgres.
	Enabled bool `env:"CACHE_ENABLED" envDefault:"true"`

	// SummaryTTL is how long a cached summary may be served.
	SummaryTTL time.Duration `env:"CACHE_SUMMARY_TTL" envDefault:"5m"`

	// KeyPrefix namespaces cache keys.
	KeyPrefix string `env:"CACHE_KEY_PREFIX" envDefault:"sla:summary:"`
}

// Sanitize applies guardrails to cache configuration values.
func (c *CacheConfig) Sanitize() {
	if c.SummaryTTL <= 0 {
		c.SummaryTTL = 5 * time.Minute
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "sla:summary:"
	}
}

// NodeList returns the trimmed, non-empty entries of nodes.
func NodeList(nodes []string) []string {
	return nonEmpty(nodes)
}
