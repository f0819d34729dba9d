package util

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

const Name = "lensforum"

//go:embed config_default.yaml
var embeddedConfig []byte

// AppConfig is the full runtime configuration.
// Sources in order: embedded defaults, the config file, LENSFORUM_* env vars.
type AppConfig struct {
	Conf struct {
		Host              string        `yaml:"host" env:"LENSFORUM_HOST" env-default:"127.0.0.1"`
		SshPort           int           `yaml:"ssh_port" env:"LENSFORUM_SSH_PORT" env-default:"23235"`
		HttpPort          int           `yaml:"http_port" env:"LENSFORUM_HTTP_PORT" env-default:"9090"`
		PublicURL         string        `yaml:"public_url" env:"LENSFORUM_PUBLIC_URL"`
		ApiURL            string        `yaml:"api_url" env:"LENSFORUM_API_URL"`
		Community         string        `yaml:"community" env:"LENSFORUM_COMMUNITY"` // community shown on the landing view
		ApiTimeout        time.Duration `yaml:"api_timeout" env:"LENSFORUM_API_TIMEOUT" env-default:"15s"`
		ApiRate           float64       `yaml:"api_rate" env:"LENSFORUM_API_RATE" env-default:"10"` // requests per second towards the content API
		ApiBurst          int           `yaml:"api_burst" env:"LENSFORUM_API_BURST" env-default:"20"`
		PageSize          int           `yaml:"page_size" env:"LENSFORUM_PAGE_SIZE" env-default:"50"`
		StaleTime         time.Duration `yaml:"stale_time" env:"LENSFORUM_STALE_TIME" env-default:"60s"`
		RequireReputation bool          `yaml:"require_reputation" env:"LENSFORUM_REQUIRE_REPUTATION"`
		MinReputation     int           `yaml:"min_reputation" env:"LENSFORUM_MIN_REPUTATION" env-default:"400"`
		MaxContextDepth   int           `yaml:"max_context_depth" env:"LENSFORUM_MAX_CONTEXT_DEPTH" env-default:"64"`
		SigningKey        string        `yaml:"signing_key" env:"LENSFORUM_SIGNING_KEY" env-default:"signing_key.pem"` // path to a PEM private key, generated on first start
		WithJournald      bool          `yaml:"with_journald" env:"LENSFORUM_WITH_JOURNALD"`
		WithPprof         bool          `yaml:"with_pprof" env:"LENSFORUM_WITH_PPROF"`
	} `yaml:"conf"`
	Accounts     []AccountConf `yaml:"accounts"`
	LocalAccount string        `yaml:"local_account" env:"LENSFORUM_LOCAL_ACCOUNT"` // handle used by -local mode
}

// AccountConf binds an SSH public key to a forum identity
type AccountConf struct {
	Handle    string `yaml:"handle"`
	Name      string `yaml:"name"`
	Account   string `yaml:"account"`
	Wallet    string `yaml:"wallet"`
	PublicKey string `yaml:"public_key"` // authorized_keys format
}

// ConfigPathEnv points at an explicit config file
const ConfigPathEnv = "LENSFORUM_CONFIG"

// ReadConf loads the embedded defaults, then the first config file found, then env overrides.
// Numeric fields left at zero fall back to their env-default.
func ReadConf() (*AppConfig, error) {
	c := &AppConfig{}
	if err := yaml.Unmarshal(embeddedConfig, c); err != nil {
		return nil, fmt.Errorf("failed to parse default config: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := cleanenv.ReadConfig(path, c); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(c); err != nil {
		return nil, fmt.Errorf("failed to read env config: %w", err)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnv); p != "" {
		return p
	}
	candidates := []string{"config.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", Name, "config.yaml"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (c *AppConfig) validate() error {
	if strings.TrimSpace(c.Conf.ApiURL) == "" {
		return errors.New("api_url must be set")
	}
	c.Conf.ApiURL = strings.TrimRight(c.Conf.ApiURL, "/")
	if c.Conf.PageSize <= 0 || c.Conf.MaxContextDepth <= 0 {
		return errors.New("page_size and max_context_depth must be positive")
	}
	if c.Conf.ApiTimeout <= 0 || c.Conf.StaleTime < 0 {
		return errors.New("api_timeout must be positive and stale_time not negative")
	}
	return nil
}

// FindAccount returns the account bound to a public key hash
func (c *AppConfig) FindAccount(publicKeyHash string) (AccountConf, bool) {
	for _, acc := range c.Accounts {
		if acc.PublicKey == "" {
			continue
		}
		if PkToHash(strings.TrimSpace(acc.PublicKey)) == publicKeyHash {
			return acc, true
		}
	}
	return AccountConf{}, false
}

// FindAccountByHandle is used by local mode, where there is no SSH key
func (c *AppConfig) FindAccountByHandle(handle string) (AccountConf, bool) {
	for _, acc := range c.Accounts {
		if strings.EqualFold(acc.Handle, handle) {
			return acc, true
		}
	}
	return AccountConf{}, false
}

// ResolveFilePath expands ~ and makes relative paths relative to the config directory
func ResolveFilePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	if filepath.IsAbs(path) {
		return path
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", Name, path)
	}
	return path
}
