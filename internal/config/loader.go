package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ErrLoadConfig indicates a failure to read or parse the YAML configuration.
var ErrLoadConfig = errors.New("config load failed")

// ErrValidateConfig indicates that the loaded configuration is invalid.
var ErrValidateConfig = errors.New("configuration validation failed")

// EnvPrefix prefixes every environment variable override, e.g.
// REPOBAK_BACKUP_MAX_CONCURRENCY.
const EnvPrefix = "REPOBAK"

// Config represents the top-level YAML configuration file.
type Config struct {
	Account  string       `mapstructure:"account"   yaml:"account"`
	Site     string       `mapstructure:"site"      yaml:"site"`
	Token    string       `mapstructure:"token"     yaml:"token,omitempty"`
	LogLevel string       `mapstructure:"log_level" yaml:"log_level"`
	Backup   BackupConfig `mapstructure:"backup"    yaml:"backup"`
	Vault    VaultConfig  `mapstructure:"vault"     yaml:"vault"`
}

// BackupConfig contains the backup run options.
type BackupConfig struct {
	OutputDirectory string `mapstructure:"output_directory" yaml:"output_directory"`
	PrivateOnly     bool   `mapstructure:"private_only"     yaml:"private_only"`
	IncludeArchived bool   `mapstructure:"include_archived" yaml:"include_archived"`
	MaxConcurrency  int    `mapstructure:"max_concurrency"  yaml:"max_concurrency"`
	Compress        bool   `mapstructure:"compress"         yaml:"compress"`
	FailOnError     bool   `mapstructure:"fail_on_error"    yaml:"fail_on_error"`
}

// VaultConfig holds connection settings for HashiCorp Vault. When Address
// and TokenPath are set and no token is given directly, the provider token
// is read from Vault.
type VaultConfig struct {
	Address     string `mapstructure:"address"      yaml:"address"`
	TokenPath   string `mapstructure:"token_path"   yaml:"token_path"`
	RoleID      string `mapstructure:"role_id"      yaml:"role_id,omitempty"`
	ApproleName string `mapstructure:"approle_name" yaml:"approle_name,omitempty"`
}

// UseVault reports whether the provider token should come from Vault.
func (c *Config) UseVault() bool {
	return c.Token == "" && c.Vault.Address != "" && c.Vault.TokenPath != ""
}

// flagKeys maps CLI flag names to configuration keys.
var flagKeys = map[string]string{
	"username":         "account",
	"site":             "site",
	"token":            "token",
	"log-level":        "log_level",
	"directory":        "backup.output_directory",
	"private-only":     "backup.private_only",
	"include-archived": "backup.include_archived",
	"concurrent":       "backup.max_concurrency",
	"compress":         "backup.compress",
	"fail-on-error":    "backup.fail_on_error",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("account", "")
	v.SetDefault("site", "github")
	v.SetDefault("token", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("backup.output_directory", "")
	v.SetDefault("backup.private_only", false)
	v.SetDefault("backup.include_archived", true)
	v.SetDefault("backup.max_concurrency", 10)
	v.SetDefault("backup.compress", false)
	v.SetDefault("backup.fail_on_error", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token_path", "")
	v.SetDefault("vault.role_id", "")
	v.SetDefault("vault.approle_name", "")
}

// Load builds the configuration from defaults, the optional YAML file at
// path, REPOBAK_* environment variables and the flags in fs (highest
// precedence; only flags the user actually set override lower layers).
func (c *Config) Load(path string, fs *pflag.FlagSet) error {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("%w: read config %s: %v", ErrLoadConfig, path, err)
		}
	}

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return fmt.Errorf("%w: bind flag %s: %v", ErrLoadConfig, name, err)
				}
			}
		}
	}

	if err := v.UnmarshalExact(c); err != nil {
		return fmt.Errorf("%w: unmarshal config: %v", ErrLoadConfig, err)
	}

	return nil
}

// Validate checks the fields every run needs. Out-of-range concurrency is
// not an error; it is clamped when the backup starts.
func (c *Config) Validate(supportedSite func(string) bool) error {
	if strings.TrimSpace(c.Account) == "" {
		return fmt.Errorf("%w: account (--username) is required", ErrValidateConfig)
	}
	if supportedSite != nil && !supportedSite(c.Site) {
		return fmt.Errorf("%w: unsupported site %q", ErrValidateConfig, c.Site)
	}
	if (c.Vault.RoleID == "") != (c.Vault.ApproleName == "") {
		return fmt.Errorf("%w: vault role_id and approle_name must be set together", ErrValidateConfig)
	}
	return nil
}
