// Package config holds the node configuration: defaults, validation and the
// authority key file loader.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vocdoni/blindvote/crypto/blindrsa"
	"go.vocdoni.io/dvote/db"
)

const (
	// DBTypeMemory keeps the ledger in memory, it is lost on exit.
	DBTypeMemory = "memory"
	// EnvPrefix prefixes the environment variables overriding flags.
	EnvPrefix = "BLINDVOTE_"
)

// Config is the blindvote node configuration.
type Config struct {
	// API
	Host string
	Port int
	// Storage
	Datadir string
	DBType  string
	// Logging
	LogLevel  string
	LogOutput string
	// AuthorityKeyFile is the JSON file with the authority RSA key. The node
	// only signs ballots when it is set.
	AuthorityKeyFile string
	// TallyInterval is how often closed elections are tallied. Zero disables
	// the tally monitor.
	TallyInterval time.Duration
	// Ledger policies
	OneVotePerIdentity bool
	StrictCandidates   bool
}

// Default returns the default configuration.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		Host:          "0.0.0.0",
		Port:          9090,
		Datadir:       filepath.Join(home, ".blindvote"),
		DBType:        db.TypePebble,
		LogLevel:      "info",
		LogOutput:     "stdout",
		TallyInterval: 30 * time.Second,
	}
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	switch c.DBType {
	case db.TypePebble:
		if c.Datadir == "" {
			return fmt.Errorf("datadir is required for db type %q", c.DBType)
		}
	case DBTypeMemory:
	default:
		return fmt.Errorf("invalid db type %q, available types: %q, %q", c.DBType, db.TypePebble, DBTypeMemory)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	if c.TallyInterval < 0 {
		return fmt.Errorf("negative tally interval %s", c.TallyInterval)
	}
	return nil
}

// AuthorityKey is the on-disk format of the authority key, hex encoded.
type AuthorityKey struct {
	Modulus         string `json:"modulus"`
	PublicExponent  string `json:"publicExponent"`
	PrivateExponent string `json:"privateExponent"`
}

// LoadAuthorityKey reads and validates the authority key file.
func LoadAuthorityKey(path string) (*blindrsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read authority key: %w", err)
	}
	var ak AuthorityKey
	if err := json.Unmarshal(data, &ak); err != nil {
		return nil, fmt.Errorf("could not decode authority key: %w", err)
	}
	return blindrsa.PrivateKeyFromHex(ak.Modulus, ak.PublicExponent, ak.PrivateExponent)
}

// WriteAuthorityKey stores the authority key file, readable only by the owner.
func WriteAuthorityKey(path string, key *blindrsa.PrivateKey) error {
	data, err := json.MarshalIndent(&AuthorityKey{
		Modulus:         key.N.Text(16),
		PublicExponent:  key.E.Text(16),
		PrivateExponent: key.D.Text(16),
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
