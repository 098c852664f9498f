package mixvote

import (
	"io/ioutil"

	"github.com/BurntSushi/toml"
	"golang.org/x/xerrors"
)

// Config holds the parameters of the cryptographic stages. It is read from
// a toml file by the admin tool and handed to the service.
type Config struct {
	// KeyBits is the bit length of each of the two Paillier primes.
	KeyBits int
	// Certainty bounds the probability that a generated prime is composite
	// by 2^-Certainty.
	Certainty int
	// EncryptBits is the exact bit length of the per-ballot randomizer.
	EncryptBits int
	// MixBits is the exact bit length of the two re-encryption randomizers
	// drawn for every mix round.
	MixBits int
	// RevealDepth is the number of challenge bits disclosed for a proof.
	RevealDepth int
	// MaxMixRounds caps how many times the ballots of one election can be
	// mixed.
	MaxMixRounds int
	// Archive is the path of the bbolt audit archive. Empty disables it.
	Archive string
}

// DefaultConfig returns the parameters used when no configuration file is
// given.
func DefaultConfig() *Config {
	return &Config{
		KeyBits:      128,
		Certainty:    64,
		EncryptBits:  32,
		MixBits:      64,
		RevealDepth:  10,
		MaxMixRounds: 1,
	}
}

// LoadConfig reads a toml configuration. Fields that are missing from the
// file keep their default value.
func LoadConfig(path string) (*Config, error) {
	buf, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("reading config: %v", err)
	}
	return ParseConfig(string(buf))
}

// ParseConfig decodes a toml document on top of DefaultConfig and validates
// the result.
func ParseConfig(data string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.Decode(data, cfg); err != nil {
		return nil, xerrors.Errorf("decoding config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the parameters can produce a working election.
func (c *Config) Validate() error {
	switch {
	case c.KeyBits < 16:
		return xerrors.Errorf("KeyBits must be at least 16, got %d", c.KeyBits)
	case c.Certainty < 1:
		return xerrors.Errorf("Certainty must be positive, got %d", c.Certainty)
	case c.EncryptBits < 2:
		return xerrors.Errorf("EncryptBits must be at least 2, got %d", c.EncryptBits)
	case c.MixBits < 2:
		return xerrors.Errorf("MixBits must be at least 2, got %d", c.MixBits)
	case c.RevealDepth < 1 || c.RevealDepth > 256:
		return xerrors.Errorf("RevealDepth must be in [1, 256], got %d", c.RevealDepth)
	case c.MaxMixRounds < 1:
		return xerrors.Errorf("MaxMixRounds must be positive, got %d", c.MaxMixRounds)
	}
	return nil
}
