package config

import (
	"fmt"

	"gopkg.in/yaml.v2"

	"openrtb-fastly-compute/requester"
)

// Config represents the service's YAML configuration structure
type Config struct {
	Exchange Exchange `yaml:"exchange"`
}

// Exchange describes the single exchange bid requests are forwarded to.
type Exchange struct {
	Endpoint string `yaml:"endpoint"`
	// Backend is the Fastly backend name the endpoint is reachable through.
	Backend string `yaml:"backend"`
	// Version is used when neither the inbound headers nor the body select one.
	Version         string            `yaml:"version"`
	WithCredentials bool              `yaml:"with-credentials"`
	CacheControl    string            `yaml:"cache-control"`
	Defaults        requester.Options `yaml:"defaults"`
}

// Parse reads and validates a YAML configuration.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %v", err)
	}
	if cfg.Exchange.Version == "" {
		cfg.Exchange.Version = requester.VersionV26
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) validate() error {
	if cfg.Exchange.Endpoint == "" {
		return fmt.Errorf("exchange.endpoint is required")
	}
	if cfg.Exchange.Backend == "" {
		return fmt.Errorf("exchange.backend is required")
	}
	if !IsSupportedVersion(cfg.Exchange.Version) {
		return fmt.Errorf("exchange.version %q is not one of %s, %s, %s",
			cfg.Exchange.Version, requester.VersionV25, requester.VersionV26, requester.VersionV30)
	}
	return nil
}

// IsSupportedVersion reports whether version is an OpenRTB version the requester can send.
func IsSupportedVersion(version string) bool {
	switch version {
	case requester.VersionV25, requester.VersionV26, requester.VersionV30:
		return true
	}
	return false
}
