// Package userconfig encodes and decodes the per-user addon configuration
// carried in the URL path as base64 JSON.
package userconfig

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// DefaultLanguages is used when a configuration names no languages.
var DefaultLanguages = []string{"ml"}

// UserConfig is the caller-supplied configuration: the TMDB API key and the
// catalog languages to serve.
type UserConfig struct {
	APIKey    string   `json:"api_key"`
	Languages []string `json:"languages"`
}

// Decode parses a base64 JSON configuration string. Both URL-safe and
// standard alphabets are accepted; standard-encoded configs from older
// install links keep working.
func Decode(encoded string) (*UserConfig, error) {
	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		raw, err = base64.StdEncoding.DecodeString(encoded)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding config string: %w", err)
	}

	var cfg UserConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config JSON: %w", err)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("config is missing api_key")
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = DefaultLanguages
	}

	return &cfg, nil
}

// Encode serializes cfg to a base64 JSON string. The URL-safe alphabet
// keeps the result valid as a single URL path segment.
func Encode(cfg *UserConfig) (string, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}
	return base64.URLEncoding.EncodeToString(raw), nil
}
