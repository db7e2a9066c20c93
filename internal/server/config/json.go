package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/stockkeeper/internal/flagx"
	"github.com/dmitrijs2005/stockkeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations accept
// both "168h" strings and integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP      string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC      string         `json:"endpoint_addr_grpc"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	TokenTransport        string         `json:"token_transport"`
	CookieName            string         `json:"cookie_name"`
	CookieCrossSite       bool           `json:"cookie_cross_site"`
	CookieSecure          bool           `json:"cookie_secure"`
	CookieDomain          string         `json:"cookie_domain"`
	AllowedOrigins        []string       `json:"allowed_origins"`
	AllowedOriginSuffixes []string       `json:"allowed_origin_suffixes"`
	FrontendURL           string         `json:"frontend_url"`
	BcryptCost            int            `json:"bcrypt_cost"`
	LogLevel              string         `json:"log_level"`
	S3RootUser            string         `json:"s3_root_user"`
	S3RootPassword        string         `json:"s3_root_password"`
	S3Bucket              string         `json:"s3_bucket"`
	S3Region              string         `json:"s3_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint"`
}

// parseJson overlays the JSON file named in args (or $CONFIG) onto config.
// Keys missing from the file keep their current values.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := toJson(config)
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	fromJson(config, c)
	return nil
}

func toJson(c *Config) *JsonConfig {
	return &JsonConfig{
		EndpointAddrHTTP:      c.EndpointAddrHTTP,
		EndpointAddrGRPC:      c.EndpointAddrGRPC,
		DatabaseDSN:           c.DatabaseDSN,
		SecretKey:             c.SecretKey,
		TokenValidityDuration: timex.Duration{Duration: c.TokenValidityDuration},
		TokenTransport:        c.TokenTransport,
		CookieName:            c.CookieName,
		CookieCrossSite:       c.CookieCrossSite,
		CookieSecure:          c.CookieSecure,
		CookieDomain:          c.CookieDomain,
		AllowedOrigins:        c.AllowedOrigins,
		AllowedOriginSuffixes: c.AllowedOriginSuffixes,
		FrontendURL:           c.FrontendURL,
		BcryptCost:            c.BcryptCost,
		LogLevel:              c.LogLevel,
		S3RootUser:            c.S3RootUser,
		S3RootPassword:        c.S3RootPassword,
		S3Bucket:              c.S3Bucket,
		S3Region:              c.S3Region,
		S3BaseEndpoint:        c.S3BaseEndpoint,
	}
}

func fromJson(c *Config, j *JsonConfig) {
	c.EndpointAddrHTTP = j.EndpointAddrHTTP
	c.EndpointAddrGRPC = j.EndpointAddrGRPC
	c.DatabaseDSN = j.DatabaseDSN
	c.SecretKey = j.SecretKey
	c.TokenValidityDuration = j.TokenValidityDuration.Duration
	c.TokenTransport = j.TokenTransport
	c.CookieName = j.CookieName
	c.CookieCrossSite = j.CookieCrossSite
	c.CookieSecure = j.CookieSecure
	c.CookieDomain = j.CookieDomain
	c.AllowedOrigins = j.AllowedOrigins
	c.AllowedOriginSuffixes = j.AllowedOriginSuffixes
	c.FrontendURL = j.FrontendURL
	c.BcryptCost = j.BcryptCost
	c.LogLevel = j.LogLevel
	c.S3RootUser = j.S3RootUser
	c.S3RootPassword = j.S3RootPassword
	c.S3Bucket = j.S3Bucket
	c.S3Region = j.S3Region
	c.S3BaseEndpoint = j.S3BaseEndpoint
}
