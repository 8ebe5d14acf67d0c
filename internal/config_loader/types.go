// Package config_loader reads and validates the delegator configuration
// file (YAML or TOML), with DELEGATOR_-prefixed environment overrides.
package config_loader

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/threadlane/delegator/internal/cryptogram"
	"github.com/threadlane/delegator/internal/events"
	"github.com/threadlane/delegator/internal/registry"
)

// Config is the root configuration document.
type Config struct {
	HTTP         HTTPConfig             `mapstructure:"http" validate:"required"`
	Services     registry.Services      `mapstructure:"services" validate:"required,dive"`
	Virtualhosts map[string]Virtualhost `mapstructure:"virtualhosts" validate:"omitempty,dive"`
	Events       *EventsConfig          `mapstructure:"events"`
}

// HTTPConfig configures the inbound listener and the outbound client.
type HTTPConfig struct {
	Host        string           `mapstructure:"host" validate:"required"`
	Port        int              `mapstructure:"port" validate:"required,min=1,max=65535"`
	CORS        []string         `mapstructure:"cors"`
	MetricsPort int              `mapstructure:"metrics_port" validate:"omitempty,min=1,max=65535"`
	Client      HTTPClientConfig `mapstructure:"client" validate:"required"`
}

// HTTPClientConfig configures the outbound HTTP client.
type HTTPClientConfig struct {
	UserAgent      string `mapstructure:"user_agent" validate:"required"`
	DefaultTimeout string `mapstructure:"default_timeout" validate:"required"`
}

// ParseDefaultTimeout parses the "<float>s" duration string.
func (c HTTPClientConfig) ParseDefaultTimeout() (time.Duration, error) {
	return parseStringyDuration(c.DefaultTimeout)
}

// Virtualhost binds a Host header value to a set of preconfigured routes.
type Virtualhost struct {
	Host   string           `mapstructure:"host" validate:"required,hostname_rfc1123"`
	Routes map[string]Route `mapstructure:"routes" validate:"omitempty,dive"`
}

// Route is one config-defined edge route: a path served by a fixed
// cryptogram.
type Route struct {
	// Cryptogram is the JSON-encoded cryptogram executed for the route.
	Cryptogram string `mapstructure:"cryptogram" validate:"required,json"`
}

// ParseCryptogram decodes the route's cryptogram.
func (r Route) ParseCryptogram() (*cryptogram.Cryptogram, error) {
	return cryptogram.FromJSON([]byte(r.Cryptogram))
}

// EventsConfig configures the user-action event sink.
type EventsConfig struct {
	UserAction events.Topic `mapstructure:"user_action" validate:"required"`
}

// parseStringyDuration parses durations written as "<float>s".
func parseStringyDuration(value string) (time.Duration, error) {
	secsStr, found := strings.CutSuffix(value, "s")
	if !found {
		return 0, fmt.Errorf("duration %q must end in \"s\"", value)
	}
	secs, err := strconv.ParseFloat(secsStr, 64)
	if err != nil || secs < 0 {
		return 0, fmt.Errorf("unable to parse duration %q", value)
	}
	return time.Duration(secs * float64(time.Second)), nil
}
