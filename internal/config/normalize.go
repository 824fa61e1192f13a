// internal/config/normalize.go
package config

import "github.com/tamzrod/water-probe-monitor/internal/status"

// Defaults applied by Normalize.
const (
	DefaultProbeName       = "probe"
	DefaultReadTimeoutMs   = 1000
	DefaultPeriodMs        = 1000
	DefaultMaxTimeouts     = 0
	DefaultHTTPListen      = ":9102"
	DefaultOutputTimeoutMs = 1000
)

// Normalize applies defaults and post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	p := &cfg.Probe
	if p.Name == "" {
		p.Name = DefaultProbeName
	}
	if p.IOReadTimeoutMs == 0 {
		p.IOReadTimeoutMs = DefaultReadTimeoutMs
	}
	if p.PeriodMs == 0 {
		p.PeriodMs = DefaultPeriodMs
	}
	if p.MaxConsecutiveTimeouts == nil {
		n := DefaultMaxTimeouts
		p.MaxConsecutiveTimeouts = &n
	}

	if cfg.HTTP.Listen == "" {
		cfg.HTTP.Listen = DefaultHTTPListen
	}

	if in := cfg.Outputs.Influx; in != nil && in.TimeoutMs == 0 {
		in.TimeoutMs = DefaultOutputTimeoutMs
	}

	m := cfg.Outputs.Mirror
	if m == nil {
		return
	}
	if m.TimeoutMs == 0 {
		m.TimeoutMs = DefaultOutputTimeoutMs
	}

	// Skip mirrors that did not opt in to status
	if m.Status == nil {
		return
	}
	if m.Status.DeviceName == "" {
		m.Status.DeviceName = p.Name
	}
	// ASCII already validated; truncate to the register capacity.
	if len(m.Status.DeviceName) > status.DeviceNameMaxChars {
		m.Status.DeviceName = m.Status.DeviceName[:status.DeviceNameMaxChars]
	}
}
