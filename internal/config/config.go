// internal/config/config.go
package config

type Config struct {
	Probe   ProbeConfig   `yaml:"probe"`
	HTTP    HTTPConfig    `yaml:"http"`
	Outputs OutputsConfig `yaml:"outputs"`
}

// ---- PROBE ----

type ProbeConfig struct {
	Name string `yaml:"name"`

	// DeviceAddress is required. nil means the key was left out.
	DeviceAddress *int `yaml:"device_address"`

	// IOPort is a transport URI. Empty means the link is attached by the host.
	IOPort string `yaml:"io_port"`

	IOReadTimeoutMs        int  `yaml:"io_read_timeout_ms"`
	MaxConsecutiveTimeouts *int `yaml:"max_consecutive_timeouts"`
	PeriodMs               int  `yaml:"period_ms"`
}

// ---- HTTP ----

type HTTPConfig struct {
	Listen string `yaml:"listen"`
}

// ---- OUTPUTS ----

type OutputsConfig struct {
	Influx   *InfluxConfig   `yaml:"influx"`
	Recorder *RecorderConfig `yaml:"recorder"`
	Mirror   *MirrorConfig   `yaml:"mirror"`
}

type InfluxConfig struct {
	Address     string `yaml:"address"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	Database    string `yaml:"database"`
	Measurement string `yaml:"measurement"`
	TimeoutMs   int    `yaml:"timeout_ms"`
}

type RecorderConfig struct {
	Path string `yaml:"path"`
}

type MirrorConfig struct {
	Endpoint  string `yaml:"endpoint"`
	UnitID    uint8  `yaml:"unit_id"`
	Address   uint16 `yaml:"address"`
	TimeoutMs int    `yaml:"timeout_ms"`

	// Device status block (optional, opt-in)
	Status *MirrorStatusConfig `yaml:"status"`
}

type MirrorStatusConfig struct {
	UnitID     uint8  `yaml:"unit_id"`
	Slot       uint16 `yaml:"slot"`
	DeviceName string `yaml:"device_name"`
}
