// internal/sink/influx/influx.go
package influx

import (
	"errors"
	"fmt"
	"time"

	client "github.com/influxdata/influxdb/client/v2"

	"github.com/tamzrod/water-probe-monitor/internal/probe"
)

// DefaultMeasurement is the InfluxDB measurement name used when none is configured.
const DefaultMeasurement = "water_probe"

// pointWriter is the part of client.Client the sink needs.
type pointWriter interface {
	Write(bp client.BatchPoints) error
}

// Config describes the InfluxDB 1.x target.
type Config struct {
	Address     string
	Username    string
	Password    string
	Database    string
	Measurement string
	Precision   string
	Timeout     time.Duration
}

// Sink writes one point per measurement.
type Sink struct {
	c           pointWriter
	closer      func() error
	probe       string
	runID       func() string
	database    string
	measurement string
	precision   string
}

// New creates an HTTP client for cfg. runID may be nil.
func New(cfg Config, probeName string, runID func() string) (*Sink, error) {
	if cfg.Address == "" {
		return nil, errors.New("influx sink: address required")
	}
	if cfg.Database == "" {
		return nil, errors.New("influx sink: database required")
	}

	c, err := client.NewHTTPClient(client.HTTPConfig{
		Addr:     cfg.Address,
		Username: cfg.Username,
		Password: cfg.Password,
		Timeout:  cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("influx sink: %w", err)
	}

	s := newSink(c, cfg, probeName, runID)
	s.closer = c.Close
	return s, nil
}

func newSink(c pointWriter, cfg Config, probeName string, runID func() string) *Sink {
	if cfg.Measurement == "" {
		cfg.Measurement = DefaultMeasurement
	}
	if cfg.Precision == "" {
		cfg.Precision = "ms"
	}
	return &Sink{
		c:           c,
		probe:       probeName,
		runID:       runID,
		database:    cfg.Database,
		measurement: cfg.Measurement,
		precision:   cfg.Precision,
	}
}

func (s *Sink) Name() string { return "influx" }

// WriteMeasurement implements output.Sink.
func (s *Sink) WriteMeasurement(m probe.Measurement) error {
	bp, err := client.NewBatchPoints(client.BatchPointsConfig{
		Database:  s.database,
		Precision: s.precision,
	})
	if err != nil {
		return fmt.Errorf("influx sink: %w", err)
	}

	tags := map[string]string{"probe": s.probe}
	if s.runID != nil {
		if id := s.runID(); id != "" {
			tags["run_id"] = id
		}
	}

	fields := make(map[string]interface{}, 16)
	for name, v := range m.Channels() {
		fields[name] = v
	}

	pt, err := client.NewPoint(s.measurement, tags, fields, m.Time)
	if err != nil {
		return fmt.Errorf("influx sink: %w", err)
	}
	bp.AddPoint(pt)

	if err := s.c.Write(bp); err != nil {
		return fmt.Errorf("influx sink: write: %w", err)
	}
	return nil
}

// Close releases the HTTP client.
func (s *Sink) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
