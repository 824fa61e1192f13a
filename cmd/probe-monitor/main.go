// cmd/probe-monitor/main.go
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tamzrod/water-probe-monitor/internal/config"
	"github.com/tamzrod/water-probe-monitor/internal/httpapi"
	"github.com/tamzrod/water-probe-monitor/internal/metrics"
	"github.com/tamzrod/water-probe-monitor/internal/output"
	"github.com/tamzrod/water-probe-monitor/internal/sink/influx"
	"github.com/tamzrod/water-probe-monitor/internal/sink/mirror"
	"github.com/tamzrod/water-probe-monitor/internal/sink/recorder"
	"github.com/tamzrod/water-probe-monitor/internal/task"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: probe-monitor <config.yaml>")
	}

	cfgPath := os.Args[1]

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if err := config.ValidateStandalone(cfg); err != nil {
		log.Fatalf("config validation failed: %v", err)
	}
	config.Normalize(cfg)

	pc := cfg.Probe

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// --------------------
	// Metrics + output port
	// --------------------

	reg := prometheus.NewRegistry()
	met := metrics.New(reg, pc.Name)

	port := output.NewPort("measurements")
	port.SetErrorObserver(met)

	latest := output.NewLatest()
	mustConnect(port, latest)

	tk := task.New(pc.Name, port, task.WithObserver(met))

	// --------------------
	// Optional sinks
	// --------------------

	if ic := cfg.Outputs.Influx; ic != nil {
		s, err := influx.New(influx.Config{
			Address:     ic.Address,
			Username:    ic.Username,
			Password:    ic.Password,
			Database:    ic.Database,
			Measurement: ic.Measurement,
			Timeout:     time.Duration(ic.TimeoutMs) * time.Millisecond,
		}, pc.Name, tk.RunID)
		if err != nil {
			log.Fatalf("influx sink failed: %v", err)
		}
		defer s.Close()
		mustConnect(port, s)
	}

	if rc := cfg.Outputs.Recorder; rc != nil {
		r, err := recorder.Open(rc.Path)
		if err != nil {
			log.Fatalf("recorder sink failed: %v", err)
		}
		defer r.Close()
		mustConnect(port, r)
	}

	var statusWriter *mirror.StatusWriter
	if mc := cfg.Outputs.Mirror; mc != nil {
		cli, err := mirror.Dial(mirror.ClientConfig{
			Endpoint: mc.Endpoint,
			Timeout:  time.Duration(mc.TimeoutMs) * time.Millisecond,
		})
		if err != nil {
			log.Fatalf("mirror connect failed (endpoint=%s): %v", mc.Endpoint, err)
		}
		defer cli.Close()
		mustConnect(port, mirror.NewSink(cli, mc.UnitID, mc.Address))

		if sc := mc.Status; sc != nil {
			statusWriter = mirror.NewStatusWriter(cli, mirror.StatusPlan{
				UnitID:     sc.UnitID,
				Slot:       sc.Slot,
				DeviceName: sc.DeviceName,
			})
		}
	}

	// --------------------
	// Task lifecycle
	// --------------------

	err = tk.Configure(task.Config{
		DeviceAddress:          *pc.DeviceAddress,
		IOPort:                 pc.IOPort,
		ReadTimeout:            time.Duration(pc.IOReadTimeoutMs) * time.Millisecond,
		MaxConsecutiveTimeouts: *pc.MaxConsecutiveTimeouts,
	})
	if err != nil {
		log.Fatalf("task configure failed: %v", err)
	}
	defer func() {
		if err := tk.Cleanup(); err != nil {
			log.Printf("task cleanup failed: %v", err)
		}
	}()

	if err := tk.Start(); err != nil {
		log.Fatalf("task start failed: %v", err)
	}

	runErr := make(chan error, 1)
	go func() {
		runErr <- task.Run(ctx, tk, time.Duration(pc.PeriodMs)*time.Millisecond)
	}()

	// Status block refresh (1 Hz, also carries seconds_in_error)
	if statusWriter != nil {
		go func() {
			secTicker := time.NewTicker(time.Second)
			defer secTicker.Stop()

			for {
				if err := statusWriter.WriteStatus(tk.Snapshot()); err != nil {
					log.Printf("status write failed (probe=%s): %v", pc.Name, err)
				}

				select {
				case <-ctx.Done():
					return
				case <-secTicker.C:
				}
			}
		}()
	}

	// --------------------
	// HTTP
	// --------------------

	srv := &http.Server{
		Addr:              cfg.HTTP.Listen,
		Handler:           httpapi.NewServer(tk, latest, met.Handler()),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("http listening on %s", cfg.HTTP.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server failed: %v", err)
		}
	}()

	// --------------------
	// Wait for shutdown or fault
	// --------------------

	select {
	case <-ctx.Done():
		log.Printf("shutdown requested (probe=%s)", pc.Name)
		<-runErr
	case err := <-runErr:
		if err != nil {
			// Keep serving status so the fault stays visible until shutdown.
			log.Printf("probe task faulted (probe=%s): %v", pc.Name, err)
		}
		<-ctx.Done()
	}

	if tk.State() == task.StateRunning {
		if err := tk.Stop(); err != nil {
			log.Printf("task stop failed: %v", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown failed: %v", err)
	}
}

func mustConnect(port *output.Port, s output.Sink) {
	if err := port.Connect(s); err != nil {
		log.Fatalf("output connect failed: %v", err)
	}
}
