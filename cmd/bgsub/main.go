/*
DESCRIPTION
  bgsub reads MJPEG video from a file or webcam, subtracts its background
  and writes the foreground masks to an MJPEG file. Configuration is read
  from a file of Key=Value lines, which is watched for changes.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Dan Kortschak <dan@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package bgsub is a command line background subtraction daemon.
package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"syscall"

	"github.com/coreos/go-systemd/daemon"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/bgsub/config"
	"github.com/ausocean/bgsub/pipeline"
	"github.com/ausocean/utils/logging"
)

// Current software version.
const version = "v0.1.0"

// Logging configuration.
const (
	defaultLogPath = "/var/log/bgsub/bgsub.log"
	logMaxSize     = 500 // MB
	logMaxBackup   = 10
	logMaxAge      = 28 // days
	logVerbosity   = logging.Info
	logSuppress    = true
)

// Misc constants.
const (
	pkg         = "bgsub: "
	profilePath = "bgsub.prof"
)

// This is set to true if the 'profile' build tag is provided on build.
var canProfile = false

func main() {
	var (
		showVersion = flag.Bool("version", false, "show version")
		cfgPath     = flag.String("config", "", "location of Key=Value configuration file")
		logPath     = flag.String("log", defaultLogPath, "location of the rotated log file")
		plotPath    = flag.String("plot", "", "if set, a PNG plot of foreground coverage is written here on exit")
		metricsAddr = flag.String("metrics", "", "if set, Prometheus metrics are served at this address under /metrics")
	)
	flag.Parse()
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Create lumberjack logger to handle logging to file.
	fileLog := &lumberjack.Logger{
		Filename:   *logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(logVerbosity, io.MultiWriter(fileLog, os.Stderr), logSuppress)
	log.Info("starting bgsub", "version", version)

	// If bgsub has been built with the profile tag, then we'll start a CPU profile.
	if canProfile {
		profile(log)
		defer pprof.StopCPUProfile()
		log.Info("profiling started")
	}

	if *cfgPath == "" {
		log.Fatal(pkg + "no config file provided")
	}
	vars, err := readConfig(*cfgPath)
	if err != nil {
		log.Fatal(pkg+"could not read config", "error", err.Error())
	}

	p, err := pipeline.New(config.Config{Logger: log})
	if err != nil {
		log.Fatal(pkg+"could not initialise pipeline", "error", err.Error())
	}
	cov := &coverage{}
	m := newMetrics(p.Bitrate)
	err = p.SetCoverage(func(c float64) {
		cov.add(c)
		m.observe(c)
	})
	if err != nil {
		log.Fatal(pkg+"could not set coverage callback", "error", err.Error())
	}

	err = p.Update(vars)
	if err != nil {
		log.Fatal(pkg+"could not update pipeline config", "error", err.Error())
	}
	err = p.Start()
	if err != nil {
		log.Fatal(pkg+"could not start pipeline", "error", err.Error())
	}

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", m.handler())
			err := http.ListenAndServe(*metricsAddr, mux)
			log.Error(pkg+"metrics server stopped", "error", err.Error())
		}()
	}

	_, err = daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		log.Warning(pkg+"could not notify systemd", "error", err.Error())
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Fatal(pkg+"could not create config watcher", "error", err.Error())
	}
	defer watcher.Close()
	// Editors often replace files, so the directory is watched.
	err = watcher.Add(filepath.Dir(*cfgPath))
	if err != nil {
		log.Fatal(pkg+"could not watch config", "error", err.Error())
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	run(p, watcher, sig, *cfgPath, log)

	daemon.SdNotify(false, daemon.SdNotifyStopping)
	p.Stop()
	if *plotPath != "" {
		err = cov.save(*plotPath)
		if err != nil {
			log.Error(pkg+"could not save coverage plot", "error", err.Error())
		}
	}
	log.Info("bgsub stopped")
}

// run reloads the pipeline whenever the config file at path changes, until a
// signal is received.
func run(p *pipeline.Pipeline, w *fsnotify.Watcher, sig <-chan os.Signal, path string, l logging.Logger) {
	for {
		select {
		case s := <-sig:
			l.Info(pkg+"received signal", "signal", s.String())
			return

		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			l.Info(pkg+"config changed", "event", ev.Op.String())
			vars, err := readConfig(path)
			if err != nil {
				l.Error(pkg+"could not read config", "error", err.Error())
				continue
			}
			daemon.SdNotify(false, daemon.SdNotifyReloading)
			err = reload(p, vars)
			if err != nil {
				l.Error(pkg+"could not reload pipeline", "error", err.Error())
			}
			daemon.SdNotify(false, daemon.SdNotifyReady)

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			l.Warning(pkg+"config watcher error", "error", err.Error())
		}
	}
}

// reload applies vars to p and restarts it.
func reload(p *pipeline.Pipeline, vars map[string]string) error {
	err := p.Update(vars)
	if err != nil {
		return fmt.Errorf("could not update config: %w", err)
	}
	return p.Start()
}

// readConfig reads the Key=Value config file at path.
func readConfig(path string) (map[string]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return config.Parse(string(b)), nil
}

// profile creates a file to hold CPU profile metrics and begins CPU profiling.
func profile(l logging.Logger) {
	f, err := os.Create(profilePath)
	if err != nil {
		l.Fatal(pkg+"could not create CPU profile", "error", err.Error())
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		l.Fatal(pkg+"could not start CPU profile", "error", err.Error())
	}
}
