// Command server is the PlayPalace entry point: it loads configuration,
// wires persistence, rating, the game registry, the table manager, the
// tick scheduler, and the session shell together, then serves WebSocket
// connections until told to stop.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"playpalace/internal/config"
	"playpalace/internal/estimate"
	"playpalace/internal/gameframework"
	"playpalace/internal/games/pig"
	"playpalace/internal/localization"
	"playpalace/internal/persistence"
	"playpalace/internal/presence"
	"playpalace/internal/rating"
	"playpalace/internal/session"
	"playpalace/internal/tick"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	cfg.LogConfig()

	loadLocales(cfg.LocalesDir)

	db, err := persistence.Open(cfg)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	registry := gameframework.NewRegistry()
	pig.Register(registry)

	ratingEngine := rating.New(db)
	presenceCache := presence.New(cfg.RedisAddr, cfg.RedisDB)
	defer presenceCache.Close()

	srv := session.New(db, ratingEngine, registry, presenceCache)
	srv.Tables.SetEstimator(estimate.New())
	srv.Tables.SetPredictor(&rating.OutcomePredictor{Engine: ratingEngine})
	srv.LoadSavedTables()

	scheduler := tick.New(srv.Tables, srv.Users)
	scheduler.Start()

	if err := srv.Transport.Start(cfg.Host, cfg.Port, cfg.SSLCertFile, cfg.SSLKeyFile); err != nil {
		log.Fatalf("failed to start transport: %v", err)
	}

	writeStatusFile(cfg)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("received signal: %v", sig)

	shutdown(cfg, srv, scheduler)
}

func shutdown(cfg *config.Config, srv *session.Server, scheduler *tick.Scheduler) {
	log.Println("[1/4] stopping new connections and closing open sockets...")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSecs)*time.Second)
	defer cancel()
	if err := srv.Transport.Stop(ctx); err != nil {
		log.Printf("transport shutdown error: %v", err)
	}

	log.Println("[2/4] stopping the tick scheduler...")
	scheduler.Stop()

	log.Println("[3/4] saving in-progress tables...")
	srv.Tables.SaveAllTables()

	log.Println("[4/4] closing the database...")
	if err := srv.DB.Close(); err != nil {
		log.Printf("database close error: %v", err)
	}

	if cfg.StatusFile != "" {
		os.Remove(cfg.StatusFile)
	}

	log.Println("PlayPalace server offline.")
}

// loadLocales installs every "<locale>.json" file under dir as an
// additional message bundle, on top of the built-in English catalog. The
// directory is optional: a server with no translations configured simply
// serves English to everyone.
func loadLocales(dir string) {
	if dir == "" {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("locales: could not read %s: %v", dir, err)
		}
		return
	}

	const ext = ".json"
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if len(name) <= len(ext) || name[len(name)-len(ext):] != ext {
			continue
		}
		locale := name[:len(name)-len(ext)]

		data, err := os.ReadFile(dir + "/" + name)
		if err != nil {
			log.Printf("locales: reading %s: %v", name, err)
			continue
		}
		var bundle struct {
			NativeName string            `json:"native_name"`
			Messages   map[string]string `json:"messages"`
		}
		if err := json.Unmarshal(data, &bundle); err != nil {
			log.Printf("locales: parsing %s: %v", name, err)
			continue
		}
		localization.RegisterBundle(locale, bundle.Messages, bundle.NativeName)
		log.Printf("locales: installed %s (%s)", locale, bundle.NativeName)
	}
}

// writeStatusFile drops a small JSON status blob at cfg.StatusFile, for an
// external process supervisor to confirm the server came up. Optional: no
// file is written if -status-file wasn't set.
func writeStatusFile(cfg *config.Config) {
	if cfg.StatusFile == "" {
		return
	}
	status := struct {
		PID       int    `json:"pid"`
		Listening string `json:"listening"`
		StartedAt string `json:"started_at"`
	}{
		PID:       os.Getpid(),
		Listening: cfg.ListenAddress(),
		StartedAt: time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		log.Printf("status file: marshal: %v", err)
		return
	}
	if err := os.WriteFile(cfg.StatusFile, data, 0644); err != nil {
		log.Printf("status file: write %s: %v", cfg.StatusFile, err)
	}
}
