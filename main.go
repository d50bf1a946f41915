/*
Package main
File: main.go
Description: Server entry point. Loads the balance configuration, restores the
persisted snapshot, and runs the two heartbeats that keep the game alive: the
fast accrual tick driving the engine and the slower pulse that broadcasts
state to connected clients and writes the snapshot through to storage.
*/

package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/everforgeworks/zenith-engine/internal/api"
	"github.com/everforgeworks/zenith-engine/internal/game"
	"github.com/everforgeworks/zenith-engine/internal/store"
)

// HostConfig holds the deployment knobs, loaded from environment variables.
// Game tuning does NOT live here; that is balance.yaml's job.
type HostConfig struct {
	Addr          string        `env:"ZENITH_ADDR" envDefault:":8081"`
	BalancePath   string        `env:"ZENITH_BALANCE" envDefault:"balance.yaml"`
	DBPath        string        `env:"ZENITH_DB" envDefault:"zenith.db"`
	TickInterval  time.Duration `env:"ZENITH_TICK_INTERVAL" envDefault:"50ms"`
	PulseInterval time.Duration `env:"ZENITH_PULSE_INTERVAL" envDefault:"1s"`
}

func main() {
	// 1. Load host configuration from the environment
	var cfg HostConfig
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("Env Config Fail: %v", err)
	}

	// 2. Load the balance configuration from YAML
	bal, err := game.LoadBalance(cfg.BalancePath)
	if err != nil {
		log.Fatalf("Balance Config Fail: %v", err)
	}
	engine := game.NewEngine(bal)

	// 3. Open the snapshot store and restore any saved progress.
	// Storage trouble is never fatal: we degrade to a memory-only session.
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Printf("Store unavailable, running memory-only: %v", err)
		db = nil
	} else {
		saved, found, loadErr := db.Load()
		switch {
		case loadErr != nil:
			log.Printf("Snapshot load failed, starting fresh: %v", loadErr)
		case found:
			engine.Restore(saved)
			log.Printf("Snapshot restored: coherence %.0f, %d reboots", saved.Coherence, saved.ResetCount)
		default:
			log.Println("No snapshot found, starting a new game")
		}
	}

	// 4. Initialize and start the Real-Time WebSocket Hub
	gameHub := api.NewHub()
	go gameHub.Run()

	srv := &api.Server{Engine: engine, Store: db}

	// 5. THE ACCRUAL HEARTBEAT
	// Drives passive flux generation. The engine only consumes elapsed time,
	// so the cadence here is a hosting choice, not game logic. Elapsed time
	// is measured between iterations rather than assumed from the interval.
	go func() {
		ticker := time.NewTicker(cfg.TickInterval)
		last := time.Now()
		for now := range ticker.C {
			engine.Tick(now.Sub(last).Seconds())
			last = now
		}
	}()

	// 6. THE PULSE HEARTBEAT
	// Broadcasts the current snapshot to every connected client and writes
	// it through to storage, covering flux accrued between user actions.
	go func() {
		ticker := time.NewTicker(cfg.PulseInterval)
		for range ticker.C {
			msg := api.Message{
				Type:    "state_pulse",
				Payload: engine.Snapshot(),
				Sender:  "system",
			}

			jsonBytes, err := json.Marshal(msg)
			if err != nil {
				log.Printf("Error marshaling pulse: %v", err)
				continue
			}
			gameHub.Broadcast <- jsonBytes

			if db != nil {
				if err := db.Save(engine.SaveState()); err != nil {
					log.Printf("Pulse save failed: %v", err)
				}
			}
		}
	}()

	// 7. Hot-reload logic: Listen for SIGHUP to re-tune the balance curve
	// without restarting (and without touching player progress).
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGHUP)
		for {
			<-sigChan
			log.Println("SIGNAL: Reloading balance configuration...")
			newBal, err := game.LoadBalance(cfg.BalancePath)
			if err != nil {
				log.Printf("Reload rejected, keeping current balance: %v", err)
				continue
			}
			engine.Rebalance(newBal)
			log.Println("Balance reloaded")
		}
	}()

	// 8. Graceful shutdown: final write-through on SIGINT/SIGTERM.
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		if db != nil {
			if err := db.Save(engine.SaveState()); err != nil {
				log.Printf("Final save failed: %v", err)
			}
			db.Close()
		}
		log.Println("ZENITH: Shutting down")
		os.Exit(0)
	}()

	// 9. Setup Router and Handlers
	mux := http.NewServeMux()

	// Information Endpoints
	mux.HandleFunc("/api/state", srv.HandleGetState)
	mux.HandleFunc("/api/upgrades", srv.HandleGetUpgrades)

	// Action Endpoints
	mux.HandleFunc("/api/collect", srv.HandleCollect)
	mux.HandleFunc("/api/upgrades/buy", srv.HandleBuyUpgrade)
	mux.HandleFunc("/api/reboot", srv.HandleReboot)

	// Real-Time WebSocket Endpoint
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		api.ServeWs(gameHub, w, r)
	})

	// 10. Start the Server
	log.Printf("ZENITH Server live on %s", cfg.Addr)
	log.Printf("Real-time Hub: Online")

	if err := http.ListenAndServe(cfg.Addr, corsMiddleware(mux)); err != nil {
		log.Fatal(err)
	}
}

// corsMiddleware lets the browser client talk to the server across domains.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
