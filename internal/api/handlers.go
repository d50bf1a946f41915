/*
Package api
File: handlers.go
Description:
    Contains the HTTP handlers for the REST API.
    These functions process incoming JSON requests, invoke the progression
    engine's operations, and return the resulting state snapshot as JSON.

    Key Responsibilities:
    - Input Validation (Is the JSON valid? Does the upgrade exist?)
    - Invoking engine operations (Collect, PurchaseUpgrade, Reset)
    - Write-through persistence after every resource-affecting action

    Declined actions (can't afford, threshold not met) are normal outcomes:
    they map to 402 responses and leave the engine untouched. The engine
    itself never produces errors.
*/

package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/everforgeworks/zenith-engine/internal/game"
	"github.com/everforgeworks/zenith-engine/internal/store"
)

// Server bundles the engine with its persistence collaborator. Handlers are
// methods so no package-level state is needed; main constructs one Server and
// mounts it.
type Server struct {
	Engine *game.Engine
	Store  *store.DB // nil when persistence is unavailable (memory-only session)
}

// Request DTOs (Data Transfer Objects)
// These structs define exactly what we expect the client to send us.

type BuyUpgradeRequest struct {
	Key string `json:"key"`
}

// HandleGetState returns the full engine snapshot: flux, rate, coherence,
// target, completion percentage, ETA, and the per-upgrade status list.
func (s *Server) HandleGetState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.Engine.Snapshot())
}

// HandleGetUpgrades returns the upgrade catalog with current costs and
// affordability, for clients that only render the shop.
func (s *Server) HandleGetUpgrades(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.Engine.Snapshot().Upgrades)
}

// HandleCollect performs the manual flux grab. It always succeeds.
func (s *Server) HandleCollect(w http.ResponseWriter, r *http.Request) {
	s.Engine.Collect()
	s.persist()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.Engine.Snapshot())
}

// HandleBuyUpgrade purchases one unit of the requested upgrade.
func (s *Server) HandleBuyUpgrade(w http.ResponseWriter, r *http.Request) {
	var req BuyUpgradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	// 1. Validate the key before attempting the purchase, so unknown
	// upgrades and unaffordable ones get distinct statuses.
	if _, ok := s.Engine.CostOf(req.Key); !ok {
		http.Error(w, "Upgrade not found", http.StatusNotFound)
		return
	}

	// 2. Attempt the purchase. The engine re-checks affordability under its
	// own lock; a false return means nothing changed.
	if !s.Engine.PurchaseUpgrade(req.Key) {
		http.Error(w, "Insufficient flux", http.StatusPaymentRequired)
		return
	}

	s.persist()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.Engine.Snapshot())
}

// HandleReboot performs the coherence reset. Declined when the flux total is
// below the reboot threshold.
func (s *Server) HandleReboot(w http.ResponseWriter, r *http.Request) {
	if !s.Engine.Reset() {
		http.Error(w, "Reboot threshold not met", http.StatusPaymentRequired)
		return
	}

	s.persist()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.Engine.Snapshot())
}

// persist writes the snapshot through to storage. Persistence failures never
// break the session; they degrade to in-memory play with a log line.
func (s *Server) persist() {
	if s.Store == nil {
		return
	}
	if err := s.Store.Save(s.Engine.SaveState()); err != nil {
		log.Printf("Persist error (continuing in memory): %v", err)
	}
}
