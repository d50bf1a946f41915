/*
Package game
File: engine.go
Description:
    The progression engine. It owns all numeric game state (flux, coherence,
    upgrade counts, distance to the Zenith) and exposes the four mutating
    operations (Tick, Collect, PurchaseUpgrade, Reset) plus the derived
    read-only queries the presentation layer consumes.

    Design rules:
    - All state lives on the Engine struct; there are no package globals.
    - One RWMutex guards the whole aggregate. Every public operation is a
      single critical section, so callers never observe partial updates.
    - Declined actions (can't afford an upgrade, reboot threshold not met)
      return false and leave state untouched. They are outcomes, not errors.
*/

package game

import (
	"math"
	"sync"
)

// Engine is the single mutable aggregate behind the game. Create one with
// NewEngine and share it by pointer; all methods are safe for concurrent use.
type Engine struct {
	mu sync.RWMutex

	balance GameBalance
	defs    map[string]UpgradeDefinition
	order   []string // Upgrade keys in definition order, for stable snapshots

	resource     float64        // Current spendable flux, never negative
	totalAccrued float64        // Lifetime flux earned, monotonic
	coherence    float64        // Prestige level, starts at 1.0, only Reset raises it
	resetCount   int            // Completed reboots
	counts       map[string]int // Owned units per upgrade key

	// distanceRemaining is the receding-target framing of progress: it is
	// re-anchored to the full Zenith target on every reboot and closed by
	// accrual velocity, floored so it never reaches zero.
	distanceRemaining float64
}

// NewEngine builds a fresh engine from a validated balance configuration.
// The new state is the canonical "new game": zero flux, coherence 1.0, no
// upgrades owned, distance anchored at the full Zenith target.
func NewEngine(bal Balance) *Engine {
	e := &Engine{
		balance:   bal.Game,
		defs:      make(map[string]UpgradeDefinition, len(bal.Upgrades)),
		order:     make([]string, 0, len(bal.Upgrades)),
		coherence: 1.0,
		counts:    make(map[string]int, len(bal.Upgrades)),
	}
	for _, u := range bal.Upgrades {
		e.defs[u.Key] = u
		e.order = append(e.order, u.Key)
		e.counts[u.Key] = 0
	}
	e.distanceRemaining = e.zenithTarget()
	return e
}

// Tick advances passive accrual by the elapsed wall-clock seconds since the
// previous tick. Negative elapsed time (clock skew) is clamped to zero.
// The host decides the cadence; the engine only cares about the delta.
func (e *Engine) Tick(elapsedSeconds float64) {
	if elapsedSeconds < 0 {
		elapsedSeconds = 0
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	rate := e.currentRate()
	gained := rate * elapsedSeconds
	e.resource += gained
	e.totalAccrued += gained

	// Close the distance to the Zenith. The floor keeps the target a strict
	// asymptote even if the closing math would overshoot in one large tick.
	closed := rate * e.balance.VelocityScale * e.balance.ClosingConstant * elapsedSeconds
	e.distanceRemaining -= closed
	if e.distanceRemaining < e.balance.DistanceFloor {
		e.distanceRemaining = e.balance.DistanceFloor
	}
}

// Collect is the manual action: a fixed grant scaled by a power of coherence.
// It always succeeds.
func (e *Engine) Collect() {
	e.mu.Lock()
	defer e.mu.Unlock()

	gained := e.balance.CollectBase * math.Pow(e.coherence, e.balance.CollectExponent)
	e.resource += gained
	e.totalAccrued += gained
}

// PurchaseUpgrade buys one unit of the given upgrade. Returns false (state
// unchanged) when the key is unknown or current flux does not cover the cost.
// The price is always the pre-purchase price: it is evaluated at the count
// the player owned before this call.
func (e *Engine) PurchaseUpgrade(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	def, ok := e.defs[key]
	if !ok {
		return false
	}

	cost := upgradeCost(def, e.counts[key])
	if e.resource < cost {
		return false
	}

	e.resource -= cost
	e.counts[key]++
	return true
}

// Reset performs the reboot: it trades all current progress for one
// coherence level. Returns false (state unchanged) when current flux is
// below the reboot threshold. On success the whole transition is applied
// under one lock: coherence +1, flux zeroed, every upgrade count zeroed,
// and the distance re-anchored to the new (larger) Zenith target.
func (e *Engine) Reset() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.resource < e.resetRequirement() {
		return false
	}

	e.coherence += 1.0
	e.resource = 0
	e.resetCount++
	for k := range e.counts {
		e.counts[k] = 0
	}
	e.distanceRemaining = e.zenithTarget()
	return true
}

// CurrentRate returns passive flux per second:
// (sum of additive count*power) * (product of multiplicative power^count) * coherence.
func (e *Engine) CurrentRate() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.currentRate()
}

// CostOf returns the price of the next unit of the given upgrade at its
// current count. The second return is false for unknown keys.
func (e *Engine) CostOf(key string) (float64, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	def, ok := e.defs[key]
	if !ok {
		return 0, false
	}
	return upgradeCost(def, e.counts[key]), true
}

// ResetRequirement returns the flux threshold the next reboot demands.
// It grows exponentially with coherence so reboots cannot be chained.
func (e *Engine) ResetRequirement() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.resetRequirement()
}

// ZenithTarget returns the current win threshold. Its exponent grows faster
// per coherence level than the reboot threshold's, which is what keeps the
// completion percentage from ever reaching 100.
func (e *Engine) ZenithTarget() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.zenithTarget()
}

// CompletionFraction returns progress toward the Zenith as a percentage in
// [0, 100), strictly clamped below 100 regardless of state magnitude.
func (e *Engine) CompletionFraction() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.completionFraction()
}

// EstimatedTimeToTarget returns the naive seconds-to-Zenith at the current
// closing speed, or -1 when the closing speed is zero (nothing owned, or
// ratio mode with no meaningful distance). The estimate is honest about the
// current instant only; the target will have moved by then.
func (e *Engine) EstimatedTimeToTarget() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	speed := e.currentRate() * e.balance.VelocityScale * e.balance.ClosingConstant
	if speed <= 0 {
		return -1
	}
	return e.distanceRemaining / speed
}

// Snapshot assembles the full read-only view consumed by the API layer and
// the persistence write-through.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	rate := e.currentRate()
	requirement := e.resetRequirement()
	speed := rate * e.balance.VelocityScale * e.balance.ClosingConstant

	eta := -1.0
	if speed > 0 {
		eta = e.distanceRemaining / speed
	}

	snap := Snapshot{
		Resource:          e.resource,
		TotalAccrued:      e.totalAccrued,
		Coherence:         e.coherence,
		ResetCount:        e.resetCount,
		Rate:              rate,
		ZenithTarget:      e.zenithTarget(),
		ResetRequirement:  requirement,
		CanReboot:         e.resource >= requirement,
		CompletionPct:     e.completionFraction(),
		Velocity:          rate * e.balance.VelocityScale,
		DistanceRemaining: e.distanceRemaining,
		ETASeconds:        eta,
		Upgrades:          make([]UpgradeStatus, 0, len(e.order)),
	}

	for _, key := range e.order {
		def := e.defs[key]
		cost := upgradeCost(def, e.counts[key])
		snap.Upgrades = append(snap.Upgrades, UpgradeStatus{
			Key:        def.Key,
			Name:       def.Name,
			Kind:       def.Kind,
			Power:      def.Power,
			Count:      e.counts[key],
			NextCost:   cost,
			Affordable: e.resource >= cost,
		})
	}
	return snap
}

// SaveState extracts the persisted subset of engine state.
func (e *Engine) SaveState() SaveState {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s := SaveState{
		Resource:     e.resource,
		TotalAccrued: e.totalAccrued,
		Coherence:    e.coherence,
		ResetCount:   e.resetCount,
		Upgrades:     make([]UpgradeCount, 0, len(e.order)),
	}
	for _, key := range e.order {
		s.Upgrades = append(s.Upgrades, UpgradeCount{Key: key, Count: e.counts[key]})
	}
	return s
}

// Restore overwrites engine state from a persisted snapshot. Recovery is
// per-field: missing or invalid values fall back to the new-game defaults,
// upgrade entries with unknown keys are ignored, and known upgrades absent
// from the snapshot keep count zero. Restore never fails.
func (e *Engine) Restore(s SaveState) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.resource = s.Resource
	if e.resource < 0 || math.IsNaN(e.resource) || math.IsInf(e.resource, 0) {
		e.resource = 0
	}

	e.totalAccrued = s.TotalAccrued
	if e.totalAccrued < e.resource || math.IsNaN(e.totalAccrued) || math.IsInf(e.totalAccrued, 0) {
		e.totalAccrued = e.resource
	}

	e.coherence = s.Coherence
	if e.coherence < 1.0 || math.IsNaN(e.coherence) || math.IsInf(e.coherence, 0) {
		e.coherence = 1.0
	}

	e.resetCount = s.ResetCount
	if e.resetCount < 0 {
		e.resetCount = 0
	}

	for k := range e.counts {
		e.counts[k] = 0
	}
	for _, uc := range s.Upgrades {
		if _, known := e.defs[uc.Key]; known && uc.Count > 0 {
			e.counts[uc.Key] = uc.Count
		}
	}

	// Distance is transient and not persisted: re-derive it from the flux
	// already accrued this run, so a reload lands close to where it left off.
	closed := e.resource * e.balance.VelocityScale * e.balance.ClosingConstant
	e.distanceRemaining = e.zenithTarget() - closed
	if e.distanceRemaining < e.balance.DistanceFloor {
		e.distanceRemaining = e.balance.DistanceFloor
	}
}

// Rebalance swaps in a new balance configuration without touching progress
// (used for SIGHUP hot reloads). Counts for upgrades that no longer exist
// are dropped; new upgrades start at zero.
func (e *Engine) Rebalance(bal Balance) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.balance = bal.Game
	e.defs = make(map[string]UpgradeDefinition, len(bal.Upgrades))
	e.order = e.order[:0]

	oldCounts := e.counts
	e.counts = make(map[string]int, len(bal.Upgrades))
	for _, u := range bal.Upgrades {
		e.defs[u.Key] = u
		e.order = append(e.order, u.Key)
		e.counts[u.Key] = oldCounts[u.Key]
	}

	// The retuned target may be smaller than the remaining distance.
	target := e.zenithTarget()
	if e.distanceRemaining > target {
		e.distanceRemaining = target
	}
	if e.distanceRemaining < e.balance.DistanceFloor {
		e.distanceRemaining = e.balance.DistanceFloor
	}
}

// --- Internal math (callers must hold the lock) ---

// upgradeCost is the canonical exponential cost curve:
// baseCost * costMult^count, strictly increasing because costMult > 1.
func upgradeCost(def UpgradeDefinition, count int) float64 {
	return def.BaseCost * math.Pow(def.CostMult, float64(count))
}

func (e *Engine) currentRate() float64 {
	additive := 0.0
	multiplier := 1.0

	for key, count := range e.counts {
		if count == 0 {
			continue
		}
		def := e.defs[key]
		switch def.Kind {
		case KindAdditive:
			additive += float64(count) * def.Power
		case KindMultiplicative:
			multiplier *= math.Pow(def.Power, float64(count))
		}
	}

	return additive * multiplier * e.coherence
}

func (e *Engine) resetRequirement() float64 {
	exp := e.balance.BaseResetExponent + e.balance.ResetGrowthRate*(e.coherence-1)
	return math.Pow(10, exp)
}

func (e *Engine) zenithTarget() float64 {
	exp := e.balance.BaseTargetExponent + e.balance.TargetGrowthRate*(e.coherence-1)
	return math.Pow(10, exp)
}

func (e *Engine) completionFraction() float64 {
	target := e.zenithTarget()
	maxPct := 100 - e.balance.ProgressEpsilon

	var pct float64
	if e.balance.ProgressMode == ProgressModeRatio {
		pct = e.resource / target * 100
	} else {
		pct = (1 - e.distanceRemaining/target) * 100
	}

	if pct < 0 {
		return 0
	}
	if pct > maxPct {
		return maxPct
	}
	return pct
}
