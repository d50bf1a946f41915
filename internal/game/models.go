/*
Package game
File: models.go
Description:
    Defines all data structures (Structs) used by the Zenith progression engine.
    This file serves as the "schema" for the application, mapping directly to
    the balance YAML file and JSON API responses.

    No logic is performed here; this file is strictly for type definitions.
*/

package game

// UpgradeKind distinguishes how an upgrade feeds into the accrual rate.
type UpgradeKind string

const (
	// KindAdditive upgrades sum into the base rate: each owned unit adds Power.
	KindAdditive UpgradeKind = "additive"

	// KindMultiplicative upgrades compound the total: the rate is multiplied
	// by Power once per owned unit.
	KindMultiplicative UpgradeKind = "multiplicative"
)

// UpgradeDefinition is an immutable, purchasable modifier to the flux rate.
// Definitions are fixed at startup from 'balance.yaml'.
type UpgradeDefinition struct {
	Key         string      `yaml:"key" json:"key"`                 // Unique ID (e.g., "flux_inductor")
	Name        string      `yaml:"name" json:"name"`               // Display name
	Description string      `yaml:"description" json:"description"` // Flavor text
	BaseCost    float64     `yaml:"base_cost" json:"base_cost"`     // Cost of the first unit
	CostMult    float64     `yaml:"cost_mult" json:"cost_mult"`     // Per-unit cost growth factor (must be > 1)
	Power       float64     `yaml:"power" json:"power"`             // Effect magnitude per unit
	Kind        UpgradeKind `yaml:"kind" json:"kind"`               // "additive" or "multiplicative"
}

// GameBalance stores the global tuning variables loaded from 'balance.yaml'.
// These values control the entire progression curve. None of them are
// behavioral contracts; they exist so the curve can be re-tuned without a
// code change.
type GameBalance struct {
	CollectBase        float64 `yaml:"collect_base" json:"collect_base"`                 // Flux granted per manual collect at coherence 1
	CollectExponent    float64 `yaml:"collect_exponent" json:"collect_exponent"`         // Collect scales by coherence^exponent
	BaseResetExponent  float64 `yaml:"base_reset_exponent" json:"base_reset_exponent"`   // Reboot threshold = 10^(base + growth*(coherence-1))
	ResetGrowthRate    float64 `yaml:"reset_growth_rate" json:"reset_growth_rate"`       // Per-coherence growth of the reboot threshold exponent
	BaseTargetExponent float64 `yaml:"base_target_exponent" json:"base_target_exponent"` // Zenith target = 10^(base + growth*(coherence-1))
	TargetGrowthRate   float64 `yaml:"target_growth_rate" json:"target_growth_rate"`     // Per-coherence growth of the target exponent
	VelocityScale      float64 `yaml:"velocity_scale" json:"velocity_scale"`             // Converts flux rate into approach velocity
	ClosingConstant    float64 `yaml:"closing_constant" json:"closing_constant"`         // Fraction of velocity that actually closes distance
	DistanceFloor      float64 `yaml:"distance_floor" json:"distance_floor"`             // Remaining distance never drops below this
	ProgressEpsilon    float64 `yaml:"progress_epsilon" json:"progress_epsilon"`         // Completion is clamped below 100 - epsilon
	ProgressMode       string  `yaml:"progress_mode" json:"progress_mode"`               // "distance" or "ratio"
}

// Balance is the root configuration struct, mapping to the entire
// 'balance.yaml' file.
type Balance struct {
	Game     GameBalance         `yaml:"game_balance"`
	Upgrades []UpgradeDefinition `yaml:"upgrades"`
}

// UpgradeStatus is the per-upgrade slice of a state snapshot: the static
// definition joined with the player's current ownership and affordability.
type UpgradeStatus struct {
	Key        string      `json:"key"`
	Name       string      `json:"name"`
	Kind       UpgradeKind `json:"kind"`
	Power      float64     `json:"power"`
	Count      int         `json:"count"`      // Units currently owned
	NextCost   float64     `json:"next_cost"`  // Price of the next unit at the current count
	Affordable bool        `json:"affordable"` // Whether current flux covers NextCost
}

// Snapshot is the read-only view of engine state consumed by the
// presentation layer. It is recomputed on demand and carries no authority;
// changing the engine requires calling its operations.
type Snapshot struct {
	Resource          float64         `json:"resource"`           // Current spendable flux
	TotalAccrued      float64         `json:"total_accrued"`      // Lifetime flux earned (statistics only)
	Coherence         float64         `json:"coherence"`          // Prestige multiplier level (>= 1.0)
	ResetCount        int             `json:"reset_count"`        // Completed reboots
	Rate              float64         `json:"rate"`               // Passive flux per second
	ZenithTarget      float64         `json:"zenith_target"`      // Current win threshold
	ResetRequirement  float64         `json:"reset_requirement"`  // Flux needed to reboot
	CanReboot         bool            `json:"can_reboot"`         // Whether Reset would succeed right now
	CompletionPct     float64         `json:"completion_pct"`     // Progress toward the target, always < 100
	Velocity          float64         `json:"velocity"`           // Approach speed (distance mode)
	DistanceRemaining float64         `json:"distance_remaining"` // Distance left to the target (distance mode)
	ETASeconds        float64         `json:"eta_seconds"`        // Estimated seconds to target; -1 when unreachable
	Upgrades          []UpgradeStatus `json:"upgrades"`
}

// UpgradeCount pairs an upgrade key with its owned count for persistence.
type UpgradeCount struct {
	Key   string `json:"id" db:"key"`
	Count int    `json:"count" db:"count"`
}

// SaveState is the persisted subset of engine state. Derived values (rate,
// target, distance) are intentionally absent: they are pure functions of the
// fields below plus the balance configuration.
type SaveState struct {
	Resource     float64        `json:"resource"`
	TotalAccrued float64        `json:"totalAccrued"`
	Coherence    float64        `json:"coherence"`
	ResetCount   int            `json:"resetCount"`
	Upgrades     []UpgradeCount `json:"upgrades"`
}
