/*
Package game
File: config.go
Description:
    Loads and validates the balance configuration.
    It handles reading 'balance.yaml', substituting safe defaults for any
    missing or out-of-range tuning values, and enforcing the one structural
    rule of the progression curve: the Zenith target must outgrow player
    power per coherence level.
*/

package game

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Progress mode selectors for GameBalance.ProgressMode.
const (
	ProgressModeDistance = "distance"
	ProgressModeRatio    = "ratio"
)

// DefaultBalance returns the tuning values used when 'balance.yaml' omits a
// field. These are a playable baseline, not a contract; every value can be
// overridden from the YAML file.
func DefaultBalance() GameBalance {
	return GameBalance{
		CollectBase:        1.0,
		CollectExponent:    1.5,
		BaseResetExponent:  3.0,
		ResetGrowthRate:    0.75,
		BaseTargetExponent: 6.0,
		TargetGrowthRate:   2.0,
		VelocityScale:      1.0,
		ClosingConstant:    0.85,
		DistanceFloor:      1.0,
		ProgressEpsilon:    0.0001,
		ProgressMode:       ProgressModeDistance,
	}
}

// LoadBalance reads the balance file and returns a fully-defaulted, validated
// configuration. A missing or unparsable file is an error (the server cannot
// invent upgrade definitions), but missing individual fields are not.
func LoadBalance(path string) (Balance, error) {
	var bal Balance

	f, err := os.ReadFile(path)
	if err != nil {
		return bal, fmt.Errorf("read balance config: %w", err)
	}

	if err := yaml.Unmarshal(f, &bal); err != nil {
		return bal, fmt.Errorf("parse balance config: %w", err)
	}

	if err := normalizeBalance(&bal); err != nil {
		return bal, err
	}

	return bal, nil
}

// normalizeBalance substitutes defaults for missing tuning values and rejects
// configurations that break the engine's numeric invariants.
func normalizeBalance(bal *Balance) error {
	def := DefaultBalance()
	g := &bal.Game

	// 1. Per-field defaulting: zero values mean "not configured".
	if g.CollectBase <= 0 {
		g.CollectBase = def.CollectBase
	}
	if g.CollectExponent <= 0 {
		g.CollectExponent = def.CollectExponent
	}
	if g.BaseResetExponent <= 0 {
		g.BaseResetExponent = def.BaseResetExponent
	}
	if g.ResetGrowthRate <= 0 {
		g.ResetGrowthRate = def.ResetGrowthRate
	}
	if g.BaseTargetExponent <= 0 {
		g.BaseTargetExponent = def.BaseTargetExponent
	}
	if g.TargetGrowthRate <= 0 {
		g.TargetGrowthRate = def.TargetGrowthRate
	}
	if g.VelocityScale <= 0 {
		g.VelocityScale = def.VelocityScale
	}
	if g.ClosingConstant <= 0 {
		g.ClosingConstant = def.ClosingConstant
	}
	if g.DistanceFloor <= 0 {
		g.DistanceFloor = def.DistanceFloor
	}
	if g.ProgressEpsilon <= 0 || g.ProgressEpsilon >= 100 {
		g.ProgressEpsilon = def.ProgressEpsilon
	}
	if g.ProgressMode != ProgressModeRatio && g.ProgressMode != ProgressModeDistance {
		g.ProgressMode = def.ProgressMode
	}

	// 2. The asymptote rule: the target exponent must grow strictly faster
	// per coherence level than the reboot threshold exponent. Player power is
	// bounded by what the next reboot threshold lets them afford, so this
	// single inequality keeps the Zenith unreachable forever.
	if g.TargetGrowthRate <= g.ResetGrowthRate {
		return fmt.Errorf("balance config: target_growth_rate (%.3f) must exceed reset_growth_rate (%.3f)",
			g.TargetGrowthRate, g.ResetGrowthRate)
	}

	// 3. Upgrade sanity: keys must be unique and cost curves strictly rising.
	seen := make(map[string]bool, len(bal.Upgrades))
	for i := range bal.Upgrades {
		u := &bal.Upgrades[i]
		if u.Key == "" {
			return fmt.Errorf("balance config: upgrade %d has no key", i)
		}
		if seen[u.Key] {
			return fmt.Errorf("balance config: duplicate upgrade key %q", u.Key)
		}
		seen[u.Key] = true

		if u.CostMult <= 1 {
			return fmt.Errorf("balance config: upgrade %q cost_mult must be > 1", u.Key)
		}
		if u.BaseCost <= 0 {
			return fmt.Errorf("balance config: upgrade %q base_cost must be positive", u.Key)
		}
		if u.Kind != KindAdditive && u.Kind != KindMultiplicative {
			return fmt.Errorf("balance config: upgrade %q has unknown kind %q", u.Key, u.Kind)
		}
		if u.Kind == KindMultiplicative && u.Power <= 1 {
			return fmt.Errorf("balance config: multiplicative upgrade %q power must be > 1", u.Key)
		}
		if u.Kind == KindAdditive && u.Power <= 0 {
			return fmt.Errorf("balance config: additive upgrade %q power must be positive", u.Key)
		}
	}

	return nil
}
