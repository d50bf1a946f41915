package game

import (
	"os"
	"path/filepath"
	"testing"
)

func writeBalanceFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "balance.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write balance file: %v", err)
	}
	return path
}

func TestLoadBalanceAppliesDefaults(t *testing.T) {
	// Only one knob set; everything else must fall back to defaults.
	path := writeBalanceFile(t, `
game_balance:
  collect_base: 5
upgrades:
  - key: flux_inductor
    name: Flux Inductor
    base_cost: 10
    cost_mult: 1.15
    power: 1
    kind: additive
`)

	bal, err := LoadBalance(path)
	if err != nil {
		t.Fatalf("LoadBalance: %v", err)
	}

	def := DefaultBalance()
	if bal.Game.CollectBase != 5 {
		t.Fatalf("collect_base = %v, want configured 5", bal.Game.CollectBase)
	}
	if bal.Game.TargetGrowthRate != def.TargetGrowthRate {
		t.Fatalf("target_growth_rate = %v, want default %v", bal.Game.TargetGrowthRate, def.TargetGrowthRate)
	}
	if bal.Game.ProgressMode != def.ProgressMode {
		t.Fatalf("progress_mode = %q, want default %q", bal.Game.ProgressMode, def.ProgressMode)
	}
}

func TestLoadBalanceRejectsBrokenCurves(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{
			// Target must recede faster than the reboot threshold grows.
			"target growth below reset growth",
			`
game_balance:
  target_growth_rate: 0.5
  reset_growth_rate: 0.75
`,
		},
		{
			"cost multiplier not above 1",
			`
upgrades:
  - key: flat_cost
    base_cost: 10
    cost_mult: 1.0
    power: 1
    kind: additive
`,
		},
		{
			"duplicate upgrade key",
			`
upgrades:
  - key: dup
    base_cost: 10
    cost_mult: 1.2
    power: 1
    kind: additive
  - key: dup
    base_cost: 20
    cost_mult: 1.2
    power: 1
    kind: additive
`,
		},
		{
			"multiplicative power not above 1",
			`
upgrades:
  - key: weak_amp
    base_cost: 10
    cost_mult: 1.2
    power: 0.9
    kind: multiplicative
`,
		},
		{
			"unknown kind",
			`
upgrades:
  - key: strange
    base_cost: 10
    cost_mult: 1.2
    power: 1
    kind: exotic
`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeBalanceFile(t, tc.yaml)
			if _, err := LoadBalance(path); err == nil {
				t.Fatal("LoadBalance accepted a broken configuration")
			}
		})
	}
}

func TestLoadBalanceMissingFile(t *testing.T) {
	if _, err := LoadBalance(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("LoadBalance succeeded on a missing file")
	}
}
