package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lugondev/go-ammcore/internal/state"
)

// PoolPreset is a named pool parameter set loaded from the presets file.
// Presets let operators initialize pools with vetted fee schedules instead
// of hand-typed fractions.
type PoolPreset struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	Fees struct {
		MinSeparateNumerator   uint64 `yaml:"min_separate_numerator"`
		MinSeparateDenominator uint64 `yaml:"min_separate_denominator"`
		TradeFeeNumerator      uint64 `yaml:"trade_fee_numerator"`
		TradeFeeDenominator    uint64 `yaml:"trade_fee_denominator"`
		PnlNumerator           uint64 `yaml:"pnl_numerator"`
		PnlDenominator         uint64 `yaml:"pnl_denominator"`
		SwapFeeNumerator       uint64 `yaml:"swap_fee_numerator"`
		SwapFeeDenominator     uint64 `yaml:"swap_fee_denominator"`
	} `yaml:"fees"`

	OrderNum       uint64 `yaml:"order_num"`
	Depth          uint64 `yaml:"depth"`
	MinSize        uint64 `yaml:"min_size"`
	VolMaxCutRatio uint64 `yaml:"vol_max_cut_ratio"`
	AmountWave     uint64 `yaml:"amount_wave"`
}

// ToFees converts the preset's fee block into the pool state form.
func (p *PoolPreset) ToFees() state.Fees {
	return state.Fees{
		MinSeparateNumerator:   p.Fees.MinSeparateNumerator,
		MinSeparateDenominator: p.Fees.MinSeparateDenominator,
		TradeFeeNumerator:      p.Fees.TradeFeeNumerator,
		TradeFeeDenominator:    p.Fees.TradeFeeDenominator,
		PnlNumerator:           p.Fees.PnlNumerator,
		PnlDenominator:         p.Fees.PnlDenominator,
		SwapFeeNumerator:       p.Fees.SwapFeeNumerator,
		SwapFeeDenominator:     p.Fees.SwapFeeDenominator,
	}
}

type presetsFile struct {
	Presets []PoolPreset `yaml:"presets"`
}

// LoadPoolPresets reads and validates the pool parameter presets file.
// Every preset's fee schedule must pass the same fraction checks the
// engine applies to on-chain parameter updates.
func LoadPoolPresets(path string) (map[string]PoolPreset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pool presets: %w", err)
	}
	return ParsePoolPresets(data)
}

// ParsePoolPresets decodes preset YAML and validates each entry.
func ParsePoolPresets(data []byte) (map[string]PoolPreset, error) {
	var file presetsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse pool presets: %w", err)
	}

	presets := make(map[string]PoolPreset, len(file.Presets))
	for _, p := range file.Presets {
		if p.Name == "" {
			return nil, fmt.Errorf("pool preset without a name")
		}
		if _, ok := presets[p.Name]; ok {
			return nil, fmt.Errorf("duplicate pool preset %q", p.Name)
		}
		fees := p.ToFees()
		if err := fees.Validate(); err != nil {
			return nil, fmt.Errorf("pool preset %q: %w", p.Name, err)
		}
		presets[p.Name] = p
	}
	return presets, nil
}
