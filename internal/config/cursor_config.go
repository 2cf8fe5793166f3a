// File: internal/config/cursor_config.go
// This file defines CursorConfig, the tunable knobs of the pointer model that
// are safe to expose. The motion constants themselves (overshoot threshold,
// spread bounds) are fixed in the humanoid package.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/xkilldash9x/ghostcursor/internal/humanoid"
)

// CursorConfig holds per-session cursor behavior.
type CursorConfig struct {
	// PaddingPercentage shrinks target boxes before sampling. Values outside
	// (0, 100) disable padding.
	PaddingPercentage int `mapstructure:"padding_percentage" yaml:"padding_percentage"`
	// PostMoveDelayRangeMs bounds the pause after each operation.
	PostMoveDelayRangeMs *int `mapstructure:"post_move_delay_range_ms" yaml:"post_move_delay_range_ms,omitempty"`
	// HoldDurationMs is how long a click holds the button. Unset releases immediately.
	HoldDurationMs   *int `mapstructure:"hold_duration_ms" yaml:"hold_duration_ms,omitempty"`
	WaitBeforeMoveMs *int `mapstructure:"wait_before_move_ms" yaml:"wait_before_move_ms,omitempty"`

	Wander        bool `mapstructure:"wander" yaml:"wander"`
	WanderDelayMs int  `mapstructure:"wander_delay_ms" yaml:"wander_delay_ms"`
	// MaxEventRate caps pointer events per second. Zero is unlimited.
	MaxEventRate float64 `mapstructure:"max_event_rate" yaml:"max_event_rate"`
	// Seed makes sessions reproducible. Zero seeds from the clock.
	Seed int64 `mapstructure:"seed" yaml:"seed"`
}

func setCursorDefaults(v *viper.Viper) {
	v.SetDefault("cursor.padding_percentage", 0)
	v.SetDefault("cursor.post_move_delay_range_ms", humanoid.DefaultDelayRangeMs)
	v.SetDefault("cursor.wander", false)
	v.SetDefault("cursor.wander_delay_ms", humanoid.DefaultDelayRangeMs)
	v.SetDefault("cursor.max_event_rate", 0)
	v.SetDefault("cursor.seed", 0)
}

// Validate rejects values the cursor cannot honor.
func (c CursorConfig) Validate() error {
	if c.WanderDelayMs < 0 {
		return fmt.Errorf("wander_delay_ms must not be negative")
	}
	if c.MaxEventRate < 0 {
		return fmt.Errorf("max_event_rate must not be negative")
	}
	return nil
}

// MoveOptions converts the configuration into per-call options.
func (c CursorConfig) MoveOptions() *humanoid.MoveOptions {
	return &humanoid.MoveOptions{
		PaddingPercentage:    c.PaddingPercentage,
		WaitBeforeMoveMs:     copyInt(c.WaitBeforeMoveMs),
		PostMoveDelayRangeMs: copyInt(c.PostMoveDelayRangeMs),
		HoldDurationMs:       copyInt(c.HoldDurationMs),
	}
}

// CursorOptions converts the configuration into constructor options.
func (c CursorConfig) CursorOptions() []humanoid.Option {
	opts := []humanoid.Option{
		humanoid.WithWander(c.Wander),
		humanoid.WithWanderDelay(time.Duration(c.WanderDelayMs) * time.Millisecond),
		humanoid.WithMaxEventRate(c.MaxEventRate),
	}
	if c.Seed != 0 {
		opts = append(opts, humanoid.WithSeed(c.Seed))
	}
	return opts
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	return humanoid.Int(*p)
}
