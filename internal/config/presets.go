package config

import (
	"math"
	"sort"
)

// Presets are named starting scenarios. Each is a complete Config.
var Presets = map[string]func() *Config{
	// The reference run: first arm horizontal, second inverted.
	"classic": DefaultConfig,

	// Both arms nearly inverted; strong chaos, long horizon.
	"chaos": func() *Config {
		cfg := DefaultConfig()
		cfg.InitState = InitStateConfig{Theta1: 3.0, Theta2: 3.0}
		cfg.TEnd = 30.0
		cfg.Samples = 1500
		return cfg
	},

	// Small-angle start; near-linear regime, useful for energy checks.
	"gentle": func() *Config {
		cfg := DefaultConfig()
		cfg.InitState = InitStateConfig{Theta1: 0.1, Theta2: 0.1}
		cfg.TEnd = 10.0
		cfg.Samples = 500
		return cfg
	},

	// Slow start with a spinning second arm.
	"spinner": func() *Config {
		cfg := DefaultConfig()
		cfg.InitState = InitStateConfig{Theta1: math.Pi / 4, Omega2: 6.0}
		return cfg
	},
}

func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
