package config

import (
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/pendsim/internal/dynamo"
	"github.com/san-kum/pendsim/internal/physics"
)

const (
	DefaultTStart  = 0.0
	DefaultTEnd    = 20.0
	DefaultSamples = 1000
)

type Config struct {
	Solver     string           `yaml:"solver"`
	TStart     float64          `yaml:"t_start"`
	TEnd       float64          `yaml:"t_end"`
	Samples    int              `yaml:"samples"`
	Params     ParamsConfig     `yaml:"params"`
	InitState  InitStateConfig  `yaml:"init_state"`
	Tolerances TolerancesConfig `yaml:"tolerances"`
}

type ParamsConfig struct {
	G  float64 `yaml:"g"`
	L1 float64 `yaml:"l1"`
	L2 float64 `yaml:"l2"`
	M1 float64 `yaml:"m1"`
	M2 float64 `yaml:"m2"`
}

type InitStateConfig struct {
	Theta1 float64 `yaml:"theta1"`
	Omega1 float64 `yaml:"omega1"`
	Theta2 float64 `yaml:"theta2"`
	Omega2 float64 `yaml:"omega2"`
}

type TolerancesConfig struct {
	Rel      float64 `yaml:"rel"`
	Abs      float64 `yaml:"abs"`
	MaxSteps int     `yaml:"max_steps"`
}

// DefaultConfig is the reference scenario: unit rods and masses, first
// arm horizontal, second arm inverted, 1000 samples over 20 seconds.
func DefaultConfig() *Config {
	return &Config{
		Solver:  "rk45",
		TStart:  DefaultTStart,
		TEnd:    DefaultTEnd,
		Samples: DefaultSamples,
		Params: ParamsConfig{
			G:  physics.DefaultGravity,
			L1: physics.DefaultLength,
			L2: physics.DefaultLength,
			M1: physics.DefaultMass,
			M2: physics.DefaultMass,
		},
		InitState: InitStateConfig{
			Theta1: math.Pi / 2,
			Theta2: math.Pi,
		},
		Tolerances: TolerancesConfig{
			Rel:      1e-6,
			Abs:      1e-9,
			MaxSteps: 100000,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) PhysicalParams() physics.Params {
	return physics.Params{
		G:  c.Params.G,
		L1: c.Params.L1,
		L2: c.Params.L2,
		M1: c.Params.M1,
		M2: c.Params.M2,
	}
}

func (c *Config) GetInitState() dynamo.State {
	return dynamo.State{
		c.InitState.Theta1,
		c.InitState.Omega1,
		c.InitState.Theta2,
		c.InitState.Omega2,
	}
}

func (c *Config) GetSpan() dynamo.Span {
	return dynamo.Span{Start: c.TStart, End: c.TEnd}
}

func (c *Config) GetSampleTimes() []float64 {
	return dynamo.SampleTimes(c.GetSpan(), c.Samples)
}

func (c *Config) GetTolerances() dynamo.Tolerances {
	tol := dynamo.DefaultTolerances()
	if c.Tolerances.Rel > 0 {
		tol.Rel = c.Tolerances.Rel
	}
	if c.Tolerances.Abs > 0 {
		tol.Abs = c.Tolerances.Abs
	}
	if c.Tolerances.MaxSteps > 0 {
		tol.MaxSteps = c.Tolerances.MaxSteps
	}
	return tol
}
