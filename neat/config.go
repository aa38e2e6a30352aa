package neat

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.ini
var defaultsINI []byte

// Base genome layouts.
const (
	BaseDnaConnected   = "connected"
	BaseDnaUnconnected = "unconnected"
)

// Config stores every parameter of a run.
type Config struct {
	Simulation   SimulationConfig   `yaml:"simulation"`
	Genome       GenomeConfig       `yaml:"genome"`
	Speciation   SpeciationConfig   `yaml:"speciation"`
	Reproduction ReproductionConfig `yaml:"reproduction"`
}

// SimulationConfig holds population and world parameters.
type SimulationConfig struct {
	PopulationSize  int     `ini:"population_size" yaml:"population_size"`
	GenerationTime  int     `ini:"generation_time" yaml:"generation_time"` // Ticks per generation.
	CullRate        float64 `ini:"cull_rate" yaml:"cull_rate"`             // Fraction replaced at each generation boundary.
	CreatureInputs  int     `ini:"creature_inputs" yaml:"creature_inputs"`
	CreatureOutputs int     `ini:"creature_outputs" yaml:"creature_outputs"`
	CreatureHealth  int     `ini:"creature_health" yaml:"creature_health"` // Ticks a creature lives.
	WorldWidth      float64 `ini:"world_width" yaml:"world_width"`
	WorldHeight     float64 `ini:"world_height" yaml:"world_height"`
	CreatureScale   float64 `ini:"creature_scale" yaml:"creature_scale"`
	SpeedScaling    float64 `ini:"speed_scaling" yaml:"speed_scaling"`
	Workers         int     `ini:"workers" yaml:"workers"`
	Seed            uint64  `ini:"seed" yaml:"seed"`
}

// GenomeConfig holds the genome ranges and mutation rates.
type GenomeConfig struct {
	WeightRange            float64 `ini:"weight_range" yaml:"weight_range"`
	WeightMutationRate     float64 `ini:"weight_mutation_rate" yaml:"weight_mutation_rate"`
	WeightPerturbRate      float64 `ini:"weight_perturb_rate" yaml:"weight_perturb_rate"`
	WeightPerturbAmount    float64 `ini:"weight_perturb_amount" yaml:"weight_perturb_amount"`
	BiasRange              float64 `ini:"bias_range" yaml:"bias_range"`
	BiasMutationRate       float64 `ini:"bias_mutation_rate" yaml:"bias_mutation_rate"`
	BiasPerturbRate        float64 `ini:"bias_perturb_rate" yaml:"bias_perturb_rate"`
	BiasPerturbAmount      float64 `ini:"bias_perturb_amount" yaml:"bias_perturb_amount"`
	ConnectionMutationRate float64 `ini:"connection_mutation_rate" yaml:"connection_mutation_rate"`
	NodeMutationRate       float64 `ini:"node_mutation_rate" yaml:"node_mutation_rate"`
	Activation             string  `ini:"activation" yaml:"activation"`
	BaseDna                string  `ini:"base_dna" yaml:"base_dna"`
}

// SpeciationConfig holds the compatibility distance parameters.
type SpeciationConfig struct {
	ExcessConstant      float64 `ini:"excess_constant" yaml:"excess_constant"`
	DisjointConstant    float64 `ini:"disjoint_constant" yaml:"disjoint_constant"`
	DeltaWeightConstant float64 `ini:"delta_weight_constant" yaml:"delta_weight_constant"`
	DistanceThreshold   float64 `ini:"distance_threshold" yaml:"distance_threshold"`
}

// ReproductionConfig holds the parent selection parameters.
type ReproductionConfig struct {
	CrossoverRate    float64 `ini:"crossover_rate" yaml:"crossover_rate"`
	InterSpeciesMate float64 `ini:"inter_species_mate" yaml:"inter_species_mate"`
}

// DistanceConstants returns the compatibility distance coefficients.
func (sc SpeciationConfig) DistanceConstants() DistanceConstants {
	return DistanceConstants{
		Excess:      sc.ExcessConstant,
		Disjoint:    sc.DisjointConstant,
		DeltaWeight: sc.DeltaWeightConstant,
	}
}

// DefaultConfig returns the embedded default configuration.
func DefaultConfig() *Config {
	config, err := loadSources()
	if err != nil {
		// The defaults are compiled in; failing to parse them is a build defect.
		panic(fmt.Sprintf("invalid embedded defaults: %v", err))
	}
	return config
}

// LoadConfig loads configuration parameters from an INI file. Keys missing
// from the file keep their default values.
func LoadConfig(filePath string) (*Config, error) {
	config, err := loadSources(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func loadSources(others ...interface{}) (*Config, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, defaultsINI, others...)
	if err != nil {
		return nil, err
	}

	config := &Config{}
	if err := cfg.Section("Simulation").MapTo(&config.Simulation); err != nil {
		return nil, fmt.Errorf("failed to map [Simulation] section: %w", err)
	}
	if err := cfg.Section("Genome").MapTo(&config.Genome); err != nil {
		return nil, fmt.Errorf("failed to map [Genome] section: %w", err)
	}
	if err := cfg.Section("Speciation").MapTo(&config.Speciation); err != nil {
		return nil, fmt.Errorf("failed to map [Speciation] section: %w", err)
	}
	if err := cfg.Section("Reproduction").MapTo(&config.Reproduction); err != nil {
		return nil, fmt.Errorf("failed to map [Reproduction] section: %w", err)
	}

	config.Genome.Activation = cleanIniString(config.Genome.Activation)
	config.Genome.BaseDna = strings.ToLower(cleanIniString(config.Genome.BaseDna))
	return config, nil
}

// Validate checks every parameter and reports the first invalid one.
func (c *Config) Validate() error {
	s, g, sp, r := c.Simulation, c.Genome, c.Speciation, c.Reproduction

	if s.PopulationSize < 1 {
		return fmt.Errorf("config error: population_size must be at least 1")
	}
	if s.GenerationTime < 1 {
		return fmt.Errorf("config error: generation_time must be positive")
	}
	if s.CullRate < 0 || s.CullRate >= 1 {
		return fmt.Errorf("config error: cull_rate must be in [0, 1)")
	}
	if s.CreatureInputs < 1 {
		return fmt.Errorf("config error: creature_inputs must be positive")
	}
	if s.CreatureOutputs < 1 {
		return fmt.Errorf("config error: creature_outputs must be positive")
	}
	if s.CreatureHealth < 1 {
		return fmt.Errorf("config error: creature_health must be positive")
	}
	if s.WorldWidth <= 0 || s.WorldHeight <= 0 {
		return fmt.Errorf("config error: world_width and world_height must be positive")
	}
	if s.Workers < 0 {
		return fmt.Errorf("config error: workers cannot be negative")
	}

	if g.WeightRange < 0 {
		return fmt.Errorf("config error: weight_range cannot be negative")
	}
	if g.BiasRange < 0 {
		return fmt.Errorf("config error: bias_range cannot be negative")
	}
	if g.WeightPerturbAmount < 0 || g.BiasPerturbAmount < 0 {
		return fmt.Errorf("config error: perturb amounts cannot be negative")
	}
	rates := []struct {
		name string
		rate float64
	}{
		{"weight_mutation_rate", g.WeightMutationRate},
		{"weight_perturb_rate", g.WeightPerturbRate},
		{"bias_mutation_rate", g.BiasMutationRate},
		{"bias_perturb_rate", g.BiasPerturbRate},
		{"connection_mutation_rate", g.ConnectionMutationRate},
		{"node_mutation_rate", g.NodeMutationRate},
		{"crossover_rate", r.CrossoverRate},
		{"inter_species_mate", r.InterSpeciesMate},
	}
	for _, rc := range rates {
		if rc.rate < 0 || rc.rate > 1 {
			return fmt.Errorf("config error: %s must be between 0 and 1", rc.name)
		}
	}
	if _, err := GetActivation(g.Activation); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if g.BaseDna != BaseDnaConnected && g.BaseDna != BaseDnaUnconnected {
		return fmt.Errorf("config error: invalid base_dna '%s', must be '%s' or '%s'", g.BaseDna, BaseDnaConnected, BaseDnaUnconnected)
	}

	if sp.ExcessConstant < 0 || sp.DisjointConstant < 0 || sp.DeltaWeightConstant < 0 {
		return fmt.Errorf("config error: distance constants cannot be negative")
	}
	if sp.DistanceThreshold <= 0 {
		return fmt.Errorf("config error: distance_threshold must be positive")
	}
	return nil
}

// WriteYAML saves the configuration as YAML.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config '%s': %w", path, err)
	}
	return nil
}

// cleanIniString removes inline comments and trims whitespace from a string read from INI.
func cleanIniString(s string) string {
	if idx := strings.IndexAny(s, "#;"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
