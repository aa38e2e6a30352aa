package telemetry

import (
	"log/slog"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Sample is the per-creature snapshot taken at a generation boundary.
type Sample struct {
	Fitness     float64
	Hidden      int
	Connections int // Enabled connections only.
	Recurrent   bool
	Age         int
}

// GenerationStats summarizes one generation of a run.
type GenerationStats struct {
	Generation int `csv:"generation"`
	Tick       int `csv:"tick"`

	Population int `csv:"population"`
	Species    int `csv:"species"`
	Births     int `csv:"births"` // Since the previous generation boundary.
	Deaths     int `csv:"deaths"`

	MeanFitness float64 `csv:"fitness_mean"`
	StdFitness  float64 `csv:"fitness_std"`
	MaxFitness  float64 `csv:"fitness_max"`

	MeanHidden      float64 `csv:"hidden_mean"`
	MeanConnections float64 `csv:"connections_mean"`
	Recurrent       int     `csv:"recurrent"`
	MeanAge         float64 `csv:"age_mean"`

	Innovations int `csv:"innovations"`
}

// Collect builds GenerationStats from the population samples. The counters
// that are not derived from samples are left for the caller to fill in.
func Collect(generation, tick int, samples []Sample) GenerationStats {
	stats := GenerationStats{
		Generation: generation,
		Tick:       tick,
		Population: len(samples),
	}
	if len(samples) == 0 {
		return stats
	}

	fitness := make([]float64, len(samples))
	hidden := make([]float64, len(samples))
	connections := make([]float64, len(samples))
	age := make([]float64, len(samples))
	for i, s := range samples {
		fitness[i] = s.Fitness
		hidden[i] = float64(s.Hidden)
		connections[i] = float64(s.Connections)
		age[i] = float64(s.Age)
		if s.Recurrent {
			stats.Recurrent++
		}
	}

	stats.MeanFitness, stats.StdFitness = stat.MeanStdDev(fitness, nil)
	if len(samples) == 1 {
		stats.StdFitness = 0
	}
	stats.MaxFitness = floats.Max(fitness)
	stats.MeanHidden = stat.Mean(hidden, nil)
	stats.MeanConnections = stat.Mean(connections, nil)
	stats.MeanAge = stat.Mean(age, nil)
	return stats
}

// LogValue implements slog.LogValuer for structured logging.
func (s GenerationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", s.Generation),
		slog.Int("tick", s.Tick),
		slog.Int("population", s.Population),
		slog.Int("species", s.Species),
		slog.Int("births", s.Births),
		slog.Int("deaths", s.Deaths),
		slog.Float64("fitness_mean", s.MeanFitness),
		slog.Float64("fitness_std", s.StdFitness),
		slog.Float64("fitness_max", s.MaxFitness),
		slog.Float64("hidden_mean", s.MeanHidden),
		slog.Float64("connections_mean", s.MeanConnections),
		slog.Int("recurrent", s.Recurrent),
		slog.Float64("age_mean", s.MeanAge),
		slog.Int("innovations", s.Innovations),
	)
}
