package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/baldhumanity/neat-creatures/neat"
)

// Output writes run artifacts into one directory: the effective
// configuration as config.yaml and one generations.csv row per generation.
type Output struct {
	dir             string
	generationsFile *os.File

	headerWritten bool
}

// NewOutput creates the output directory and opens generations.csv.
// Returns nil if dir is empty (output disabled); a nil Output accepts and
// discards every write.
func NewOutput(dir string) (*Output, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "generations.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating generations.csv: %w", err)
	}
	return &Output{dir: dir, generationsFile: f}, nil
}

// Dir returns the output directory.
func (o *Output) Dir() string {
	if o == nil {
		return ""
	}
	return o.dir
}

// WriteConfig saves the configuration as YAML.
func (o *Output) WriteConfig(cfg *neat.Config) error {
	if o == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(o.dir, "config.yaml"))
}

// ObserveGeneration appends stats to generations.csv.
func (o *Output) ObserveGeneration(stats GenerationStats) error {
	if o == nil {
		return nil
	}

	records := []GenerationStats{stats}
	if !o.headerWritten {
		if err := gocsv.Marshal(records, o.generationsFile); err != nil {
			return fmt.Errorf("writing generations: %w", err)
		}
		o.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, o.generationsFile); err != nil {
		return fmt.Errorf("writing generations: %w", err)
	}
	return nil
}

// Close flushes and closes the output files.
func (o *Output) Close() error {
	if o == nil {
		return nil
	}
	if err := o.generationsFile.Sync(); err != nil {
		o.generationsFile.Close()
		return fmt.Errorf("syncing generations.csv: %w", err)
	}
	return o.generationsFile.Close()
}
