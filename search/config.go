package search

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config locates the data files and sizes the worker pool.
type Config struct {
	Hanzi   string `yaml:"hanzi"`
	Poetry  string `yaml:"poetry"`
	Workers int    `yaml:"workers"`
}

// DefaultConfig returns the conventional file names next to the working
// directory. Workers 0 means one per CPU.
func DefaultConfig() Config {
	return Config{
		Hanzi:  "hanzi_data.json",
		Poetry: "poetry.csv",
	}
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		return config, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&config); err != nil {
		return config, fmt.Errorf("parse config %s: %w", path, err)
	}
	return config, nil
}

// WriteDefaultConfig creates path with the default configuration.
func WriteDefaultConfig(path string) error {
	d, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(d); err != nil {
		return err
	}
	return nil
}
