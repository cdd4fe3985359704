package valuation

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTables []byte

type ModelStats struct {
	AvgPrice   float64 `yaml:"avg_price"`
	MinPrice   float64 `yaml:"min_price"`
	MaxPrice   float64 `yaml:"max_price"`
	AvgYear    float64 `yaml:"avg_year"`
	AvgMileage float64 `yaml:"avg_mileage"`
	Samples    int     `yaml:"samples"`
}

// Tables holds every constant the heuristic multiplies by. Keys are lower case.
type Tables struct {
	ReferenceYear int                   `yaml:"reference_year"`
	DefaultBase   float64               `yaml:"default_base"`
	MinPrice      float64               `yaml:"min_price"`
	Brands        map[string]float64    `yaml:"brands"`
	Models        map[string]ModelStats `yaml:"models"`
	Condition     map[string]float64    `yaml:"condition"`
	Fuel          map[string]float64    `yaml:"fuel"`
	Transmission  map[string]float64    `yaml:"transmission"`
}

// LoadTables reads tables from path, or the built-in defaults when path is empty.
func LoadTables(path string) (*Tables, error) {
	if path == "" {
		return ParseTables(defaultTables)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read valuation tables: %w", err)
	}
	return ParseTables(data)
}

func ParseTables(data []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse valuation tables: %w", err)
	}
	if t.DefaultBase <= 0 {
		return nil, fmt.Errorf("valuation tables: default_base must be positive")
	}
	t.Brands = lowerKeys(t.Brands)
	t.Condition = lowerKeys(t.Condition)
	t.Fuel = lowerKeys(t.Fuel)
	t.Transmission = lowerKeys(t.Transmission)
	m := make(map[string]ModelStats, len(t.Models))
	for k, v := range t.Models {
		m[normalizeKey(k)] = v
	}
	t.Models = m
	return &t, nil
}

func lowerKeys(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[normalizeKey(k)] = v
	}
	return out
}

func normalizeKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// factor returns the multiplier for key, 1 when the table has no entry.
func factor(table map[string]float64, key string) float64 {
	if f, ok := table[normalizeKey(key)]; ok && f > 0 {
		return f
	}
	return 1
}
