package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/pidlab/internal/config"
	"github.com/san-kum/pidlab/internal/loop"
)

const (
	metadataFile = "metadata.json"
	configFile   = "config.yaml"
	samplesFile  = "samples.csv"
)

var samplesHeader = []string{"t", "setpoint", "pv", "output", "p", "i", "d", "saturated"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Plant     string             `json:"plant"`
	Preset    string             `json:"preset,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
	Steps     int                `json:"steps"`
	Config    *config.Config     `json:"-"`
	Metrics   map[string]float64 `json:"metrics"`
	Errors    []string           `json:"errors,omitempty"`
}

func (s *Store) Save(cfg *config.Config, preset string, result *loop.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", cfg.Plant, now.UnixMilli())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.Mkdir(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Plant:     cfg.Plant,
		Preset:    preset,
		Timestamp: now,
		Steps:     result.StepsTaken,
		Config:    cfg,
		Metrics:   make(map[string]float64, len(result.Metrics)),
	}
	// encoding/json rejects NaN and Inf
	for name, v := range result.Metrics {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			meta.Metrics[name] = v
		}
	}
	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	// yaml keeps infinite output limits, which json cannot encode
	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", err
	}
	if err := writeSamples(filepath.Join(runDir, samplesFile), result.Samples); err != nil {
		return "", err
	}

	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}

func writeSamples(path string, samples []loop.Sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteCSV(f, samples); err != nil {
		return err
	}
	return f.Close()
}

// List returns all stored runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("run %s not found", runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	cfg, err := config.Load(filepath.Join(s.baseDir, runID, configFile))
	switch {
	case err == nil:
		meta.Config = cfg
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	return &meta, nil
}

func (s *Store) LoadSamples(runID string) ([]loop.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return []loop.Sample{}, nil
	}

	samples := make([]loop.Sample, 0, len(records)-1)
	for i, record := range records[1:] {
		sample, err := parseSample(record)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", samplesFile, i+2, err)
		}
		samples = append(samples, sample)
	}

	return samples, nil
}

func parseSample(record []string) (loop.Sample, error) {
	if len(record) != len(samplesHeader) {
		return loop.Sample{}, fmt.Errorf("expected %d fields, got %d", len(samplesHeader), len(record))
	}
	vals := make([]float64, 7)
	for j := range vals {
		v, err := strconv.ParseFloat(record[j], 64)
		if err != nil {
			return loop.Sample{}, err
		}
		vals[j] = v
	}
	saturated, err := strconv.ParseBool(record[7])
	if err != nil {
		return loop.Sample{}, err
	}
	return loop.Sample{
		Time:         vals[0],
		Setpoint:     vals[1],
		ProcessValue: vals[2],
		Output:       vals[3],
		P:            vals[4],
		I:            vals[5],
		D:            vals[6],
		Saturated:    saturated,
	}, nil
}
