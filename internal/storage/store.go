package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/dpisim/internal/dynamo"
	"github.com/san-kum/dpisim/internal/experiment"
	"github.com/san-kum/dpisim/internal/reference"
)

var seriesHeader = []string{"time", "ref", "y", "u", "error"}

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
	ID           string                      `json:"id"`
	Name         string                      `json:"name"`
	Timestamp    time.Time                   `json:"timestamp"`
	Ts           float64                     `json:"ts"`
	Duration     float64                     `json:"duration"`
	Steps        int                         `json:"steps"`
	Plant        dynamo.ContinuousPlant      `json:"plant"`
	Gains        dynamo.Gains                `json:"gains"`
	Limits       dynamo.Limits               `json:"limits"`
	Reference    reference.Spec              `json:"reference"`
	Coefficients dynamo.DiscreteCoefficients `json:"coefficients"`
	Controller   map[string]float64          `json:"controller"`
	Saturated    int                         `json:"saturated_steps"`
	Metrics      map[string]float64          `json:"metrics"`
}

// NewMetadata describes a finished run.
func NewMetadata(run *experiment.Run) RunMetadata {
	cfg := run.Config
	meta := RunMetadata{
		Name:         cfg.Name,
		Timestamp:    time.Now(),
		Ts:           cfg.Ts,
		Duration:     cfg.Duration,
		Plant:        cfg.Plant,
		Gains:        cfg.Controller,
		Limits:       cfg.Limits,
		Reference:    cfg.Reference,
		Coefficients: run.Coefficients,
		Controller:   run.Controller.Params(),
	}
	if run.Result != nil {
		meta.Steps = run.Result.StepsTaken
		meta.Saturated = run.Result.Saturated
		meta.Metrics = run.Result.Metrics
	}
	if meta.Name == "" {
		meta.Name = "run"
	}
	return meta
}

// Save writes metadata.json and series.csv under a new run directory.
func (s *Store) Save(run *experiment.Run) (string, error) {
	if run.Result == nil || run.Result.Series == nil {
		return "", fmt.Errorf("storage: run has no result")
	}

	meta := NewMetadata(run)
	meta.ID = fmt.Sprintf("%s_%d", meta.Name, meta.Timestamp.UnixNano())
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "series.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, run.Result.Series); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// WriteCSV writes one row per step with lossless float formatting.
func WriteCSV(out io.Writer, series *dynamo.Series) error {
	w := csv.NewWriter(out)
	if err := w.Write(seriesHeader); err != nil {
		return err
	}

	for k := 0; k < series.Len(); k++ {
		row := []string{
			formatFloat(series.Times[k]),
			formatFloat(series.Ref[k]),
			formatFloat(series.Y[k]),
			formatFloat(series.U[k]),
			formatFloat(series.Err[k]),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns every readable run, oldest first.
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
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadSeries(runID string) (*dynamo.Series, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "series.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadCSV(file)
}

// ReadCSV parses the format written by WriteCSV.
func ReadCSV(in io.Reader) (*dynamo.Series, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = len(seriesHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("storage: empty series")
	}

	n := len(records) - 1
	series := &dynamo.Series{
		Times: make([]float64, n),
		Ref:   make([]float64, n),
		Y:     make([]float64, n),
		U:     make([]float64, n),
		Err:   make([]float64, n),
	}
	cols := []*[]float64{&series.Times, &series.Ref, &series.Y, &series.U, &series.Err}

	for i, record := range records[1:] {
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("storage: row %d column %s: %w", i+1, seriesHeader[j], err)
			}
			(*cols[j])[i] = v
		}
	}

	return series, nil
}

type ExportData struct {
	RunMetadata
	Series *dynamo.Series `json:"series"`
}

// ExportJSON writes metadata and series as one indented document.
func ExportJSON(w io.Writer, meta RunMetadata, series *dynamo.Series) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{RunMetadata: meta, Series: series})
}
