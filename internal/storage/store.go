package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/pendsim/internal/dynamo"
	"github.com/san-kum/pendsim/internal/physics"
)

// Store persists runs under a base directory, one subdirectory per run:
// metadata.json, trajectory.csv (angular states) and positions.csv (the
// projected Cartesian series a renderer consumes).
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
	ID          string         `json:"id"`
	Timestamp   time.Time      `json:"timestamp"`
	Solver      string         `json:"solver"`
	TStart      float64        `json:"t_start"`
	TEnd        float64        `json:"t_end"`
	Samples     int            `json:"samples"`
	Params      physics.Params `json:"params"`
	EnergyDrift float64        `json:"energy_drift"`
}

func (s *Store) Save(solver string, p physics.Params, traj *dynamo.Trajectory, positions []physics.PositionSample, energyDrift float64) (string, error) {
	runID := fmt.Sprintf("run_%d", time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Timestamp:   time.Now(),
		Solver:      solver,
		TStart:      traj.Times[0],
		TEnd:        traj.Times[traj.Len()-1],
		Samples:     traj.Len(),
		Params:      p,
		EnergyDrift: energyDrift,
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

	if err := s.writeTrajectory(filepath.Join(runDir, "trajectory.csv"), traj); err != nil {
		return "", err
	}
	if err := s.writePositions(filepath.Join(runDir, "positions.csv"), positions); err != nil {
		return "", err
	}

	return runID, nil
}

func (s *Store) writeTrajectory(path string, traj *dynamo.Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"t", "theta1", "omega1", "theta2", "omega2"}); err != nil {
		return err
	}
	for i, t := range traj.Times {
		row := make([]string, 0, 5)
		row = append(row, formatFloat(t))
		for _, v := range traj.States[i] {
			row = append(row, formatFloat(v))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) writePositions(path string, positions []physics.PositionSample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"t", "x1", "y1", "x2", "y2"}); err != nil {
		return err
	}
	for _, ps := range positions {
		row := []string{
			formatFloat(ps.Time),
			formatFloat(ps.X1), formatFloat(ps.Y1),
			formatFloat(ps.X2), formatFloat(ps.Y2),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var runs []RunMetadata
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) LoadPositions(runID string) ([]physics.PositionSample, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "positions.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("storage: empty positions file for %s", runID)
	}

	positions := make([]physics.PositionSample, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) != 5 {
			return nil, fmt.Errorf("storage: malformed positions row in %s", runID)
		}
		vals := make([]float64, 5)
		for i, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		positions = append(positions, physics.PositionSample{
			Time: vals[0],
			X1:   vals[1], Y1: vals[2],
			X2: vals[3], Y2: vals[4],
		})
	}
	return positions, nil
}

// formatFloat keeps float64 round trips exact.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
