package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gcrsim/worldsim/internal/sim"
)

// RunRecord describes one stored run.
type RunRecord struct {
	ID           string             `json:"id"`
	ScenarioKey  string             `json:"scenario_key"`
	ModelVersion string             `json:"model_version"`
	Parameters   map[string]float64 `json:"parameters"`
	T0           float64            `json:"t0"`
	TEnd         float64            `json:"t_end"`
	DT           float64            `json:"dt"`
	CreatedAt    time.Time          `json:"created_at"`
}

// SaveRun persists a completed run and all of its samples in a single
// transaction, returning the stored record with its assigned UUID.
//
// Saving a second run for the same scenario key replaces the first:
// results are deterministic per (model version, scenario), so the stored
// series can only be identical anyway.
func (s *Store) SaveRun(ctx context.Context, scenarioKey, modelVersion string, params map[string]float64, result *sim.RunResult) (*RunRecord, error) {
	if result == nil || result.Len() == 0 {
		return nil, fmt.Errorf("refusing to save empty run")
	}

	times := result.Times()
	rec := &RunRecord{
		ID:           uuid.NewString(),
		ScenarioKey:  scenarioKey,
		ModelVersion: modelVersion,
		Parameters:   params,
		T0:           times[0],
		TEnd:         times[len(times)-1],
		CreatedAt:    s.now().UTC(),
	}
	if len(times) > 1 {
		rec.DT = times[1] - times[0]
	}

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal parameters: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Replace any prior run for this scenario key; cascading delete
	// removes its samples.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM runs WHERE scenario_key = ?`, scenarioKey); err != nil {
		return nil, fmt.Errorf("delete prior run: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, scenario_key, model_version, parameters, t0, t_end, dt, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ScenarioKey, rec.ModelVersion, string(paramsJSON),
		rec.T0, rec.TEnd, rec.DT, rec.CreatedAt.Format(time.RFC3339Nano),
	); err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	insert, err := tx.PrepareContext(ctx,
		`INSERT INTO samples (run_id, series, idx, t, value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare sample insert: %w", err)
	}
	defer insert.Close()

	for _, name := range result.Names() {
		vals, err := result.Series(name)
		if err != nil {
			return nil, fmt.Errorf("read series %q: %w", name, err)
		}
		for i, v := range vals {
			if _, err := insert.ExecContext(ctx, rec.ID, name, i, times[i], v); err != nil {
				return nil, fmt.Errorf("insert sample %s[%d]: %w", name, i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit run: %w", err)
	}
	return rec, nil
}
