package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gcrsim/worldsim/internal/sim"
)

// GetRun loads a stored run and its series by UUID.
// Returns ErrNotFound if no run has that id.
func (s *Store) GetRun(ctx context.Context, id string) (*RunRecord, *sim.RunResult, error) {
	rec, err := s.getRecord(ctx, `SELECT id, scenario_key, model_version, parameters, t0, t_end, dt, created_at
		FROM runs WHERE id = ?`, id)
	if err != nil {
		return nil, nil, err
	}
	result, err := s.loadSeries(ctx, rec.ID)
	if err != nil {
		return nil, nil, err
	}
	return rec, result, nil
}

// GetRunByScenario loads the stored run for a canonical scenario key.
// Returns ErrNotFound if the scenario has never been persisted.
func (s *Store) GetRunByScenario(ctx context.Context, scenarioKey string) (*RunRecord, *sim.RunResult, error) {
	rec, err := s.getRecord(ctx, `SELECT id, scenario_key, model_version, parameters, t0, t_end, dt, created_at
		FROM runs WHERE scenario_key = ?`, scenarioKey)
	if err != nil {
		return nil, nil, err
	}
	result, err := s.loadSeries(ctx, rec.ID)
	if err != nil {
		return nil, nil, err
	}
	return rec, result, nil
}

// ListRuns returns stored run records, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, scenario_key, model_version, parameters, t0, t_end, dt, created_at
		 FROM runs ORDER BY created_at DESC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var recs []RunRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *Store) getRecord(ctx context.Context, query string, arg any) (*RunRecord, error) {
	row := s.db.QueryRowContext(ctx, query, arg)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func scanRecord(row rowScanner) (*RunRecord, error) {
	var rec RunRecord
	var paramsJSON, createdAt string
	if err := row.Scan(&rec.ID, &rec.ScenarioKey, &rec.ModelVersion, &paramsJSON,
		&rec.T0, &rec.TEnd, &rec.DT, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(paramsJSON), &rec.Parameters); err != nil {
		return nil, fmt.Errorf("unmarshal parameters for run %s: %w", rec.ID, err)
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at for run %s: %w", rec.ID, err)
	}
	rec.CreatedAt = ts
	return &rec, nil
}

// loadSeries rebuilds the run's immutable result from its samples.
// Deterministic ordering: series name, then sample index.
func (s *Store) loadSeries(ctx context.Context, runID string) (*sim.RunResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT series, idx, t, value FROM samples
		 WHERE run_id = ? ORDER BY series ASC, idx ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	var times []float64
	series := make(map[string][]float64)
	for rows.Next() {
		var name string
		var idx int
		var t, v float64
		if err := rows.Scan(&name, &idx, &t, &v); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		if idx == len(times) {
			times = append(times, t)
		}
		series[name] = append(series[name], v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("run %s has no samples", runID)
	}
	return sim.NewRunResult(times, series)
}
