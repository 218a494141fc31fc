package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Run is one recorded service generation.
type Run struct {
	ID               string   `json:"id"`
	Service          string   `json:"service"`
	InputHash        string   `json:"input_hash"`
	OutputHash       string   `json:"output_hash"`
	OptionsHash      string   `json:"options_hash"`
	Outputs          []string `json:"outputs"`
	Seq              int64    `json:"seq"`
	GeneratorVersion string   `json:"generator_version"`
}

// RecordRun appends a run. ID and Seq are assigned here; any values in run
// are ignored. The returned Run carries them.
func (s *Store) RecordRun(ctx context.Context, run Run) (Run, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}
	run.ID = id.String()

	if run.Outputs == nil {
		run.Outputs = []string{}
	}
	outputs, err := json.Marshal(run.Outputs)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}
	defer tx.Rollback()

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&run.Seq); err != nil {
		return Run{}, fmt.Errorf("record run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, service, input_hash, output_hash, options_hash, outputs, seq, generator_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Service,
		run.InputHash,
		run.OutputHash,
		run.OptionsHash,
		string(outputs),
		run.Seq,
		run.GeneratorVersion,
	)
	if err != nil {
		return Run{}, fmt.Errorf("record run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("record run: commit: %w", err)
	}
	return run, nil
}

// LastRun returns the most recent run for service.
// Returns sql.ErrNoRows if the service has never been generated.
func (s *Store) LastRun(ctx context.Context, service string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, service, input_hash, output_hash, options_hash, outputs, seq, generator_version
		FROM runs
		WHERE service = ?
		ORDER BY seq DESC
		LIMIT 1
	`, service)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, sql.ErrNoRows
	}
	if err != nil {
		return Run{}, fmt.Errorf("last run for %s: %w", service, err)
	}
	return run, nil
}

// Runs returns every run in seq order, optionally filtered by service.
// Returns an empty slice (not nil) when there are none.
func (s *Store) Runs(ctx context.Context, service string) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, service, input_hash, output_hash, options_hash, outputs, seq, generator_version
		FROM runs
		WHERE ? = '' OR service = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, service, service)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var outputs string
	err := row.Scan(
		&run.ID,
		&run.Service,
		&run.InputHash,
		&run.OutputHash,
		&run.OptionsHash,
		&outputs,
		&run.Seq,
		&run.GeneratorVersion,
	)
	if err != nil {
		return Run{}, err
	}
	if err := json.Unmarshal([]byte(outputs), &run.Outputs); err != nil {
		return Run{}, fmt.Errorf("decode outputs of run %s: %w", run.ID, err)
	}
	return run, nil
}
