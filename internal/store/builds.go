package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/midiscript/midiscript/internal/config"
)

// ErrBuildNotFound is returned when no build matches a lookup.
var ErrBuildNotFound = errors.New("build not found")

// Build is one recorded compilation.
type Build struct {
	Seq        int64         `json:"seq"`
	ID         string        `json:"id"` // UUIDv7
	SourcePath string        `json:"source_path"`
	SourceHash string        `json:"source_hash"`
	OutputPath string        `json:"output_path,omitempty"`
	OutputHash string        `json:"output_hash"`
	OutputSize int           `json:"output_size"`
	Config     config.Config `json:"config"`
	NoteCount  int           `json:"note_count"`
	CreatedAt  time.Time     `json:"created_at"`
}

// NewBuild describes a compilation of source into output. ID and CreatedAt
// are filled in by RecordBuild.
func NewBuild(sourcePath, source, outputPath string, output []byte, cfg config.Config, noteCount int) Build {
	return Build{
		SourcePath: sourcePath,
		SourceHash: SourceHash(source),
		OutputPath: outputPath,
		OutputHash: OutputHash(output),
		OutputSize: len(output),
		Config:     cfg,
		NoteCount:  noteCount,
	}
}

// RecordBuild inserts b and returns it with Seq, ID and CreatedAt set.
// A caller-supplied ID is kept; an empty one gets a new UUIDv7 so IDs sort
// by creation time.
func (s *Store) RecordBuild(ctx context.Context, b Build) (Build, error) {
	if b.ID == "" {
		b.ID = uuid.Must(uuid.NewV7()).String()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO builds
		(id, source_path, source_hash, output_path, output_hash, output_size,
		 ticks_per_quarter, default_velocity, channel, note_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		b.ID,
		b.SourcePath,
		b.SourceHash,
		b.OutputPath,
		b.OutputHash,
		b.OutputSize,
		b.Config.TicksPerQuarterNote,
		b.Config.DefaultVelocity,
		b.Config.Channel,
		b.NoteCount,
		b.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Build{}, fmt.Errorf("record build: %w", err)
	}

	b.Seq, err = res.LastInsertId()
	if err != nil {
		return Build{}, fmt.Errorf("record build: %w", err)
	}
	return b, nil
}

const selectBuild = `
	SELECT seq, id, source_path, source_hash, output_path, output_hash, output_size,
	       ticks_per_quarter, default_velocity, channel, note_count, created_at
	FROM builds
`

// GetBuild returns the build with the given ID.
func (s *Store) GetBuild(ctx context.Context, id string) (Build, error) {
	row := s.db.QueryRowContext(ctx, selectBuild+` WHERE id = ?`, id)
	b, err := scanBuild(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Build{}, fmt.Errorf("get build %s: %w", id, ErrBuildNotFound)
	}
	if err != nil {
		return Build{}, fmt.Errorf("get build %s: %w", id, err)
	}
	return b, nil
}

// LatestBySource returns the most recent build of the source with the
// given hash.
func (s *Store) LatestBySource(ctx context.Context, sourceHash string) (Build, error) {
	row := s.db.QueryRowContext(ctx, selectBuild+` WHERE source_hash = ? ORDER BY seq DESC LIMIT 1`, sourceHash)
	b, err := scanBuild(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Build{}, fmt.Errorf("latest build for source %s: %w", sourceHash, ErrBuildNotFound)
	}
	if err != nil {
		return Build{}, fmt.Errorf("latest build for source %s: %w", sourceHash, err)
	}
	return b, nil
}

// ListBuilds returns up to limit builds, newest first. A limit of zero or
// less returns every build.
//
// Returns an empty slice (not nil) when there are no builds.
func (s *Store) ListBuilds(ctx context.Context, limit int) ([]Build, error) {
	query := selectBuild + ` ORDER BY seq DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	builds := []Build{}
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, err
		}
		builds = append(builds, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate builds: %w", err)
	}
	return builds, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanBuild(row scanner) (Build, error) {
	var (
		b       Build
		created string
	)
	err := row.Scan(
		&b.Seq,
		&b.ID,
		&b.SourcePath,
		&b.SourceHash,
		&b.OutputPath,
		&b.OutputHash,
		&b.OutputSize,
		&b.Config.TicksPerQuarterNote,
		&b.Config.DefaultVelocity,
		&b.Config.Channel,
		&b.NoteCount,
		&created,
	)
	if err != nil {
		return Build{}, err
	}

	b.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Build{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	return b, nil
}
