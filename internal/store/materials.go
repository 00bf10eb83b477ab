package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/verte-zerg/shadow/internal/model"
)

// InsertMaterial stores a material and its timed sentences. IDs are assigned
// when empty. The returned material carries the stored sentences.
func (s *Store) InsertMaterial(ctx context.Context, m model.Material, timestamps []model.SentenceTimestamp) (model.Material, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Material{}, err
	}
	defer rollback(tx)

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO materials (id, title, description, difficulty, audio_path, duration_seconds, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Title, m.Description, string(m.Difficulty), m.AudioPath, m.DurationSeconds, m.CreatedBy, formatTime(m.CreatedAt),
	); err != nil {
		return model.Material{}, fmt.Errorf("failed to insert material: %w", err)
	}

	m.Sentences = make([]model.Sentence, 0, len(timestamps))
	if len(timestamps) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO sentences (id, material_id, text, start_time, end_time, sequence_order)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return model.Material{}, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, ts := range timestamps {
			sentence := model.Sentence{ID: uuid.NewString(), SentenceTimestamp: ts}
			if _, err := stmt.ExecContext(ctx, sentence.ID, m.ID, ts.Text, ts.StartTime, ts.EndTime, ts.SequenceOrder); err != nil {
				return model.Material{}, fmt.Errorf("failed to insert sentence: %w", err)
			}
			m.Sentences = append(m.Sentences, sentence)
		}
	}

	if err := tx.Commit(); err != nil {
		return model.Material{}, err
	}
	return m, nil
}

// GetMaterial returns a material with its sentences in sequence order.
func (s *Store) GetMaterial(ctx context.Context, id string) (model.Material, error) {
	var m model.Material
	var difficulty, createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, difficulty, audio_path, duration_seconds, created_by, created_at
		 FROM materials WHERE id = ?`, id,
	).Scan(&m.ID, &m.Title, &m.Description, &difficulty, &m.AudioPath, &m.DurationSeconds, &m.CreatedBy, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Material{}, fmt.Errorf("material %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Material{}, err
	}
	m.Difficulty = model.Difficulty(difficulty)
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Material{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, start_time, end_time, sequence_order
		 FROM sentences WHERE material_id = ? ORDER BY sequence_order ASC`, id)
	if err != nil {
		return model.Material{}, err
	}
	defer closeRows(rows)
	for rows.Next() {
		var sentence model.Sentence
		if err := rows.Scan(&sentence.ID, &sentence.Text, &sentence.StartTime, &sentence.EndTime, &sentence.SequenceOrder); err != nil {
			return model.Material{}, err
		}
		m.Sentences = append(m.Sentences, sentence)
	}
	if err := rows.Err(); err != nil {
		return model.Material{}, err
	}
	return m, nil
}

// ListMaterials returns materials newest first with practice counts and best
// scores. Practice figures are limited to filter.CreatedBy when it is set.
func (s *Store) ListMaterials(ctx context.Context, filter model.MaterialFilter) ([]model.MaterialSummary, error) {
	clauses := []string{"1=1"}
	args := []any{filter.CreatedBy, filter.CreatedBy}
	if filter.CreatedBy != "" {
		clauses = append(clauses, "m.created_by = ?")
		args = append(args, filter.CreatedBy)
	}
	if filter.Difficulty != "" {
		clauses = append(clauses, "m.difficulty = ?")
		args = append(args, string(filter.Difficulty))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}
	args = append(args, limit, max(filter.Offset, 0))

	query := fmt.Sprintf(`SELECT m.id, m.title, m.description, m.difficulty, m.audio_path, m.duration_seconds, m.created_at,
			COALESCE(p.practice_count, 0), p.best_score
		FROM materials m
		LEFT JOIN (
			SELECT material_id, COUNT(*) AS practice_count, MAX(score) AS best_score
			FROM practice_logs
			WHERE (? = '' OR user_id = ?)
			GROUP BY material_id
		) p ON p.material_id = m.id
		WHERE %s
		ORDER BY m.created_at DESC, m.rowid DESC
		LIMIT ? OFFSET ?`, strings.Join(clauses, " AND "))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer closeRows(rows)

	var result []model.MaterialSummary
	for rows.Next() {
		var sum model.MaterialSummary
		var difficulty, createdAt string
		var best sql.NullFloat64
		if err := rows.Scan(&sum.ID, &sum.Title, &sum.Description, &difficulty, &sum.AudioPath, &sum.DurationSeconds,
			&createdAt, &sum.PracticeCount, &best); err != nil {
			return nil, err
		}
		sum.Difficulty = model.Difficulty(difficulty)
		if sum.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if best.Valid {
			v := best.Float64
			sum.BestScore = &v
		}
		result = append(result, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteMaterial removes a material owned by userID together with its
// sentences and returns its audio path.
func (s *Store) DeleteMaterial(ctx context.Context, id, userID string) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer rollback(tx)

	var audioPath string
	err = tx.QueryRowContext(ctx,
		`SELECT audio_path FROM materials WHERE id = ? AND created_by = ?`, id, userID,
	).Scan(&audioPath)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("material %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return "", err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sentences WHERE material_id = ?`, id); err != nil {
		return "", err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM materials WHERE id = ?`, id); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return audioPath, nil
}
