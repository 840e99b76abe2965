package duckdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oscarbenjamin/txt2bb/internal/question"
)

// catalogNamespace roots every deterministic ID in the catalog.
var catalogNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("txt2bb:catalog"))

// SourceInput describes one parsed question bank to store.
type SourceInput struct {
	Set       question.Set
	Blocks    int
	UpdatedAt time.Time
}

// SourceRecord reports what was stored for a source.
type SourceRecord struct {
	SourceID  string
	Path      string
	Questions int
	Inserted  int
	Replaced  int
}

// SourceID returns the stable ID for a question bank path.
func SourceID(path string) uuid.UUID {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return uuid.NewSHA1(catalogNamespace, []byte(filepath.ToSlash(path)))
}

// QuestionID returns the stable ID for one expanded question of a source.
// Re-cataloguing an edited bank keeps IDs for unchanged block positions.
func QuestionID(sourceID uuid.UUID, q question.Question) uuid.UUID {
	return uuid.NewSHA1(sourceID, []byte(strconv.Itoa(q.Block)+"/"+strconv.Itoa(q.Variant)))
}

// Fingerprint hashes the content of a question, ignoring its position.
func Fingerprint(q question.Question) (string, error) {
	q.Block, q.Variant, q.Line = 0, 0, 0
	payload, err := json.Marshal(q)
	if err != nil {
		return "", fmt.Errorf("marshal question: %w", err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// UpsertSource replaces every stored question of a source with the
// questions of input in one transaction.
func UpsertSource(ctx context.Context, db *sql.DB, input SourceInput) (SourceRecord, error) {
	if ctx == nil {
		return SourceRecord{}, errors.New("duckdb: context is nil")
	}
	if db == nil {
		return SourceRecord{}, errors.New("duckdb: db is nil")
	}
	if input.Set.Source == "" {
		return SourceRecord{}, errors.New("duckdb: source path is required")
	}
	updatedAt := input.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	sourceID := SourceID(input.Set.Source)
	record := SourceRecord{
		SourceID:  sourceID.String(),
		Path:      input.Set.Source,
		Questions: input.Set.Len(),
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return SourceRecord{}, fmt.Errorf("begin catalog tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := tx.QueryRowContext(ctx,
		`SELECT count(*) FROM questions WHERE source_id = ?`, record.SourceID,
	).Scan(&record.Replaced); err != nil {
		return SourceRecord{}, fmt.Errorf("count stored questions: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM answers WHERE question_id IN (SELECT question_id FROM questions WHERE source_id = ?)`,
		record.SourceID,
	); err != nil {
		return SourceRecord{}, fmt.Errorf("delete answers: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE source_id = ?`, record.SourceID); err != nil {
		return SourceRecord{}, fmt.Errorf("delete questions: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sources (source_id, path, blocks, questions, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (source_id) DO UPDATE SET
		   path = excluded.path,
		   blocks = excluded.blocks,
		   questions = excluded.questions,
		   updated_at = excluded.updated_at`,
		record.SourceID,
		record.Path,
		input.Blocks,
		record.Questions,
		updatedAt,
	); err != nil {
		return SourceRecord{}, fmt.Errorf("upsert source: %w", err)
	}

	for position, q := range input.Set.Questions {
		if err := insertQuestion(ctx, tx, sourceID, position, q); err != nil {
			return SourceRecord{}, err
		}
		record.Inserted++
	}
	if err := tx.Commit(); err != nil {
		return SourceRecord{}, fmt.Errorf("commit catalog tx: %w", err)
	}
	return record, nil
}

func insertQuestion(ctx context.Context, tx *sql.Tx, sourceID uuid.UUID, position int, q question.Question) error {
	fingerprint, err := Fingerprint(q)
	if err != nil {
		return err
	}
	questionID := QuestionID(sourceID, q).String()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO questions (
		  question_id, source_id, position, block, variant, line, type, prompt, example, tolerance, fingerprint
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		questionID,
		sourceID.String(),
		position,
		q.Block,
		q.Variant,
		q.Line,
		q.Type.Tag(),
		q.Prompt,
		nullableString(q.Example),
		nullableString(q.Tolerance),
		fingerprint,
	); err != nil {
		return fmt.Errorf("insert question %d: %w", position+1, err)
	}
	for i, answer := range q.Answers {
		var variables interface{}
		if len(answer.Variables) > 0 {
			variables = strings.Join(answer.Variables, ",")
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO answers (question_id, position, label, text, variables) VALUES (?, ?, ?, ?, ?)`,
			questionID,
			i,
			string(answer.Label),
			answer.Text,
			variables,
		); err != nil {
			return fmt.Errorf("insert answer %d of question %d: %w", i+1, position+1, err)
		}
	}
	return nil
}

// nullableString converts an optional string pointer into a SQL argument.
func nullableString(value *string) interface{} {
	if value == nil {
		return nil
	}
	return *value
}
