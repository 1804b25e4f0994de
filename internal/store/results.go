package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harrison/dommx/internal/flow"
	"github.com/harrison/dommx/internal/models"
)

// SaveResults replaces the stored answer payload for (user, project) with the
// given set. The whole payload is rewritten in one transaction: the backend
// contract is last-writer-wins per key, with no partial merges.
func (s *Store) SaveResults(userID, projectID string, answers flow.AnswerSet) error {
	userID = strings.TrimSpace(userID)
	projectID = strings.TrimSpace(projectID)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM answers WHERE user_id = ? AND project_id = ?`,
		userID, projectID,
	); err != nil {
		return fmt.Errorf("clear previous answers: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO answers (user_id, project_id, domain_key, question_id, score, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for domainKey, byQuestion := range answers {
		for questionID, score := range byQuestion {
			if _, err := stmt.Exec(userID, projectID, domainKey, questionID, score, now); err != nil {
				return fmt.Errorf("insert answer %s/%s: %w", domainKey, questionID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// LoadResults returns the stored answers and completion flag for
// (user, project). found is false when nothing has ever been saved.
func (s *Store) LoadResults(userID, projectID string) (answers flow.AnswerSet, completed bool, found bool, err error) {
	userID = strings.TrimSpace(userID)
	projectID = strings.TrimSpace(projectID)

	rows, err := s.db.Query(
		`SELECT domain_key, question_id, score FROM answers
		 WHERE user_id = ? AND project_id = ?`,
		userID, projectID,
	)
	if err != nil {
		return nil, false, false, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	answers = make(flow.AnswerSet)
	for rows.Next() {
		var domainKey, questionID string
		var score int
		if err := rows.Scan(&domainKey, &questionID, &score); err != nil {
			return nil, false, false, fmt.Errorf("scan answer: %w", err)
		}
		if answers[domainKey] == nil {
			answers[domainKey] = make(map[string]int)
		}
		answers[domainKey][questionID] = score
		found = true
	}
	if err := rows.Err(); err != nil {
		return nil, false, false, fmt.Errorf("iterate answers: %w", err)
	}

	completed, err = s.IsFinished(userID, projectID)
	if err != nil {
		return nil, false, false, err
	}
	if completed {
		found = true
	}

	return answers, completed, found, nil
}

// MarkFinished records the standalone finished flag for (user, project).
func (s *Store) MarkFinished(userID, projectID string) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO finished_assessments (user_id, project_id, is_finished, timestamp)
		 VALUES (?, ?, 1, ?)`,
		strings.TrimSpace(userID), strings.TrimSpace(projectID), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("mark finished: %w", err)
	}
	return nil
}

// IsFinished reports whether the assessment was submitted.
func (s *Store) IsFinished(userID, projectID string) (bool, error) {
	var finished bool
	err := s.db.QueryRow(
		`SELECT is_finished FROM finished_assessments WHERE user_id = ? AND project_id = ?`,
		strings.TrimSpace(userID), strings.TrimSpace(projectID),
	).Scan(&finished)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query finished flag: %w", err)
	}
	return finished, nil
}

// SaveLogSnapshot stores the message panel as a JSON blob. Snapshots are
// append-only history; they are never read back by the core.
func (s *Store) SaveLogSnapshot(userID, projectID string, messages []models.Message) error {
	payload, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("marshal log snapshot: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO log_snapshots (user_id, project_id, taken_at, messages) VALUES (?, ?, ?, ?)`,
		strings.TrimSpace(userID), strings.TrimSpace(projectID), time.Now().UTC(), string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert log snapshot: %w", err)
	}
	return nil
}

// Assessment summarizes one stored (user, project) assessment.
type Assessment struct {
	UserID      string
	ProjectID   string
	AnswerCount int
	Finished    bool
	UpdatedAt   time.Time
}

// ListAssessments returns a summary row for every (user, project) pair that
// has saved answers or a finished flag.
func (s *Store) ListAssessments() ([]Assessment, error) {
	rows, err := s.db.Query(`
		SELECT key.user_id, key.project_id,
		       COALESCE(a.cnt, 0),
		       COALESCE(f.is_finished, 0),
		       COALESCE(a.updated, f.timestamp, CURRENT_TIMESTAMP)
		FROM (
			SELECT user_id, project_id FROM answers
			UNION
			SELECT user_id, project_id FROM finished_assessments
		) AS key
		LEFT JOIN (
			SELECT user_id, project_id, COUNT(*) AS cnt, MAX(updated_at) AS updated
			FROM answers GROUP BY user_id, project_id
		) AS a ON a.user_id = key.user_id AND a.project_id = key.project_id
		LEFT JOIN finished_assessments AS f
			ON f.user_id = key.user_id AND f.project_id = key.project_id
		ORDER BY key.user_id, key.project_id`)
	if err != nil {
		return nil, fmt.Errorf("query assessments: %w", err)
	}
	defer rows.Close()

	var out []Assessment
	for rows.Next() {
		var a Assessment
		var updated sql.NullString
		if err := rows.Scan(&a.UserID, &a.ProjectID, &a.AnswerCount, &a.Finished, &updated); err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		// the COALESCE expression has no declared type, so the driver hands
		// the timestamp back as text
		a.UpdatedAt = parseStoredTime(updated.String)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assessments: %w", err)
	}
	return out, nil
}

// parseStoredTime decodes the textual timestamp formats SQLite hands back
// for expressions without a declared column type.
func parseStoredTime(raw string) time.Time {
	layouts := []string{
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05.999999999",
		"2006-01-02 15:04:05",
		time.RFC3339Nano,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// ResultRow is one stored answer, flattened for export.
type ResultRow struct {
	UserID     string
	ProjectID  string
	DomainKey  string
	QuestionID string
	Score      int
	UpdatedAt  time.Time
}

// AllResults returns every stored answer across all users and projects,
// ordered deterministically for export.
func (s *Store) AllResults() ([]ResultRow, error) {
	rows, err := s.db.Query(
		`SELECT user_id, project_id, domain_key, question_id, score, updated_at
		 FROM answers
		 ORDER BY user_id, project_id, domain_key, question_id`)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []ResultRow
	for rows.Next() {
		var r ResultRow
		if err := rows.Scan(&r.UserID, &r.ProjectID, &r.DomainKey, &r.QuestionID, &r.Score, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return out, nil
}
