// ════════════════════════════════════════════════════════════════════════════════════════════════
// ⚡ SESSION PERSISTENCE
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Selector Mining Engine
// Component: SQLite Pause/Resume & Result Archive
//
// Description:
//   Persists long-running mining sessions across process restarts. A session row
//   captures everything needed to reconstruct the search deterministically — base
//   name, parameter list, model, alphabet, length range, budget — plus the resume
//   cursor and running evaluated count. An archive table keeps the best candidates
//   seen per token so interrupted runs never lose winners.
//
//   Rank keys are stored as 16-character zero-padded hex TEXT: uint64 keys span the
//   full range (numeric_rank lives near MaxUint64) and fixed-width hex makes SQL
//   lexicographic order equal numeric order, which ORDER BY relies on.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package sessionstore

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"selmine/types"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// ERRORS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// ErrNotFound marks a session id with no stored row.
var ErrNotFound = errors.New("sessionstore: session not found")

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// SESSION MODEL
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Session is one persisted mining run. Cursor always points at the next
// unevaluated candidate, so Seek(Cursor) resumes without gaps or repeats.
type Session struct {
	ID       string
	BaseName string
	Params   []string
	Model    types.ScoreModel
	Alphabet string
	MinLen   int
	MaxLen   int

	Budget    uint64
	Cursor    uint64
	Evaluated uint64
	UpdatedAt time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	base_name  TEXT    NOT NULL,
	params     TEXT    NOT NULL,
	model      TEXT    NOT NULL,
	alphabet   TEXT    NOT NULL,
	min_len    INTEGER NOT NULL,
	max_len    INTEGER NOT NULL,
	budget     INTEGER NOT NULL,
	cursor     INTEGER NOT NULL,
	evaluated  INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS results (
	session_id TEXT NOT NULL,
	token      TEXT NOT NULL,
	signature  TEXT NOT NULL,
	selector   TEXT NOT NULL,
	rank_key   TEXT NOT NULL,
	score      INTEGER NOT NULL,
	PRIMARY KEY (session_id, token)
);
CREATE INDEX IF NOT EXISTS results_rank ON results (session_id, rank_key DESC);
`

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// STORE
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Store wraps one sqlite database. Safe for concurrent use per database/sql
// semantics; mining workers never touch it — only the driver goroutine does.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) the database at path and ensures the
// schema. ":memory:" works for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sessionstore schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save upserts the session row, stamping UpdatedAt.
func (s *Store) Save(sess *Session) error {
	sess.UpdatedAt = time.Now().UTC()
	_, err := s.db.Exec(`
INSERT INTO sessions (id, base_name, params, model, alphabet, min_len, max_len,
                      budget, cursor, evaluated, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	base_name = excluded.base_name,
	params    = excluded.params,
	model     = excluded.model,
	alphabet  = excluded.alphabet,
	min_len   = excluded.min_len,
	max_len   = excluded.max_len,
	budget    = excluded.budget,
	cursor    = excluded.cursor,
	evaluated = excluded.evaluated,
	updated_at = excluded.updated_at`,
		sess.ID, sess.BaseName, strings.Join(sess.Params, ","), sess.Model.String(),
		sess.Alphabet, sess.MinLen, sess.MaxLen,
		int64(sess.Budget), int64(sess.Cursor), int64(sess.Evaluated),
		sess.UpdatedAt.Unix())
	return err
}

// Load fetches one session by id.
func (s *Store) Load(id string) (*Session, error) {
	row := s.db.QueryRow(`
SELECT id, base_name, params, model, alphabet, min_len, max_len,
       budget, cursor, evaluated, updated_at
FROM sessions WHERE id = ?`, id)

	var (
		sess            Session
		params, model   string
		budget, cursor  int64
		evaluated, when int64
	)
	err := row.Scan(&sess.ID, &sess.BaseName, &params, &model, &sess.Alphabet,
		&sess.MinLen, &sess.MaxLen, &budget, &cursor, &evaluated, &when)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if params != "" {
		sess.Params = strings.Split(params, ",")
	}
	m, ok := types.ParseScoreModel(model)
	if !ok {
		return nil, fmt.Errorf("session %q: unknown model %q", id, model)
	}
	sess.Model = m
	sess.Budget = uint64(budget)
	sess.Cursor = uint64(cursor)
	sess.Evaluated = uint64(evaluated)
	sess.UpdatedAt = time.Unix(when, 0).UTC()
	return &sess, nil
}

// List returns all sessions, most recently updated first.
func (s *Store) List() ([]Session, error) {
	rows, err := s.db.Query(`SELECT id FROM sessions ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]Session, 0, len(ids))
	for _, id := range ids {
		sess, err := s.Load(id)
		if err != nil {
			return nil, err
		}
		out = append(out, *sess)
	}
	return out, nil
}

// Delete removes a session and its archived results.
func (s *Store) Delete(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM results WHERE session_id = ?`, id); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec(`DELETE FROM sessions WHERE id = ?`, id); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// RESULT ARCHIVE
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Archive upserts candidates into the per-session archive, keeping the best
// key per token. One transaction per call; interrupted runs lose at most the
// unarchived delta since the last Save/Archive pair.
func (s *Store) Archive(id string, cands []types.Candidate) error {
	if len(cands) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`
INSERT INTO results (session_id, token, signature, selector, rank_key, score)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(session_id, token) DO UPDATE SET
	signature = excluded.signature,
	selector  = excluded.selector,
	rank_key  = excluded.rank_key,
	score     = excluded.score
WHERE excluded.rank_key > results.rank_key`)
	if err != nil {
		tx.Rollback()
		return err
	}
	for i := range cands {
		c := &cands[i]
		if _, err := stmt.Exec(id, c.Token, c.Signature, c.Selector.Hex(),
			hexKey(c.Key), c.Score); err != nil {
			stmt.Close()
			tx.Rollback()
			return err
		}
	}
	stmt.Close()
	return tx.Commit()
}

// BestKnown returns up to limit archived candidates for a session in result
// order: best key first, shorter token, then lexicographic.
func (s *Store) BestKnown(id string, limit int) ([]types.Candidate, error) {
	rows, err := s.db.Query(`
SELECT token, signature, selector, rank_key, score
FROM results WHERE session_id = ?
ORDER BY rank_key DESC, length(token), token
LIMIT ?`, id, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.Candidate
	for rows.Next() {
		var (
			c              types.Candidate
			selHex, keyHex string
		)
		if err := rows.Scan(&c.Token, &c.Signature, &selHex, &keyHex, &c.Score); err != nil {
			return nil, err
		}
		sel, err := strconv.ParseUint(selHex, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("archived selector %q: %w", selHex, err)
		}
		key, err := strconv.ParseUint(keyHex, 16, 64)
		if err != nil {
			return nil, fmt.Errorf("archived rank key %q: %w", keyHex, err)
		}
		c.Selector = types.SelectorFromUint32(uint32(sel))
		c.Key = key
		out = append(out, c)
	}
	return out, rows.Err()
}

// hexKey renders a rank key as 16 zero-padded hex characters.
func hexKey(key uint64) string {
	const digits = "0123456789abcdef"
	var b [16]byte
	for i := 15; i >= 0; i-- {
		b[i] = digits[key&0xf]
		key >>= 4
	}
	return string(b[:])
}
