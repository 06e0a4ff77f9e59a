package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cluehunt/cluehunt/internal/game"
)

// SQLiteStore enforces every gameplay invariant inside SQLite
// transactions: role uniqueness, the single active session, monotonic
// question advance, and at-most-once scoring.
type SQLiteStore struct {
	db           *sql.DB
	questionTime time.Duration
	scoreFloor   int
}

func NewSQLiteStore(db *sql.DB, questionTime time.Duration, scoreFloor int) *SQLiteStore {
	return &SQLiteStore{db: db, questionTime: questionTime, scoreFloor: scoreFloor}
}

// isUniqueViolation detects a SQLite uniqueness constraint failure.
// libSQL surfaces these as plain errors with the SQLite message text.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint")
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// --- Role registry ---

func (s *SQLiteStore) ClaimRole(ctx context.Context, roleName string) (Player, string, error) {
	id := uuid.NewString()
	token := uuid.NewString()

	var p Player
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO players (id, role_name, token, is_ready, current_score)
		VALUES (?, ?, ?, 1, ?)
		RETURNING id, role_name, is_ready, current_score, penalty_count, joined_at
	`, id, roleName, token, game.BaseScore).Scan(
		&p.ID, &p.RoleName, &p.IsReady, &p.CurrentScore, &p.PenaltyCount, &p.JoinedAt)
	if isUniqueViolation(err) {
		return Player{}, "", ErrRoleTaken
	}
	if err != nil {
		return Player{}, "", err
	}
	return p, token, nil
}

func (s *SQLiteStore) ReleaseRole(ctx context.Context, playerID string) error {
	// Releasing an already-released identity is a no-op, not an error.
	_, err := s.db.ExecContext(ctx, `DELETE FROM players WHERE id = ?`, playerID)
	return err
}

func (s *SQLiteStore) SetReady(ctx context.Context, playerID string, ready bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE players SET is_ready = ? WHERE id = ?`, ready, playerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ListPlayers(ctx context.Context) ([]Player, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.role_name, p.is_ready, p.current_score, p.penalty_count,
			EXISTS (
				SELECT 1 FROM answer_locks al
				JOIN game_sessions gs ON gs.id = al.session_id AND gs.status = 'IN_PROGRESS'
				WHERE al.player_id = p.id AND al.question_index = gs.current_question_index
			) AS locked,
			p.joined_at
		FROM players p
		ORDER BY p.current_score DESC, p.joined_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []Player
	for rows.Next() {
		var p Player
		if err := rows.Scan(&p.ID, &p.RoleName, &p.IsReady, &p.CurrentScore, &p.PenaltyCount, &p.Locked, &p.JoinedAt); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *SQLiteStore) PlayerFromToken(ctx context.Context, token string) (Player, error) {
	var p Player
	err := s.db.QueryRowContext(ctx, `
		SELECT id, role_name, is_ready, current_score, penalty_count, joined_at
		FROM players WHERE token = ?
	`, token).Scan(&p.ID, &p.RoleName, &p.IsReady, &p.CurrentScore, &p.PenaltyCount, &p.JoinedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Player{}, ErrNotFound
	}
	return p, err
}

// --- Question content ---

func scanQuestion(scan func(...any) error) (Question, error) {
	var q Question
	var refs string
	if err := scan(&q.ID, &q.ThemeTag, &q.AnswerKey, &q.LetterPool, &refs, &q.CreatedAt); err != nil {
		return q, err
	}
	if err := json.Unmarshal([]byte(refs), &q.ImageRefs); err != nil {
		return q, fmt.Errorf("decoding image refs for question %s: %w", q.ID, err)
	}
	if q.ImageRefs == nil {
		q.ImageRefs = []string{}
	}
	return q, nil
}

func (s *SQLiteStore) ListQuestions(ctx context.Context) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, theme_tag, answer_key, letter_pool, image_refs, created_at
		FROM questions ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []Question
	for rows.Next() {
		q, err := scanQuestion(rows.Scan)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *SQLiteStore) GetQuestion(ctx context.Context, id string) (Question, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, theme_tag, answer_key, letter_pool, image_refs, created_at
		FROM questions WHERE id = ?
	`, id)
	q, err := scanQuestion(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Question{}, ErrNotFound
	}
	return q, err
}

func (s *SQLiteStore) CreateQuestion(ctx context.Context, q Question) (Question, error) {
	refs, _ := json.Marshal(q.ImageRefs)
	q.ID = uuid.NewString()
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO questions (id, theme_tag, answer_key, letter_pool, image_refs)
		VALUES (?, ?, ?, ?, ?)
		RETURNING created_at
	`, q.ID, q.ThemeTag, q.AnswerKey, q.LetterPool, string(refs)).Scan(&q.CreatedAt)
	if err != nil {
		return Question{}, err
	}
	return q, nil
}

func (s *SQLiteStore) UpdateQuestion(ctx context.Context, q Question) (Question, error) {
	refs, _ := json.Marshal(q.ImageRefs)
	err := s.db.QueryRowContext(ctx, `
		UPDATE questions SET theme_tag = ?, answer_key = ?, letter_pool = ?, image_refs = ?
		WHERE id = ?
		RETURNING created_at
	`, q.ThemeTag, q.AnswerKey, q.LetterPool, string(refs), q.ID).Scan(&q.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Question{}, ErrNotFound
	}
	if err != nil {
		return Question{}, err
	}
	return q, nil
}

func (s *SQLiteStore) DeleteQuestion(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) RandomQuestionIDs(ctx context.Context, n int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM questions ORDER BY random() LIMIT ?`, n)
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
	return ids, rows.Err()
}

// --- Session state machine ---

func scanSession(scan func(...any) error) (Session, error) {
	var sess Session
	var order, start string
	if err := scan(&sess.ID, &sess.Status, &order, &sess.CurrentQuestionIndex,
		&sess.TotalQuestions, &start, &sess.CreatedAt); err != nil {
		return sess, err
	}
	if err := json.Unmarshal([]byte(order), &sess.QuestionOrderIDs); err != nil {
		return sess, fmt.Errorf("decoding question order for session %s: %w", sess.ID, err)
	}
	t, err := time.Parse(time.RFC3339Nano, start)
	if err != nil {
		return sess, fmt.Errorf("parsing start time for session %s: %w", sess.ID, err)
	}
	sess.StartTime = t
	return sess, nil
}

const sessionColumns = `id, status, question_order_ids, current_question_index,
	total_questions, start_time, created_at`

// CurrentSession returns the active session, or the most recently
// finished one when no game is running.
func (s *SQLiteStore) CurrentSession(ctx context.Context) (Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM game_sessions
		ORDER BY status = 'IN_PROGRESS' DESC, created_at DESC
		LIMIT 1
	`)
	sess, err := scanSession(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	return sess, err
}

// StartNewGame creates the session and zeroes the named players' scores
// in one transaction. The partial unique index on game_sessions makes a
// second concurrent launch fail instead of creating a second game.
func (s *SQLiteStore) StartNewGame(ctx context.Context, questionIDs, playerIDs []string) (string, error) {
	if len(questionIDs) == 0 {
		return "", ErrNotEnoughQuestions
	}
	if len(playerIDs) == 0 {
		return "", ErrNoPlayers
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var active int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM game_sessions WHERE status = 'IN_PROGRESS'`,
	).Scan(&active); err != nil {
		return "", err
	}
	if active > 0 {
		return "", ErrSessionActive
	}

	order, _ := json.Marshal(questionIDs)
	sessionID := uuid.NewString()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO game_sessions (id, status, question_order_ids, current_question_index, total_questions, start_time)
		VALUES (?, 'IN_PROGRESS', ?, 0, ?, ?)
	`, sessionID, string(order), len(questionIDs), nowUTC())
	if isUniqueViolation(err) {
		return "", ErrSessionActive
	}
	if err != nil {
		return "", err
	}

	// Reset scores and penalty counters for the snapshotted roster.
	args := make([]any, 0, len(playerIDs)+1)
	args = append(args, game.BaseScore)
	placeholders := make([]string, len(playerIDs))
	for i, id := range playerIDs {
		placeholders[i] = "?"
		args = append(args, id)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE players SET current_score = ?, penalty_count = 0
		WHERE id IN (`+strings.Join(placeholders, ", ")+`)
	`, args...); err != nil {
		return "", err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM answer_locks`); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return "", ErrSessionActive
		}
		return "", err
	}
	return sessionID, nil
}

// AdvanceSession moves the session forward by exactly one question, or
// finishes it. The WHERE clause carries the optimistic concurrency
// check: a stale caller (expecting an index the row no longer holds)
// changes nothing.
func (s *SQLiteStore) AdvanceSession(ctx context.Context, sessionID string, expectedIndex int) (Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Session{}, err
	}
	defer tx.Rollback()

	var total int
	err = tx.QueryRowContext(ctx,
		`SELECT total_questions FROM game_sessions WHERE id = ?`, sessionID,
	).Scan(&total)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}

	next := expectedIndex + 1
	status := game.StatusInProgress
	if next >= total {
		next = total
		status = game.StatusFinished
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE game_sessions
		SET current_question_index = ?, status = ?, start_time = ?
		WHERE id = ? AND status = 'IN_PROGRESS' AND current_question_index = ?
	`, next, status, nowUTC(), sessionID, expectedIndex)
	if err != nil {
		return Session{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Session{}, ErrStaleAdvance
	}

	row := tx.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM game_sessions WHERE id = ?`, sessionID)
	sess, err := scanSession(row.Scan)
	if err != nil {
		return Session{}, err
	}

	if err := tx.Commit(); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// SubmitPlayerAnswer applies one scoring action. The session must be
// the current IN_PROGRESS one and inside its deadline, measured against
// server time; the client-side timer is advisory only.
func (s *SQLiteStore) SubmitPlayerAnswer(ctx context.Context, playerID, sessionID, action string, timeRemaining, penaltyCount int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT `+sessionColumns+` FROM game_sessions WHERE status = 'IN_PROGRESS'
	`)
	sess, err := scanSession(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrStaleSession
	}
	if err != nil {
		return err
	}
	if sess.ID != sessionID {
		return ErrStaleSession
	}
	if time.Now().After(sess.StartTime.Add(s.questionTime)) {
		return ErrQuestionExpired
	}

	switch action {
	case game.ActionApplyPenalty:
		res, err := tx.ExecContext(ctx, `
			UPDATE players
			SET penalty_count = penalty_count + 1,
			    current_score = MAX(?, current_score - ?)
			WHERE id = ?
		`, s.scoreFloor, game.PenaltyAmount, playerID)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrNotFound
		}

	case game.ActionSubmitCorrect:
		// The lock row makes resubmission a no-op: only the first correct
		// submission for this question scores.
		res, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO answer_locks (player_id, session_id, question_index, time_remaining)
			VALUES (?, ?, ?, ?)
		`, playerID, sessionID, sess.CurrentQuestionIndex, timeRemaining)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return tx.Commit()
		}

		score := game.FinalScore(penaltyCount, s.scoreFloor)
		if _, err := tx.ExecContext(ctx,
			`UPDATE players SET current_score = ? WHERE id = ?`, score, playerID,
		); err != nil {
			return err
		}

	default:
		return fmt.Errorf("unknown answer action %q", action)
	}

	return tx.Commit()
}

// ResetGameData wipes players, sessions, and locks, returning the
// system to the pre-lobby state.
func (s *SQLiteStore) ResetGameData(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM answer_locks`,
		`DELETE FROM players`,
		`DELETE FROM game_sessions`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// --- Authority identity ---

func (s *SQLiteStore) AdminByEmail(ctx context.Context, email string) (string, string, error) {
	var adminID, passwordHash string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, password_hash FROM admins WHERE email = ?`, email,
	).Scan(&adminID, &passwordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", ErrNotFound
	}
	return adminID, passwordHash, err
}

func (s *SQLiteStore) CreateAdmin(ctx context.Context, email, passwordHash string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO admins (email, password_hash) VALUES (?, ?)`, email, passwordHash)
	return err
}

func (s *SQLiteStore) HasAdmin(ctx context.Context) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&count)
	return count > 0, err
}

func (s *SQLiteStore) CreateAdminSession(ctx context.Context, adminID string) (string, error) {
	var sessionID string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO admin_sessions (admin_id) VALUES (?) RETURNING id
	`, adminID).Scan(&sessionID)
	return sessionID, err
}

func (s *SQLiteStore) AdminFromSession(ctx context.Context, sessionID string) (adminSession, error) {
	var sess adminSession
	err := s.db.QueryRowContext(ctx, `
		SELECT a.id, a.email
		FROM admin_sessions s
		JOIN admins a ON a.id = s.admin_id
		WHERE s.id = ?
	`, sessionID).Scan(&sess.AdminID, &sess.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return adminSession{}, errNoAdminSession
	}
	return sess, err
}

func (s *SQLiteStore) DeleteAdminSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM admin_sessions WHERE id = ?`, sessionID)
	return err
}
