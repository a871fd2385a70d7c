package advisor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// SQLDialect selects the database/sql driver and DDL flavour.
type SQLDialect string

const (
	DialectSQLite   SQLDialect = "sqlite"
	DialectPostgres SQLDialect = "postgres"
)

// SQLStoreOptions configures OpenSQLChatStore. For SQLite, DSN is a file
// path; for PostgreSQL it is a lib/pq connection string.
type SQLStoreOptions struct {
	Dialect SQLDialect
	DSN     string
	Logger  *slog.Logger
	Now     func() time.Time
}

// SQLChatStore persists chat history in SQLite or PostgreSQL.
type SQLChatStore struct {
	db      *sql.DB
	dialect SQLDialect
	logger  *slog.Logger
	now     func() time.Time
	locks   *sessionLocks
}

func OpenSQLChatStore(opts SQLStoreOptions) (*SQLChatStore, error) {
	if opts.DSN == "" {
		return nil, errors.New("chat store dsn is required")
	}
	dialect := opts.Dialect
	if dialect == "" {
		dialect = DialectSQLite
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	var (
		db  *sql.DB
		err error
	)
	switch dialect {
	case DialectSQLite:
		cleanPath := filepath.Clean(opts.DSN)
		if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
		db, err = sql.Open("sqlite", cleanPath)
		if err != nil {
			return nil, fmt.Errorf("open db: %w", err)
		}
		// SQLite performs best with a single writer.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
			logger.Warn("pragma busy_timeout failed", "err", err)
		}
	case DialectPostgres:
		db, err = sql.Open("postgres", opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("open db: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported chat store dialect: %s", dialect)
	}

	s := &SQLChatStore{
		db:      db,
		dialect: dialect,
		logger:  logger,
		now:     now,
		locks:   newSessionLocks(),
	}
	if err := s.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init chat schema: %w", err)
	}
	return s, nil
}

// Close releases database resources.
func (s *SQLChatStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLChatStore) initSchema(ctx context.Context) error {
	idColumn := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	intType := "INTEGER"
	if s.dialect == DialectPostgres {
		idColumn = "id BIGSERIAL PRIMARY KEY"
		intType = "BIGINT"
	}

	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS chat_messages (
				%s,
				session_id TEXT NOT NULL,
				role TEXT NOT NULL,
				content TEXT NOT NULL,
				created_at %s NOT NULL,
				token_count INTEGER NOT NULL
			)
		`, idColumn, intType),
		`CREATE INDEX IF NOT EXISTS idx_chat_messages_session ON chat_messages(session_id, created_at, id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// rebind turns ? placeholders into $1, $2 ... for PostgreSQL.
func (s *SQLChatStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (s *SQLChatStore) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return WrapError(ErrCodeStorage, "failed to begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("transaction rollback failed on panic", "error", rbErr, "panic_value", p)
			}
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Error("transaction rollback failed", "error", rbErr, "original_error", err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return WrapError(ErrCodeStorage, "failed to commit transaction", err)
	}
	return nil
}

func (s *SQLChatStore) Append(ctx context.Context, sessionID string, role Role, content string) (ChatMessage, error) {
	if err := validateSessionID(sessionID); err != nil {
		return ChatMessage{}, err
	}
	unlock := s.locks.lock(sessionID)
	defer unlock()

	msg := ChatMessage{
		SessionID:  sessionID,
		Role:       role,
		Content:    content,
		TokenCount: EstimateTokens(content),
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var last int64
		if err := tx.QueryRowContext(ctx,
			s.rebind(`SELECT COALESCE(MAX(created_at), 0) FROM chat_messages WHERE session_id = ?`),
			sessionID,
		).Scan(&last); err != nil {
			return WrapError(ErrCodeStorage, "read last message time", err)
		}

		stamp := max(s.now().UnixNano(), last)
		if err := tx.QueryRowContext(ctx,
			s.rebind(`INSERT INTO chat_messages (session_id, role, content, created_at, token_count) VALUES (?, ?, ?, ?, ?) RETURNING id`),
			sessionID, string(role), content, stamp, msg.TokenCount,
		).Scan(&msg.ID); err != nil {
			return WrapError(ErrCodeStorage, "insert chat message", err)
		}
		msg.CreatedAt = time.Unix(0, stamp).UTC()
		return nil
	})
	if err != nil {
		return ChatMessage{}, err
	}
	return msg, nil
}

func (s *SQLChatStore) List(ctx context.Context, sessionID string) ([]ChatMessage, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, session_id, role, content, created_at, token_count
		FROM chat_messages
		WHERE session_id = ?
		ORDER BY created_at ASC, id ASC
	`), sessionID)
	if err != nil {
		return nil, WrapError(ErrCodeStorage, "query chat history", err)
	}
	defer rows.Close()

	history := []ChatMessage{}
	for rows.Next() {
		var (
			msg     ChatMessage
			role    string
			created int64
		)
		if err := rows.Scan(&msg.ID, &msg.SessionID, &role, &msg.Content, &created, &msg.TokenCount); err != nil {
			return nil, WrapError(ErrCodeStorage, "scan chat message", err)
		}
		msg.Role = Role(role)
		msg.CreatedAt = time.Unix(0, created).UTC()
		history = append(history, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, WrapError(ErrCodeStorage, "iterate chat history", err)
	}
	return history, nil
}

func (s *SQLChatStore) Clear(ctx context.Context, sessionID string) error {
	if err := validateSessionID(sessionID); err != nil {
		return err
	}
	unlock := s.locks.lock(sessionID)
	defer unlock()

	if _, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM chat_messages WHERE session_id = ?`), sessionID); err != nil {
		return WrapError(ErrCodeStorage, "clear chat history", err)
	}
	return nil
}
