// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on top of a SQLite database.
type SQLiteStore struct {
	db *sqlx.DB
}

// busyTimeoutMillis bounds how long a connection waits for another
// connection's write lock before failing with SQLITE_BUSY.
const busyTimeoutMillis = 5000

// NewSQLiteStore opens (or creates) the database at dsn, enables WAL mode and
// foreign keys, and applies pending migrations. ":memory:" is supported.
// Every pooled connection waits on locks and starts transactions with
// BEGIN IMMEDIATE, so concurrent writers queue instead of failing.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", withConnParams(dsn))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// every connection to an in-memory database sees its own empty database
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// withConnParams adds the per-connection pragmas and the transaction lock
// mode to dsn, keeping any parameters the caller already set.
func withConnParams(dsn string) string {
	var params []string
	if !strings.Contains(dsn, "busy_timeout") {
		params = append(params, fmt.Sprintf("_pragma=busy_timeout(%d)", busyTimeoutMillis))
	}
	if !strings.Contains(dsn, "foreign_keys") {
		params = append(params, "_pragma=foreign_keys(1)")
	}
	if !strings.Contains(dsn, "_txlock") {
		params = append(params, "_txlock=immediate")
	}
	if len(params) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// runMigrations applies every migration newer than the recorded schema version.
func (s *SQLiteStore) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'")
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}
	if tableCount > 0 {
		if err := s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}
	return nil
}

// SetAssigneeGroup creates the group if needed and replaces its members.
func (s *SQLiteStore) SetAssigneeGroup(ctx context.Context, name string, users []string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO assignee_groups (name, created_at) VALUES (?, ?)",
		name, time.Now().Unix(),
	); err != nil {
		return fmt.Errorf("creating assignee group %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM assignee_group_members WHERE group_name = ?", name,
	); err != nil {
		return fmt.Errorf("clearing members of assignee group %s: %w", name, err)
	}
	for _, u := range users {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO assignee_group_members (group_name, username) VALUES (?, ?)",
			name, u,
		); err != nil {
			return fmt.Errorf("adding %s to assignee group %s: %w", u, name, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetAssigneeGroup(ctx context.Context, name string) ([]string, error) {
	var exists int
	if err := s.db.GetContext(ctx, &exists,
		"SELECT COUNT(*) FROM assignee_groups WHERE name = ?", name); err != nil {
		return nil, fmt.Errorf("looking up assignee group %s: %w", name, err)
	}
	if exists == 0 {
		return nil, ErrGroupNotFound
	}

	users := []string{}
	if err := s.db.SelectContext(ctx, &users,
		"SELECT username FROM assignee_group_members WHERE group_name = ? ORDER BY username", name); err != nil {
		return nil, fmt.Errorf("querying members of assignee group %s: %w", name, err)
	}
	return users, nil
}

// DeleteAssigneeGroup removes members explicitly since the foreign_keys pragma
// only applies to the connection that ran it.
func (s *SQLiteStore) DeleteAssigneeGroup(ctx context.Context, name string) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM assignee_group_members WHERE group_name = ?", name); err != nil {
		return false, fmt.Errorf("deleting members of assignee group %s: %w", name, err)
	}
	result, err := tx.ExecContext(ctx, "DELETE FROM assignee_groups WHERE name = ?", name)
	if err != nil {
		return false, fmt.Errorf("deleting assignee group %s: %w", name, err)
	}
	rows, _ := result.RowsAffected()
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing delete of assignee group %s: %w", name, err)
	}
	return rows > 0, nil
}

type groupMemberRow struct {
	Group    string         `db:"name"`
	Username sql.NullString `db:"username"`
}

func collectGroups(rows []groupMemberRow) map[string][]string {
	out := make(map[string][]string)
	for _, r := range rows {
		members, ok := out[r.Group]
		if !ok {
			members = []string{}
		}
		if r.Username.Valid {
			members = append(members, r.Username.String)
		}
		out[r.Group] = members
	}
	return out
}

func (s *SQLiteStore) GetAssigneeGroups(ctx context.Context) (map[string][]string, error) {
	var rows []groupMemberRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT g.name AS name, m.username AS username
		FROM assignee_groups g
		LEFT JOIN assignee_group_members m ON m.group_name = g.name
		ORDER BY g.name, m.username`)
	if err != nil {
		return nil, fmt.Errorf("querying assignee groups: %w", err)
	}
	return collectGroups(rows), nil
}

func (s *SQLiteStore) GetAssigneeGroupsForUser(ctx context.Context, user string) (map[string][]string, error) {
	var rows []groupMemberRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT m.group_name AS name, m.username AS username
		FROM assignee_group_members m
		WHERE m.group_name IN (
			SELECT group_name FROM assignee_group_members WHERE username = ?
		)
		ORDER BY m.group_name, m.username`, user)
	if err != nil {
		return nil, fmt.Errorf("querying assignee groups for %s: %w", user, err)
	}
	return collectGroups(rows), nil
}

type notificationRow struct {
	ID          string `db:"id"`
	User        string `db:"username"`
	Message     string `db:"message"`
	CreatedAt   int64  `db:"created_at"`
	ExpiresAt   int64  `db:"expires_at"`
	Seen        bool   `db:"seen"`
	DeferToMail bool   `db:"defer_to_mail"`
}

func (r notificationRow) toNotification() Notification {
	return Notification{
		ID:          r.ID,
		User:        r.User,
		Message:     r.Message,
		Timestamp:   time.Unix(r.CreatedAt, 0).UTC(),
		Expiration:  time.Unix(r.ExpiresAt, 0).UTC(),
		Seen:        r.Seen,
		DeferToMail: r.DeferToMail,
	}
}

// AddNotification inserts n. If n has no ID, a new UUID is generated.
func (s *SQLiteStore) AddNotification(ctx context.Context, n Notification) (string, error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, username, message, created_at, expires_at, seen, defer_to_mail)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.User, n.Message, n.Timestamp.Unix(), n.Expiration.Unix(),
		boolToInt(n.Seen), boolToInt(n.DeferToMail),
	)
	if err != nil {
		return "", fmt.Errorf("creating notification: %w", err)
	}
	return n.ID, nil
}

// userSelection builds the WHERE clause shared by remove and mark operations.
func userSelection(user string, ids []string) (string, []interface{}, error) {
	if len(ids) == 0 {
		return "username = ?", []interface{}{user}, nil
	}
	clause, args, err := sqlx.In("username = ? AND id IN (?)", user, ids)
	if err != nil {
		return "", nil, fmt.Errorf("expanding notification ids: %w", err)
	}
	return clause, args, nil
}

func (s *SQLiteStore) RemoveNotifications(ctx context.Context, user string, ids []string) (int64, error) {
	where, args, err := userSelection(user, ids)
	if err != nil {
		return 0, err
	}
	result, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM notifications WHERE "+where), args...)
	if err != nil {
		return 0, fmt.Errorf("removing notifications of %s: %w", user, err)
	}
	return result.RowsAffected()
}

func (s *SQLiteStore) SetNotificationsSeen(ctx context.Context, user string, ids []string, seen bool) (int64, error) {
	where, args, err := userSelection(user, ids)
	if err != nil {
		return 0, err
	}
	args = append([]interface{}{boolToInt(seen)}, args...)
	result, err := s.db.ExecContext(ctx, s.db.Rebind("UPDATE notifications SET seen = ? WHERE "+where), args...)
	if err != nil {
		return 0, fmt.Errorf("updating seen flag of %s: %w", user, err)
	}
	return result.RowsAffected()
}

// GetNotifications runs q. Filter keys are visited in a fixed order so the
// generated SQL is stable.
func (s *SQLiteStore) GetNotifications(ctx context.Context, q Query) ([]Notification, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	conditions := []string{"expires_at >= ?"}
	args := []interface{}{q.now().Unix()}

	for _, key := range []string{FilterID, FilterUser, FilterMessage, FilterSeen, FilterDeferToMail} {
		values := q.Filter[key]
		if len(values) == 0 {
			continue
		}
		var vals []interface{}
		if key == FilterSeen || key == FilterDeferToMail {
			for _, b := range boolValues(values) {
				vals = append(vals, boolToInt(b))
			}
		} else {
			for _, v := range values {
				vals = append(vals, v)
			}
		}
		conditions = append(conditions, filterColumns[key]+" IN (?)")
		args = append(args, vals)
	}

	query := "SELECT id, username, message, created_at, expires_at, seen, defer_to_mail FROM notifications WHERE " +
		strings.Join(conditions, " AND ")

	order := make([]string, 0, len(q.Sort)+1)
	for _, sf := range q.Sort {
		direction := "ASC"
		if sf.Desc {
			direction = "DESC"
		}
		order = append(order, sortColumns[sf.Field]+" "+direction)
	}
	if len(q.Sort) == 0 {
		order = append(order, "created_at ASC")
	}
	order = append(order, "id ASC")
	query += " ORDER BY " + strings.Join(order, ", ")

	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.Limit)
	} else if q.Offset > 0 {
		query += " LIMIT -1"
	}
	if q.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", q.Offset)
	}

	query, args, err := sqlx.In(query, args...)
	if err != nil {
		return nil, fmt.Errorf("expanding notification query: %w", err)
	}

	var rows []notificationRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	out := make([]Notification, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toNotification())
	}
	return out, nil
}

func (s *SQLiteStore) PurgeExpiredNotifications(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM notifications WHERE expires_at < ?", now.Unix())
	if err != nil {
		return 0, fmt.Errorf("purging expired notifications: %w", err)
	}
	return result.RowsAffected()
}

// boolToInt converts a boolean to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
