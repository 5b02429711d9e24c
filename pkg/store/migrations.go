// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations must stay ordered with sequential versions starting at 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS assignee_groups (
	name       TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS assignee_group_members (
	group_name TEXT NOT NULL REFERENCES assignee_groups(name) ON DELETE CASCADE,
	username   TEXT NOT NULL,
	PRIMARY KEY (group_name, username)
);

CREATE INDEX IF NOT EXISTS idx_assignee_group_members_username ON assignee_group_members(username);

CREATE TABLE IF NOT EXISTS notifications (
	id            TEXT PRIMARY KEY,
	username      TEXT NOT NULL,
	message       TEXT NOT NULL,
	created_at    INTEGER NOT NULL,
	expires_at    INTEGER NOT NULL,
	seen          INTEGER NOT NULL DEFAULT 0 CHECK(seen IN (0, 1)),
	defer_to_mail INTEGER NOT NULL DEFAULT 1 CHECK(defer_to_mail IN (0, 1))
);

CREATE INDEX IF NOT EXISTS idx_notifications_username ON notifications(username);
CREATE INDEX IF NOT EXISTS idx_notifications_expires_at ON notifications(expires_at);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
