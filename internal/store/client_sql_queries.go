// SPDX-License-Identifier: Apache-2.0

package store

const (
	createVaultStateTable = `
		CREATE TABLE IF NOT EXISTS vault_state (
			id             INTEGER PRIMARY KEY CHECK (id = 1),
			encrypted_blob BLOB      NOT NULL,
			revision       INTEGER   NOT NULL,
			dirty          INTEGER   NOT NULL,
			mutation_seq   INTEGER   NOT NULL,
			login          TEXT      NOT NULL,
			updated_at     TIMESTAMP NOT NULL
		);`

	createSessionTable = `
		CREATE TABLE IF NOT EXISTS session (
			id         INTEGER PRIMARY KEY CHECK (id = 1),
			user_id    INTEGER   NOT NULL,
			login      TEXT      NOT NULL,
			token      TEXT      NOT NULL,
			created_at TIMESTAMP NOT NULL
		);`

	getVaultState = `
		SELECT encrypted_blob, revision, dirty, mutation_seq, login, updated_at
		FROM vault_state
		WHERE id = 1;`

	// The state table holds exactly one row; every save replaces it.
	upsertVaultState = `
		INSERT INTO vault_state (id, encrypted_blob, revision, dirty, mutation_seq, login, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			encrypted_blob = excluded.encrypted_blob,
			revision       = excluded.revision,
			dirty          = excluded.dirty,
			mutation_seq   = excluded.mutation_seq,
			login          = excluded.login,
			updated_at     = excluded.updated_at;`

	deleteVaultState = `DELETE FROM vault_state WHERE id = 1;`

	getSession = `
		SELECT user_id, login, token, created_at
		FROM session
		WHERE id = 1;`

	upsertSession = `
		INSERT INTO session (id, user_id, login, token, created_at)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			user_id    = excluded.user_id,
			login      = excluded.login,
			token      = excluded.token,
			created_at = excluded.created_at;`

	deleteSession = `DELETE FROM session WHERE id = 1;`
)
