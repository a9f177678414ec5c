package store

const (
	createUser = `INSERT INTO users (login, auth_hash, srp_salt)
    VALUES ($1, $2, $3)
    RETURNING user_id, login, auth_hash, srp_salt, created_at;`

	findUserByLogin = `SELECT user_id, login, auth_hash, srp_salt, created_at
    FROM users
    WHERE login = $1;`

	findUserByID = `SELECT user_id, login, auth_hash, srp_salt, created_at
    FROM users
    WHERE user_id = $1;`

	getLatestVault = `SELECT user_id, revision, blob, saved_at
		FROM vaults
		WHERE user_id = $1;`

	// Locks the user's vault row for the duration of the CAS transaction
	// so two concurrent saves serialize instead of both reading the same
	// actual revision.
	getVaultRevisionForUpdate = `SELECT revision
		FROM vaults
		WHERE user_id = $1
		FOR UPDATE;`

	upsertVault = `INSERT INTO vaults (user_id, revision, blob, saved_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET revision = EXCLUDED.revision,
		    blob     = EXCLUDED.blob,
		    saved_at = EXCLUDED.saved_at;`

	insertVaultHistory = `INSERT INTO vault_history (user_id, revision, blob_size, saved_at, recovery_gap)
		VALUES ($1, $2, $3, $4, $5);`
)
