package persistence

import (
	"database/sql"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"playpalace/internal/users"
)

var ErrUserExists = errors.New("persistence: username already registered")
var ErrUserNotFound = errors.New("persistence: no such user")
var ErrBadPassword = errors.New("persistence: incorrect password")
var ErrNotApproved = errors.New("persistence: account awaiting approval")

// CountUsers reports how many accounts exist, used to decide whether a new
// registration is the very first account (auto-approved, auto-admin).
func (db *DB) CountUsers() (int, error) {
	var n int
	err := db.queryRow(`SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// Register creates a new account with a bcrypt-hashed password. The very
// first account ever registered is approved immediately and granted admin
// trust, matching the bootstrap behavior a freshly installed server needs
// without any out-of-band provisioning step.
func (db *DB) Register(uuid, username, password, locale string) (users.Record, error) {
	var existing string
	err := db.queryRow(`SELECT username FROM users WHERE username = ?`, username).Scan(&existing)
	if err == nil {
		return users.Record{}, ErrUserExists
	}
	if err != sql.ErrNoRows {
		return users.Record{}, err
	}

	count, err := db.CountUsers()
	if err != nil {
		return users.Record{}, err
	}
	trust := users.TrustPlayer
	approved := false
	if count == 0 {
		trust = users.TrustAdmin
		approved = true
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return users.Record{}, err
	}

	prefs, err := users.DefaultPreferences().Marshal()
	if err != nil {
		return users.Record{}, err
	}

	approvedInt := 0
	if approved {
		approvedInt = 1
	}
	_, err = db.exec(`
		INSERT INTO users (uuid, username, password_hash, locale, preferences_json, trust_level, approved)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, uuid, username, string(hash), locale, prefs, int(trust), approvedInt)
	if err != nil {
		return users.Record{}, err
	}

	return users.Record{
		UUID:           uuid,
		Username:       username,
		PasswordHash:   string(hash),
		Locale:         locale,
		PreferencesRaw: prefs,
		TrustLevel:     trust,
		Approved:       approved,
	}, nil
}

// Authenticate validates a username/password pair and returns the user's
// record. Unapproved accounts fail with ErrNotApproved even when the
// password is correct.
func (db *DB) Authenticate(username, password string) (users.Record, error) {
	rec, err := db.LoadUser(username)
	if err != nil {
		return users.Record{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)); err != nil {
		return users.Record{}, ErrBadPassword
	}
	if !rec.Approved {
		return users.Record{}, ErrNotApproved
	}
	return rec, nil
}

// LoadUser fetches a user record by username regardless of approval state,
// used both by Authenticate and by admin approval tooling.
func (db *DB) LoadUser(username string) (users.Record, error) {
	var rec users.Record
	var trust int
	var approved int
	err := db.queryRow(`
		SELECT uuid, username, password_hash, locale, preferences_json, trust_level, approved
		FROM users WHERE username = ?
	`, username).Scan(&rec.UUID, &rec.Username, &rec.PasswordHash, &rec.Locale, &rec.PreferencesRaw, &trust, &approved)
	if err == sql.ErrNoRows {
		return users.Record{}, ErrUserNotFound
	}
	if err != nil {
		return users.Record{}, err
	}
	rec.TrustLevel = users.TrustLevel(trust)
	rec.Approved = approved != 0
	return rec, nil
}

// SaveLocale persists a user's locale preference change.
func (db *DB) SaveLocale(username, locale string) error {
	_, err := db.exec(`UPDATE users SET locale = ? WHERE username = ?`, locale, username)
	return err
}

// SavePreferences persists a user's preferences blob.
func (db *DB) SavePreferences(username string, prefs users.Preferences) error {
	blob, err := prefs.Marshal()
	if err != nil {
		return err
	}
	_, err = db.exec(`UPDATE users SET preferences_json = ? WHERE username = ?`, blob, username)
	return err
}

// ApproveUser grants account approval, used by an administrator reviewing
// the pending-registrations queue.
func (db *DB) ApproveUser(username string) error {
	_, err := db.exec(`UPDATE users SET approved = 1 WHERE username = ?`, username)
	return err
}

// PendingUsers lists every unapproved account, newest first is not
// guaranteed since SQLite/Postgres rowid ordering differs; callers that
// need a stable order should sort by username themselves.
func (db *DB) PendingUsers() ([]string, error) {
	rows, err := db.query(`SELECT username FROM users WHERE approved = 0`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, err
		}
		out = append(out, username)
	}
	return out, rows.Err()
}
