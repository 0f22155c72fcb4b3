package database

import (
	"database/sql"
	"fmt"
	"time"

	"platinummotors/internal/models"
)

// CreateUser creates a new admin user
func (d *Database) CreateUser(user *models.User) error {
	query := `
		INSERT INTO users (username, password_hash, display_name, session_token)
		VALUES (?, ?, ?, ?)
	`

	result, err := d.db.Exec(query, user.Username, user.PasswordHash,
		user.DisplayName, nullString(user.SessionToken))
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get user ID: %w", err)
	}

	user.ID = int(id)
	user.CreatedAt = time.Now()
	user.LastActive = time.Now()

	return nil
}

// GetUserByUsername retrieves a user by username
func (d *Database) GetUserByUsername(username string) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, display_name, session_token, created_at, last_active
		FROM users
		WHERE username = ? COLLATE NOCASE
	`
	return d.scanUser(d.db.QueryRow(query, username))
}

// GetUserBySessionToken retrieves a user by their session token
func (d *Database) GetUserBySessionToken(token string) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, display_name, session_token, created_at, last_active
		FROM users
		WHERE session_token = ?
	`
	return d.scanUser(d.db.QueryRow(query, token))
}

// UpdateUserSession replaces a user's session token. An empty token logs
// the user out everywhere.
func (d *Database) UpdateUserSession(userID int, token string) error {
	_, err := d.db.Exec(
		`UPDATE users SET session_token = ?, last_active = CURRENT_TIMESTAMP WHERE id = ?`,
		nullString(token), userID,
	)
	return err
}

// UpdateUserLastActive updates the last active timestamp
func (d *Database) UpdateUserLastActive(userID int) error {
	_, err := d.db.Exec(`UPDATE users SET last_active = CURRENT_TIMESTAMP WHERE id = ?`, userID)
	return err
}

// EnsureAdminUser creates the bootstrap admin account if it does not exist
// yet and returns it. The password hash is only written on first creation;
// an existing account is left untouched.
func (d *Database) EnsureAdminUser(username, passwordHash string) (*models.User, error) {
	existing, err := d.GetUserByUsername(username)
	if err == nil {
		return existing, nil
	}

	user := &models.User{
		Username:     username,
		PasswordHash: passwordHash,
		DisplayName:  username,
	}
	if err := d.CreateUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (d *Database) scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	var sessionToken sql.NullString

	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.DisplayName,
		&sessionToken, &user.CreatedAt, &user.LastActive)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if sessionToken.Valid {
		user.SessionToken = sessionToken.String
	}

	return &user, nil
}
