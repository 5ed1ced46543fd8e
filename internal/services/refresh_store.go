package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mindwellhq/mindwell-backend/internal/database"
)

// RefreshToken mirrors a row in the refresh_tokens table.
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

// Usable reports whether the token can still mint access tokens.
func (rt *RefreshToken) Usable() bool {
	return !rt.Revoked && time.Now().Before(rt.ExpiresAt)
}

// CreateRefreshToken persists a new refresh token hash for a user.
func CreateRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) (uuid.UUID, error) {
	id := uuid.New()
	_, err := database.PostgresDB.ExecContext(ctx, `
		INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at)
		VALUES ($1, $2, $3, $4)
	`, id, userID, tokenHash, expiresAt)
	return id, err
}

// GetRefreshTokenByHash looks up a refresh token row by its hash.
func GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*RefreshToken, error) {
	rt := &RefreshToken{}
	err := database.PostgresDB.QueryRowContext(ctx, `
		SELECT id, user_id, token_hash, expires_at, revoked, created_at
		FROM refresh_tokens WHERE token_hash = $1
	`, tokenHash).Scan(&rt.ID, &rt.UserID, &rt.TokenHash, &rt.ExpiresAt, &rt.Revoked, &rt.CreatedAt)
	if err != nil {
		return nil, err
	}
	return rt, nil
}

// RotateRefreshToken revokes the old token and inserts its replacement in one
// transaction, linking old to new.
func RotateRefreshToken(ctx context.Context, oldID uuid.UUID, userID uuid.UUID, newHash string, newExpiry time.Time) (uuid.UUID, error) {
	newID := uuid.New()

	tx, err := database.PostgresDB.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE refresh_tokens SET revoked = TRUE, replaced_by = $1 WHERE id = $2
	`, newID, oldID); err != nil {
		return uuid.Nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at)
		VALUES ($1, $2, $3, $4)
	`, newID, userID, newHash, newExpiry); err != nil {
		return uuid.Nil, err
	}

	return newID, tx.Commit()
}

// RevokeUserRefreshTokens revokes every live refresh token for a user.
func RevokeUserRefreshTokens(ctx context.Context, userID uuid.UUID) error {
	_, err := database.PostgresDB.ExecContext(ctx, `
		UPDATE refresh_tokens SET revoked = TRUE WHERE user_id = $1 AND revoked = FALSE
	`, userID)
	return err
}
