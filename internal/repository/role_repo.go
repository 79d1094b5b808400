package repository

import (
	"context"
	"fmt"

	"github.com/cryptobets/sportsbook/internal/domain"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// RoleRepository handles the user_roles grant table consulted before every
// privileged back-office operation.
type RoleRepository struct {
	db *sqlx.DB
}

// NewRoleRepository creates a new RoleRepository.
func NewRoleRepository(db *sqlx.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// HasRole reports whether the user holds an explicit grant for the role.
// A token claim alone is never enough; privileged calls re-check here.
func (r *RoleRepository) HasRole(ctx context.Context, userID uuid.UUID, role domain.UserRole) (bool, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM user_roles WHERE user_id = $1 AND role = $2`,
		userID, string(role))
	if err != nil {
		return false, fmt.Errorf("role_repo.HasRole: %w", err)
	}
	return n > 0, nil
}

// Grant inserts a role grant for the user. Granting an already-held role is
// a no-op.
func (r *RoleRepository) Grant(ctx context.Context, userID uuid.UUID, role domain.UserRole) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_roles (user_id, role, created_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id, role) DO NOTHING`,
		userID, string(role))
	if err != nil {
		return fmt.Errorf("role_repo.Grant: %w", err)
	}
	return nil
}

// Revoke removes a role grant. Revoking an absent grant is a no-op.
func (r *RoleRepository) Revoke(ctx context.Context, userID uuid.UUID, role domain.UserRole) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM user_roles WHERE user_id = $1 AND role = $2`,
		userID, string(role))
	if err != nil {
		return fmt.Errorf("role_repo.Revoke: %w", err)
	}
	return nil
}
