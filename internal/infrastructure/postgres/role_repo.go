package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ErlanBelekov/pharmacy-auth/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultRoles are the roles the marketplace knows about, with their permissions.
var DefaultRoles = []domain.Role{
	{Name: "Admin", Permissions: []string{
		"manage_users", "manage_pharmacies", "manage_doctors",
		"manage_articles", "manage_roles", "view_analytics",
	}},
	{Name: "User", Permissions: []string{
		"search_pharmacies", "view_products", "read_articles", "manage_own_profile",
	}},
	{Name: "Pharmacy", Permissions: []string{
		"manage_products", "update_schedule", "manage_inventory", "view_notifications",
		"manage_own_profile", "manage_helpers", "view_analytics", "manage_pharmacy_settings",
	}},
	{Name: "Pharmacy_Helper", Permissions: []string{
		"view_products", "update_inventory", "view_schedule",
		"view_notifications", "manage_own_profile",
	}},
	{Name: "Doctor", Permissions: []string{
		"publish_articles", "manage_own_profile", "view_patient_info",
	}},
}

type RoleRepository struct {
	pool *pgxpool.Pool
}

func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

func (r *RoleRepository) FindByName(ctx context.Context, name string) (*domain.Role, error) {
	var role domain.Role
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, permissions FROM roles WHERE name = $1`,
		name,
	).Scan(&role.ID, &role.Name, &role.Permissions)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, fmt.Errorf("find role: %w", err)
	}
	return &role, nil
}

// Seed inserts the given roles, leaving existing ones untouched. Returns how many were inserted.
func (r *RoleRepository) Seed(ctx context.Context, roles []domain.Role) (int, error) {
	batch := &pgx.Batch{}
	for _, role := range roles {
		batch.Queue(
			`INSERT INTO roles (name, permissions) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
			role.Name, role.Permissions,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer func() { _ = results.Close() }()

	inserted := 0
	for _, role := range roles {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("seed role %s: %w", role.Name, err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}
