// Package store provides the Postgres repositories. All queries are plain
// SQL over pgx; schema creation lives in the setup command.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/procurehq/rfpflow/internal/models"
)

type VendorStore struct {
	pool *pgxpool.Pool
}

func NewVendorStore(pool *pgxpool.Pool) *VendorStore {
	return &VendorStore{pool: pool}
}

const vendorColumns = `id, name, email, phone, address, website, category, rating, notes, created_at, updated_at`

func scanVendor(row pgx.Row) (*models.Vendor, error) {
	var v models.Vendor
	err := row.Scan(&v.ID, &v.Name, &v.Email, &v.Phone, &v.Address, &v.Website,
		&v.Category, &v.Rating, &v.Notes, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *VendorStore) All(ctx context.Context) ([]models.Vendor, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+vendorColumns+` FROM vendors ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vendors []models.Vendor
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, err
		}
		vendors = append(vendors, *v)
	}
	return vendors, rows.Err()
}

func (s *VendorStore) ByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+vendorColumns+` FROM vendors WHERE id = $1`, id)
	v, err := scanVendor(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return v, err
}

// ByEmailFragment finds a vendor whose stored email contains the fragment,
// case-insensitively. Deliberately permissive: inbound senders often differ
// from the stored address in display or subaddress details.
func (s *VendorStore) ByEmailFragment(ctx context.Context, fragment string) (*models.Vendor, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+vendorColumns+` FROM vendors WHERE email ILIKE '%' || $1 || '%' LIMIT 1`,
		fragment)
	v, err := scanVendor(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return v, err
}

func (s *VendorStore) Create(ctx context.Context, v *models.Vendor) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	v.Email = strings.ToLower(strings.TrimSpace(v.Email))
	now := time.Now().UTC()
	v.CreatedAt = now
	v.UpdatedAt = now

	_, err := s.pool.Exec(ctx, `
		INSERT INTO vendors (`+vendorColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, v.ID, v.Name, v.Email, v.Phone, v.Address, v.Website, v.Category, v.Rating, v.Notes, v.CreatedAt, v.UpdatedAt)
	return err
}

func (s *VendorStore) Update(ctx context.Context, v *models.Vendor) error {
	v.Email = strings.ToLower(strings.TrimSpace(v.Email))
	v.UpdatedAt = time.Now().UTC()

	tag, err := s.pool.Exec(ctx, `
		UPDATE vendors
		SET name = $2, email = $3, phone = $4, address = $5, website = $6,
		    category = $7, rating = $8, notes = $9, updated_at = $10
		WHERE id = $1
	`, v.ID, v.Name, v.Email, v.Phone, v.Address, v.Website, v.Category, v.Rating, v.Notes, v.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *VendorStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM vendors WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
