package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"comanda/internal/domain"
	"comanda/internal/errors"
)

// MySQLTenantRepository spans the account (merchant-private) and page
// (public) records of a tenant. Plan writes touch both rows in one
// transaction so the denormalized plan snapshot on the page can never drift
// from the account.
type MySQLTenantRepository struct {
	db *sql.DB
}

func NewMySQLTenantRepository(db *sql.DB) *MySQLTenantRepository {
	return &MySQLTenantRepository{db: db}
}

func (r *MySQLTenantRepository) FindAccountByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `
		SELECT id, email, displayName, plan, trialDeadline, pageSlug, role
		FROM Accounts
		WHERE id = ?
	`

	var account domain.Account
	var plan string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&account.ID, &account.Email, &account.DisplayName,
		&plan, &account.TrialDeadline, &account.PageSlug, &account.Role,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("account %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying account by id: %w", err)
	}

	account.Plan = domain.ParsePlan(plan)
	return &account, nil
}

func (r *MySQLTenantRepository) FindAccountByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `
		SELECT id, email, displayName, plan, trialDeadline, pageSlug, role
		FROM Accounts
		WHERE email = ?
	`

	var account domain.Account
	var plan string
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&account.ID, &account.Email, &account.DisplayName,
		&plan, &account.TrialDeadline, &account.PageSlug, &account.Role,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("account with email %s not found", email))
	}
	if err != nil {
		return nil, fmt.Errorf("querying account by email: %w", err)
	}

	account.Plan = domain.ParsePlan(plan)
	return &account, nil
}

func (r *MySQLTenantRepository) FindPageBySlug(ctx context.Context, slug string) (*domain.TenantPage, error) {
	query := `
		SELECT slug, accountId, title, bio, address, whatsapp, pixKey, theme, isOpen, plan, trialDeadline
		FROM Pages
		WHERE slug = ?
	`

	var page domain.TenantPage
	var plan string
	err := r.db.QueryRowContext(ctx, query, slug).Scan(
		&page.Slug, &page.AccountID, &page.Title, &page.Bio, &page.Address,
		&page.WhatsApp, &page.PixKey, &page.Theme, &page.IsOpen,
		&plan, &page.TrialDeadline,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("page %s not found", slug))
	}
	if err != nil {
		return nil, fmt.Errorf("querying page by slug: %w", err)
	}
	page.Plan = domain.ParsePlan(plan)

	if page.Coupons, err = r.loadCoupons(ctx, slug); err != nil {
		return nil, err
	}
	if page.Items, err = r.loadMenuItems(ctx, slug); err != nil {
		return nil, err
	}

	return &page, nil
}

func (r *MySQLTenantRepository) loadCoupons(ctx context.Context, slug string) ([]domain.Coupon, error) {
	query := `SELECT code, kind, value, active FROM Coupons WHERE pageSlug = ? ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, slug)
	if err != nil {
		return nil, fmt.Errorf("querying coupons: %w", err)
	}
	defer rows.Close()

	var coupons []domain.Coupon
	for rows.Next() {
		var c domain.Coupon
		var kind string
		if err := rows.Scan(&c.Code, &kind, &c.Value, &c.Active); err != nil {
			return nil, fmt.Errorf("scanning coupon: %w", err)
		}
		c.Kind = domain.CouponKind(kind)
		coupons = append(coupons, c)
	}
	return coupons, rows.Err()
}

func (r *MySQLTenantRepository) loadMenuItems(ctx context.Context, slug string) ([]domain.MenuItem, error) {
	query := `
		SELECT title, price, description, imageUrl, category, position
		FROM MenuItems
		WHERE pageSlug = ?
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query, slug)
	if err != nil {
		return nil, fmt.Errorf("querying menu items: %w", err)
	}
	defer rows.Close()

	var items []domain.MenuItem
	for rows.Next() {
		var item domain.MenuItem
		if err := rows.Scan(&item.Title, &item.Price, &item.Description, &item.ImageURL, &item.Category, &item.Position); err != nil {
			return nil, fmt.Errorf("scanning menu item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ReplaceCoupons swaps the tenant's full coupon list atomically, mirroring
// the document-style array replace of the original data model.
func (r *MySQLTenantRepository) ReplaceCoupons(ctx context.Context, slug string, coupons []domain.Coupon) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning coupon transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM Coupons WHERE pageSlug = ?`, slug); err != nil {
		return fmt.Errorf("clearing coupons: %w", err)
	}

	insert := `INSERT INTO Coupons (pageSlug, code, kind, value, active) VALUES (?, ?, ?, ?, ?)`
	for _, c := range coupons {
		if _, err := tx.ExecContext(ctx, insert, slug, c.Code, string(c.Kind), c.Value, c.Active); err != nil {
			return fmt.Errorf("inserting coupon: %w", err)
		}
	}

	return tx.Commit()
}

func (r *MySQLTenantRepository) CountMenuItems(ctx context.Context, slug string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM MenuItems WHERE pageSlug = ?`, slug).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting menu items: %w", err)
	}
	return count, nil
}

func (r *MySQLTenantRepository) InsertMenuItem(ctx context.Context, slug string, item domain.MenuItem) error {
	query := `
		INSERT INTO MenuItems (pageSlug, title, price, description, imageUrl, category, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		slug, item.Title, item.Price, item.Description, item.ImageURL, item.Category, item.Position,
	)
	if err != nil {
		return fmt.Errorf("inserting menu item: %w", err)
	}
	return nil
}

func (r *MySQLTenantRepository) UpdateMenuItem(ctx context.Context, slug, title string, item domain.MenuItem) error {
	query := `
		UPDATE MenuItems
		SET title = ?, price = ?, description = ?, imageUrl = ?, category = ?
		WHERE pageSlug = ? AND title = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		item.Title, item.Price, item.Description, item.ImageURL, item.Category, slug, title,
	)
	if err != nil {
		return fmt.Errorf("updating menu item: %w", err)
	}
	return requireRow(result, fmt.Sprintf("menu item %q not found", title))
}

func (r *MySQLTenantRepository) DeleteMenuItem(ctx context.Context, slug, title string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM MenuItems WHERE pageSlug = ? AND title = ?`, slug, title)
	if err != nil {
		return fmt.Errorf("deleting menu item: %w", err)
	}
	return requireRow(result, fmt.Sprintf("menu item %q not found", title))
}

// UpdateMenuPositions rewrites the display order of the menu: position i+1
// for the item titled titles[i].
func (r *MySQLTenantRepository) UpdateMenuPositions(ctx context.Context, slug string, titles []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning reorder transaction: %w", err)
	}
	defer tx.Rollback()

	query := `UPDATE MenuItems SET position = ? WHERE pageSlug = ? AND title = ?`
	for i, title := range titles {
		if _, err := tx.ExecContext(ctx, query, i+1, slug, title); err != nil {
			return fmt.Errorf("updating menu position: %w", err)
		}
	}

	return tx.Commit()
}

func (r *MySQLTenantRepository) UpdateProfile(ctx context.Context, slug string, page domain.TenantPage) error {
	query := `
		UPDATE Pages
		SET title = ?, bio = ?, address = ?, whatsapp = ?, pixKey = ?, theme = ?, isOpen = ?
		WHERE slug = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		page.Title, page.Bio, page.Address, page.WhatsApp, page.PixKey, page.Theme, page.IsOpen, slug,
	)
	if err != nil {
		return fmt.Errorf("updating page profile: %w", err)
	}
	return requireRow(result, fmt.Sprintf("page %s not found", slug))
}

// UpdatePlan writes the plan to the account record and its denormalized copy
// on the page record in a single transaction. Entitlement resolution reads
// one snapshot or the other depending on the caller; this write is what keeps
// the two views in agreement.
func (r *MySQLTenantRepository) UpdatePlan(ctx context.Context, accountID string, plan domain.Plan, trialDeadline *time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning plan transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE Accounts SET plan = ?, trialDeadline = ? WHERE id = ?`,
		string(plan), trialDeadline, accountID,
	)
	if err != nil {
		return fmt.Errorf("updating account plan: %w", err)
	}
	if err := requireRow(result, fmt.Sprintf("account %s not found", accountID)); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE Pages SET plan = ?, trialDeadline = ? WHERE accountId = ?`,
		string(plan), trialDeadline, accountID,
	); err != nil {
		return fmt.Errorf("updating page plan: %w", err)
	}

	return tx.Commit()
}

func requireRow(result sql.Result, notFoundMsg string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFoundError(notFoundMsg)
	}
	return nil
}
