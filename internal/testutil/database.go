package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// SetupTestDB opens the integration test database. It expects a MySQL
// instance on localhost:3306 with a 'comanda_test' schema and skips the
// test when none is reachable.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := "root:@tcp(localhost:3306)/comanda_test?parseTime=true"
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.Ping()
	if err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// CleanupTestDB empties every table and closes the connection.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := []string{"OrderItems", "Orders", "Coupons", "MenuItems", "Pages", "Accounts"}
	for _, table := range tables {
		_, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

// SetupTestTables creates the tables the repository tests need.
func SetupTestTables(t *testing.T, db *sql.DB) {
	createAccountsTable := `
	CREATE TABLE IF NOT EXISTS Accounts (
		id VARCHAR(64) NOT NULL PRIMARY KEY,
		email VARCHAR(150) NOT NULL,
		displayName VARCHAR(150) NOT NULL DEFAULT '',
		plan VARCHAR(20) NOT NULL DEFAULT 'free',
		trialDeadline DATETIME NULL,
		pageSlug VARCHAR(100) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT '',
		UNIQUE INDEX idx_email (email),
		INDEX idx_page_slug (pageSlug)
	)`

	createPagesTable := `
	CREATE TABLE IF NOT EXISTS Pages (
		slug VARCHAR(100) NOT NULL PRIMARY KEY,
		accountId VARCHAR(64) NOT NULL,
		title VARCHAR(150) NOT NULL DEFAULT '',
		bio TEXT,
		address VARCHAR(255) NOT NULL DEFAULT '',
		whatsapp VARCHAR(30) NOT NULL DEFAULT '',
		pixKey VARCHAR(150) NOT NULL DEFAULT '',
		theme VARCHAR(50) NOT NULL DEFAULT '',
		isOpen TINYINT(1) NOT NULL DEFAULT 1,
		plan VARCHAR(20) NOT NULL DEFAULT 'free',
		trialDeadline DATETIME NULL,
		INDEX idx_account (accountId)
	)`

	createCouponsTable := `
	CREATE TABLE IF NOT EXISTS Coupons (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		pageSlug VARCHAR(100) NOT NULL,
		code VARCHAR(50) NOT NULL,
		kind VARCHAR(20) NOT NULL,
		value DECIMAL(10,2) NOT NULL,
		active TINYINT(1) NOT NULL DEFAULT 1,
		INDEX idx_page (pageSlug)
	)`

	createMenuItemsTable := `
	CREATE TABLE IF NOT EXISTS MenuItems (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		pageSlug VARCHAR(100) NOT NULL,
		title VARCHAR(150) NOT NULL,
		price DECIMAL(10,2) NOT NULL,
		description TEXT,
		imageUrl VARCHAR(500) NOT NULL DEFAULT '',
		category VARCHAR(100) NOT NULL DEFAULT '',
		position INT NOT NULL DEFAULT 0,
		INDEX idx_page (pageSlug)
	)`

	createOrdersTable := `
	CREATE TABLE IF NOT EXISTS Orders (
		id VARCHAR(64) NOT NULL PRIMARY KEY,
		tenantSlug VARCHAR(100) NOT NULL,
		customerName VARCHAR(150) NOT NULL,
		customerPhone VARCHAR(30) NULL,
		customerRef VARCHAR(150) NULL,
		subtotal DECIMAL(10,2) NOT NULL,
		couponCode VARCHAR(50) NULL,
		discount DECIMAL(10,2) NOT NULL DEFAULT 0.00,
		total DECIMAL(10,2) NOT NULL,
		fulfillmentMode VARCHAR(20) NOT NULL,
		deliveryAddress VARCHAR(500) NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		createdAt DATETIME NOT NULL,
		INDEX idx_tenant (tenantSlug),
		INDEX idx_tenant_created (tenantSlug, createdAt)
	)`

	createOrderItemsTable := `
	CREATE TABLE IF NOT EXISTS OrderItems (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		orderId VARCHAR(64) NOT NULL,
		title VARCHAR(150) NOT NULL,
		unitPrice DECIMAL(10,2) NOT NULL,
		quantity INT NOT NULL DEFAULT 1,
		FOREIGN KEY (orderId) REFERENCES Orders(id) ON DELETE CASCADE,
		INDEX idx_order (orderId)
	)`

	tables := []struct {
		name  string
		query string
	}{
		{"Accounts", createAccountsTable},
		{"Pages", createPagesTable},
		{"Coupons", createCouponsTable},
		{"MenuItems", createMenuItemsTable},
		{"Orders", createOrdersTable},
		{"OrderItems", createOrderItemsTable},
	}

	for _, tbl := range tables {
		_, err := db.Exec(tbl.query)
		if err != nil {
			t.Logf("failed to create table %s: %v", tbl.name, err)
		}
	}
}
