package migrations

import (
	"database/sql"
	"time"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL,
		image VARCHAR(512) NOT NULL DEFAULT '',
		price DECIMAL(10,2) NOT NULL,
		count_in_stock INT NOT NULL DEFAULT 0
	);`,
	`CREATE TABLE IF NOT EXISTS users (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) NOT NULL UNIQUE,
		password VARCHAR(100) NOT NULL,
		is_admin TINYINT(1) NOT NULL DEFAULT 0
	);`,
	`CREATE TABLE IF NOT EXISTS orders (
		id INT AUTO_INCREMENT PRIMARY KEY,
		user_id INT NOT NULL,
		payment_method VARCHAR(50) NOT NULL,
		payment_order_id VARCHAR(64) NULL UNIQUE,
		items_price DECIMAL(10,2) NOT NULL,
		shipping_price DECIMAL(10,2) NOT NULL,
		tax_price DECIMAL(10,2) NOT NULL,
		total_price DECIMAL(10,2) NOT NULL,
		status VARCHAR(20) NOT NULL,
		is_paid TINYINT(1) NOT NULL DEFAULT 0,
		paid_at DATETIME NULL,
		payment_id VARCHAR(64) NULL,
		payment_status VARCHAR(32) NULL,
		payment_update_time VARCHAR(40) NULL,
		payer_email VARCHAR(255) NULL,
		is_delivered TINYINT(1) NOT NULL DEFAULT 0,
		delivered_at DATETIME NULL,
		ship_address VARCHAR(255) NOT NULL,
		ship_city VARCHAR(100) NOT NULL,
		ship_postal_code VARCHAR(20) NOT NULL,
		ship_country VARCHAR(100) NOT NULL,
		idempotency_key VARCHAR(255) NULL,
		created_at DATETIME NOT NULL,
		INDEX idx_orders_user (user_id),
		INDEX idx_orders_expiry (is_paid, status, created_at)
	);`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id INT AUTO_INCREMENT PRIMARY KEY,
		order_id INT NOT NULL,
		product_id INT NOT NULL,
		name VARCHAR(255) NOT NULL,
		image VARCHAR(512) NOT NULL DEFAULT '',
		price DECIMAL(10,2) NOT NULL,
		qty INT NOT NULL,
		FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
	);`,
}

// AutoMigrate creates the schema if it does not exist yet.
func AutoMigrate(retries int, db *sql.DB) error {
	for _, query := range statements {
		_, err := db.Exec(query)
		if err != nil {
			for i := 0; i < retries; i++ {
				time.Sleep(1 * time.Second)
				_, err = db.Exec(query)
				if err == nil {
					break
				}
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}
