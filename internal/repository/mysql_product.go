package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/karantec/EcommerceMern/internal/entity"
)

type MySQLProductRepository struct {
	db *sql.DB
}

func NewMySQLProductRepository(db *sql.DB) *MySQLProductRepository {
	return &MySQLProductRepository{db}
}

var _ ProductRepository = (*MySQLProductRepository)(nil)

func (r *MySQLProductRepository) GetProductByID(ctx context.Context, id int) (*entity.Product, error) {
	query := `SELECT id, name, description, image, price, count_in_stock FROM products WHERE id = ?`

	product := &entity.Product{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&product.ID, &product.Name, &product.Description, &product.Image, &product.Price, &product.CountInStock)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return product, nil
}

func (r *MySQLProductRepository) GetProducts(ctx context.Context) ([]entity.Product, error) {
	query := `SELECT id, name, description, image, price, count_in_stock FROM products`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []entity.Product
	for rows.Next() {
		var product entity.Product
		err := rows.Scan(&product.ID, &product.Name, &product.Description, &product.Image, &product.Price, &product.CountInStock)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	return products, rows.Err()
}

func (r *MySQLProductRepository) CreateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	query := `INSERT INTO products (name, description, image, price, count_in_stock) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, product.Name, product.Description, product.Image, product.Price, product.CountInStock)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	product.ID = int(id)
	return product, nil
}

func (r *MySQLProductRepository) UpdateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	query := `UPDATE products SET name = ?, description = ?, image = ?, price = ?, count_in_stock = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, product.Name, product.Description, product.Image, product.Price, product.CountInStock, product.ID)
	if err != nil {
		return nil, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		if _, err := r.GetProductByID(ctx, product.ID); err != nil {
			return nil, err
		}
	}

	return product, nil
}

// DecrementStock is the linearization point for stock reservation: the stock
// check and the decrement happen in one statement, so concurrent checkouts
// for the last unit cannot both succeed.
func (r *MySQLProductRepository) DecrementStock(ctx context.Context, id, qty int) error {
	query := `UPDATE products SET count_in_stock = count_in_stock - ? WHERE id = ? AND count_in_stock >= ?`
	res, err := r.db.ExecContext(ctx, query, qty, id, qty)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		if _, err := r.GetProductByID(ctx, id); err != nil {
			return err
		}
		return ErrConflict
	}

	return nil
}

func (r *MySQLProductRepository) RestoreStock(ctx context.Context, id, qty int) error {
	query := `UPDATE products SET count_in_stock = count_in_stock + ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, qty, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}
