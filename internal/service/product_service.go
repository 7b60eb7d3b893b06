package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/karantec/EcommerceMern/internal/entity"
	"github.com/karantec/EcommerceMern/internal/repository"
)

// ProductService fronts the catalog store: public reads plus the thin admin
// CRUD. Stock is never written here; only the order ledger's atomic
// decrement/restore touches it.
type ProductService struct {
	products repository.ProductRepository
}

func NewProductService(products repository.ProductRepository) *ProductService {
	return &ProductService{products: products}
}

func (s *ProductService) GetProduct(ctx context.Context, id int) (*entity.Product, error) {
	product, err := s.products.GetProductByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: product %d", ErrProductNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) GetProducts(ctx context.Context) ([]entity.Product, error) {
	return s.products.GetProducts(ctx)
}

func (s *ProductService) CreateProduct(ctx context.Context, product entity.Product) (*entity.Product, error) {
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	cp := product
	return s.products.CreateProduct(ctx, &cp)
}

func (s *ProductService) UpdateProduct(ctx context.Context, product entity.Product) (*entity.Product, error) {
	if product.ID <= 0 {
		return nil, fmt.Errorf("%w: product id is required", ErrMalformedInput)
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	cp := product
	updated, err := s.products.UpdateProduct(ctx, &cp)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: product %d", ErrProductNotFound, product.ID)
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func validateProduct(product entity.Product) error {
	if product.Name == "" {
		return fmt.Errorf("%w: product name is required", ErrMalformedInput)
	}
	if product.Price < 0 {
		return fmt.Errorf("%w: product price must not be negative", ErrMalformedInput)
	}
	if product.CountInStock < 0 {
		return fmt.Errorf("%w: product stock must not be negative", ErrMalformedInput)
	}
	return nil
}
