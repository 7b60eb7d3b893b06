package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"github.com/karantec/EcommerceMern/internal/entity"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// CachedProductRepository layers a redis read cache over another
// ProductRepository. It serves the public catalog endpoints only; pricing and
// stock reservation go to the inner repository directly so checkout never
// acts on a stale price or count.
type CachedProductRepository struct {
	inner ProductRepository
	rdb   *redis.Client
	ttl   time.Duration
}

func NewCachedProductRepository(inner ProductRepository, rdb *redis.Client, ttl time.Duration) *CachedProductRepository {
	return &CachedProductRepository{inner: inner, rdb: rdb, ttl: ttl}
}

var _ ProductRepository = (*CachedProductRepository)(nil)

func (r *CachedProductRepository) GetProductByID(ctx context.Context, id int) (*entity.Product, error) {
	key := fmt.Sprintf("product:%d", id)

	cached, err := r.rdb.Get(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		logger.Error().Err(err).Msgf("Error getting product %d from cache", id)
	}
	if cached != "" {
		product := &entity.Product{}
		if err := json.Unmarshal([]byte(cached), product); err == nil {
			return product, nil
		}
		logger.Error().Msgf("Error unmarshalling cached product %d", id)
	}

	product, err := r.inner.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(product); err == nil {
		if err := r.rdb.Set(ctx, key, data, r.ttl).Err(); err != nil {
			logger.Error().Err(err).Msgf("Error setting product %d in cache", id)
		}
	}

	return product, nil
}

func (r *CachedProductRepository) GetProducts(ctx context.Context) ([]entity.Product, error) {
	return r.inner.GetProducts(ctx)
}

func (r *CachedProductRepository) CreateProduct(ctx context.Context, p *entity.Product) (*entity.Product, error) {
	return r.inner.CreateProduct(ctx, p)
}

func (r *CachedProductRepository) UpdateProduct(ctx context.Context, p *entity.Product) (*entity.Product, error) {
	updated, err := r.inner.UpdateProduct(ctx, p)
	if err != nil {
		return nil, err
	}
	r.invalidate(ctx, p.ID)
	return updated, nil
}

func (r *CachedProductRepository) DecrementStock(ctx context.Context, id, qty int) error {
	err := r.inner.DecrementStock(ctx, id, qty)
	if err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *CachedProductRepository) RestoreStock(ctx context.Context, id, qty int) error {
	err := r.inner.RestoreStock(ctx, id, qty)
	if err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *CachedProductRepository) invalidate(ctx context.Context, id int) {
	key := fmt.Sprintf("product:%d", id)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logger.Error().Err(err).Msgf("Error deleting product %d from cache", id)
	}
}
