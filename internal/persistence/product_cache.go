package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/marketplace-api/internal/domain"
)

const productCacheTTL = 60 * time.Second

// ProductCache caches product reads in Redis. A nil receiver or missing
// client degrades to cache misses so the service works without Redis.
type ProductCache struct {
	client *redis.Client
}

// NewProductCache builds a cache on top of the shared Redis wrapper.
func NewProductCache(r *Redis) *ProductCache {
	if r == nil || r.Client == nil {
		return nil
	}
	return &ProductCache{client: r.Client}
}

// GetProduct returns a cached product or (nil, false).
func (c *ProductCache) GetProduct(ctx context.Context, id int64) (*domain.Product, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, productKey(id)).Bytes()
	if err != nil {
		return nil, false
	}
	var product domain.Product
	if err := json.Unmarshal(raw, &product); err != nil {
		return nil, false
	}
	return &product, true
}

// SetProduct stores a product with a short TTL.
func (c *ProductCache) SetProduct(ctx context.Context, product *domain.Product) {
	if c == nil || product == nil {
		return
	}
	raw, err := json.Marshal(product)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, productKey(product.ID), raw, productCacheTTL).Err()
}

// InvalidateProduct removes a product entry after a mutation, along with the
// full listing.
func (c *ProductCache) InvalidateProduct(ctx context.Context, id int64) {
	if c == nil {
		return
	}
	_ = c.client.Del(ctx, productKey(id), productListKey).Err()
}

// GetList returns the cached full product listing or (nil, false).
func (c *ProductCache) GetList(ctx context.Context) ([]domain.Product, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, productListKey).Bytes()
	if err != nil {
		return nil, false
	}
	var products []domain.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, false
	}
	return products, true
}

// SetList stores the full product listing with a short TTL.
func (c *ProductCache) SetList(ctx context.Context, products []domain.Product) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(products)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, productListKey, raw, productCacheTTL).Err()
}

const productListKey = "products:all"

func productKey(id int64) string {
	return fmt.Sprintf("product:%d", id)
}
