package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/karantec/EcommerceMern/internal/entity"
	"github.com/karantec/EcommerceMern/internal/repository"
)

// PricingPolicy holds the shipping and tax constants. They are configuration,
// not domain logic, and come in through the environment.
type PricingPolicy struct {
	ShippingFee     float64 // flat rate below the free-shipping threshold
	FreeShippingMin float64 // items subtotal above which shipping is free
	TaxRate         float64 // fraction of the items subtotal, e.g. 0.15
}

// OrderTotals is the authoritative server-side price breakdown for a cart.
type OrderTotals struct {
	Items         []entity.OrderItem
	ItemsPrice    float64
	ShippingPrice float64
	TaxPrice      float64
	TotalPrice    float64
}

// PricingEngine recomputes totals from the catalog. It never trusts a
// client-submitted price and has no side effects.
type PricingEngine struct {
	products repository.ProductRepository
	policy   PricingPolicy
}

func NewPricingEngine(products repository.ProductRepository, policy PricingPolicy) *PricingEngine {
	return &PricingEngine{products: products, policy: policy}
}

// ComputeOrderTotals prices the requested lines against the current catalog.
// Stock is checked here but not reserved; the order service does the atomic
// decrement afterwards.
func (e *PricingEngine) ComputeOrderTotals(ctx context.Context, lines []entity.OrderLine) (*OrderTotals, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: order has no items", ErrMalformedInput)
	}

	items := make([]entity.OrderItem, 0, len(lines))
	itemsPrice := decimal.Zero

	for _, line := range lines {
		if line.Qty < 1 {
			return nil, fmt.Errorf("%w: product %d qty %d", ErrInvalidQuantity, line.ProductID, line.Qty)
		}

		product, err := e.products.GetProductByID(ctx, line.ProductID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrProductNotFound, line.ProductID)
		}
		if err != nil {
			return nil, err
		}

		if line.Qty > product.CountInStock {
			return nil, fmt.Errorf("%w: product %d has %d in stock, requested %d",
				ErrInsufficientStock, product.ID, product.CountInStock, line.Qty)
		}

		price := decimal.NewFromFloat(product.Price)
		itemsPrice = itemsPrice.Add(price.Mul(decimal.NewFromInt(int64(line.Qty))))

		items = append(items, entity.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Image:     product.Image,
			Price:     product.Price,
			Qty:       line.Qty,
		})
	}

	// decimal.Round is round-half-away-from-zero, which is round-half-up
	// for the non-negative amounts we deal with.
	itemsPrice = itemsPrice.Round(2)

	shipping := decimal.NewFromFloat(e.policy.ShippingFee)
	if itemsPrice.GreaterThan(decimal.NewFromFloat(e.policy.FreeShippingMin)) {
		shipping = decimal.Zero
	}

	tax := itemsPrice.Mul(decimal.NewFromFloat(e.policy.TaxRate)).Round(2)
	total := itemsPrice.Add(shipping).Add(tax).Round(2)

	return &OrderTotals{
		Items:         items,
		ItemsPrice:    itemsPrice.InexactFloat64(),
		ShippingPrice: shipping.InexactFloat64(),
		TaxPrice:      tax.InexactFloat64(),
		TotalPrice:    total.InexactFloat64(),
	}, nil
}

// MinorUnits converts a price to the currency's minor unit (paise for INR).
func MinorUnits(price float64) int64 {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
