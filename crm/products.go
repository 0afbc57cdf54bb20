// ABOUTME: Product catalog operations
// ABOUTME: Deleting a product strips its line items and revalues affected opportunities
package crm

import (
	"context"
	"strings"

	"github.com/harperreed/medcrm/models"
)

func validateProduct(p *models.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return invalid("name", "product name is required")
	}
	if p.Price < 0 {
		return invalid("price", "must not be negative")
	}
	return nil
}

func (s *Service) AddProduct(ctx context.Context, actor *models.User, product models.Product) (models.Product, error) {
	err := s.mutate(ctx, actor, func(ds *models.Dataset, me *models.User) error {
		if err := validateProduct(&product); err != nil {
			return err
		}
		product.ID = s.ids.New(PrefixProduct)
		ds.Products = prepend(ds.Products, product)
		return nil
	})
	return product, err
}

// UpdateProduct changes the catalog entry only. Line items already on
// opportunities keep the name and price they were added with.
func (s *Service) UpdateProduct(ctx context.Context, actor *models.User, product models.Product) (models.Product, error) {
	err := s.mutate(ctx, actor, func(ds *models.Dataset, me *models.User) error {
		existing, _ := ds.FindProduct(product.ID)
		if existing == nil {
			return notFound("product", product.ID)
		}
		if err := validateProduct(&product); err != nil {
			return err
		}
		*existing = product
		return nil
	})
	return product, err
}

func (s *Service) DeleteProduct(ctx context.Context, actor *models.User, productID string) error {
	return s.mutate(ctx, actor, func(ds *models.Dataset, me *models.User) error {
		return s.deleteProduct(ds, productID)
	})
}

// deleteProduct drops the product from every opportunity, revaluing the
// opportunity and its closing task.
func (s *Service) deleteProduct(ds *models.Dataset, productID string) error {
	if p, _ := ds.FindProduct(productID); p == nil {
		return notFound("product", productID)
	}
	ds.Products = filter(ds.Products, func(p models.Product) bool { return p.ID != productID })

	for i := range ds.Opportunities {
		opp := &ds.Opportunities[i]
		kept := filter(opp.Products, func(p models.OpportunityProduct) bool { return p.ProductID != productID })
		if len(kept) < len(opp.Products) {
			opp.Products = kept
			opp.Value = models.LineTotal(kept)
			s.upsertClosingTask(ds, *opp, false)
		}
	}
	return nil
}
