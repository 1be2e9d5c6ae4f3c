package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/marketplace-api/internal/auth"
	"github.com/spec-kit/marketplace-api/internal/domain"
	"github.com/spec-kit/marketplace-api/internal/events"
	"github.com/spec-kit/marketplace-api/internal/persistence"
	"github.com/spec-kit/marketplace-api/internal/repository"
	apperrors "github.com/spec-kit/marketplace-api/pkg/util"
)

// ProductService coordinates catalog workflows. Ownership rules are enforced
// here, after the resource is loaded; route rules only gate by role.
type ProductService struct {
	products   repository.ProductRepository
	users      repository.UserRepository
	cache      *persistence.ProductCache
	dispatcher events.Dispatcher
}

// ProductDependencies bundles collaborators for the product service.
type ProductDependencies struct {
	ProductRepo repository.ProductRepository
	UserRepo    repository.UserRepository
	Cache       *persistence.ProductCache
	Dispatcher  events.Dispatcher
}

// ProductInput describes create/update payloads.
type ProductInput struct {
	Name        string
	Description string
	Price       float64
	Quantity    int
}

// NewProductService constructs the service.
func NewProductService(deps ProductDependencies) *ProductService {
	return &ProductService{
		products:   deps.ProductRepo,
		users:      deps.UserRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
	}
}

// List returns all products, served from cache when possible.
func (s *ProductService) List(ctx context.Context) ([]domain.Product, error) {
	if products, ok := s.cache.GetList(ctx); ok {
		return products, nil
	}
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetList(ctx, products)
	return products, nil
}

// ListSorted returns products ordered by price.
func (s *ProductService) ListSorted(ctx context.Context, sort string) ([]domain.Product, error) {
	switch strings.ToLower(sort) {
	case "asc":
		return s.products.ListSortedByPrice(ctx, true)
	case "desc":
		return s.products.ListSortedByPrice(ctx, false)
	default:
		return nil, apperrors.NewValidationError("sort must be 'asc' or 'desc'", map[string]any{"sort": sort})
	}
}

// ListByUser returns products created by the given seller or admin.
func (s *ProductService) ListByUser(ctx context.Context, userID int64) ([]domain.Product, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.Role.CanSell() {
		return nil, apperrors.NewValidationError("user cannot own products", map[string]any{"userId": userID})
	}
	return s.products.ListByOwnerID(ctx, user.ID)
}

// Mine returns the caller's own products.
func (s *ProductService) Mine(ctx context.Context, username string) ([]domain.Product, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.products.ListByOwnerID(ctx, user.ID)
}

// Get returns one product by id.
func (s *ProductService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	if product, ok := s.cache.GetProduct(ctx, id); ok {
		return product, nil
	}
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.SetProduct(ctx, product)
	return product, nil
}

// Create stores a new product owned by the caller.
func (s *ProductService) Create(ctx context.Context, caller *domain.Identity, input ProductInput) (*domain.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(ctx, caller.Username)
	if err != nil {
		return nil, err
	}
	if !user.Role.CanSell() {
		return nil, apperrors.NewForbidden("not permitted")
	}

	product := &domain.Product{
		Name:              input.Name,
		Description:       input.Description,
		Price:             input.Price,
		Quantity:          input.Quantity,
		CreatedByID:       user.ID,
		CreatedByUsername: user.Username,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}

	s.cache.InvalidateProduct(ctx, product.ID)
	s.publish(ctx, events.EventProductCreated, caller, product)
	return product, nil
}

// Update modifies a product after the ownership check passes.
func (s *ProductService) Update(ctx context.Context, caller *domain.Identity, id int64, input ProductInput) (*domain.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.AuthorizeOwnership(ownershipClaim(caller, product)); err != nil {
		return nil, err
	}

	product.Name = input.Name
	product.Description = input.Description
	product.Price = input.Price
	product.Quantity = input.Quantity
	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}

	s.cache.InvalidateProduct(ctx, product.ID)
	s.publish(ctx, events.EventProductUpdated, caller, product)
	return product, nil
}

// AdjustStock applies a quantity delta after the ownership check passes.
func (s *ProductService) AdjustStock(ctx context.Context, caller *domain.Identity, id int64, delta int) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.AuthorizeOwnership(ownershipClaim(caller, product)); err != nil {
		return nil, err
	}

	next := product.Quantity + delta
	if next < 0 {
		return nil, apperrors.NewValidationError("stock cannot go negative", map[string]any{
			"quantity": product.Quantity,
			"delta":    delta,
		})
	}
	product.Quantity = next
	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}

	s.cache.InvalidateProduct(ctx, product.ID)
	s.publish(ctx, events.EventProductUpdated, caller, product)
	return product, nil
}

// Delete removes a product after the ownership check passes.
func (s *ProductService) Delete(ctx context.Context, caller *domain.Identity, id int64) error {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.AuthorizeOwnership(ownershipClaim(caller, product)); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.InvalidateProduct(ctx, id)
	s.publish(ctx, events.EventProductDeleted, caller, product)
	return nil
}

func ownershipClaim(caller *domain.Identity, product *domain.Product) auth.OwnershipClaim {
	return auth.OwnershipClaim{
		ResourceOwner: product.CreatedByUsername,
		Caller:        caller.Username,
		CallerRole:    caller.Role,
	}
}

func validateProductInput(input ProductInput) error {
	details := map[string]any{}
	if input.Name == "" {
		details["name"] = "required"
	}
	if input.Price < 0 {
		details["price"] = "must not be negative"
	}
	if input.Quantity < 0 {
		details["quantity"] = "must not be negative"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid product payload", details)
	}
	return nil
}

func (s *ProductService) publish(ctx context.Context, eventType events.EventType, caller *domain.Identity, product *domain.Product) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     events.Actor{Username: caller.Username, Role: caller.Role},
		Timestamp: time.Now(),
		Payload:   events.ProductPayload{ProductID: product.ID, Name: product.Name},
	})
}
