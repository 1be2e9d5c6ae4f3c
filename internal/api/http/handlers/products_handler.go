package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-api/internal/api/dto"
	"github.com/spec-kit/marketplace-api/internal/auth"
	"github.com/spec-kit/marketplace-api/internal/service"
	apperrors "github.com/spec-kit/marketplace-api/pkg/util"
)

// ProductsHandler exposes catalog endpoints.
type ProductsHandler struct {
	products *service.ProductService
}

// NewProductsHandler constructs handler.
func NewProductsHandler(productService *service.ProductService) *ProductsHandler {
	return &ProductsHandler{products: productService}
}

// List handles GET /products, with optional ?sort=asc|desc or ?userId=.
func (h *ProductsHandler) List(c *fiber.Ctx) error {
	if sort := c.Query("sort"); sort != "" {
		products, err := h.products.ListSorted(c.Context(), sort)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": dto.NewProductListResponse(products)})
	}
	if rawID := c.Query("userId"); rawID != "" {
		userID, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			return apperrors.NewValidationError("userId must be numeric", map[string]any{"userId": rawID})
		}
		products, err := h.products.ListByUser(c.Context(), userID)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": dto.NewProductListResponse(products)})
	}

	products, err := h.products.List(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductListResponse(products)})
}

// Mine handles GET /products/mine.
func (h *ProductsHandler) Mine(c *fiber.Ctx) error {
	sc := auth.SecurityContextFrom(c)
	products, err := h.products.Mine(c.Context(), sc.Username())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductListResponse(products)})
}

// Get handles GET /products/:id.
func (h *ProductsHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	product, err := h.products.Get(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductResponse(product)})
}

// Create handles POST /products.
func (h *ProductsHandler) Create(c *fiber.Ctx) error {
	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	sc := auth.SecurityContextFrom(c)
	product, err := h.products.Create(c.Context(), sc.Identity(), productInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewProductResponse(product)})
}

// Update handles PUT /products/:id.
func (h *ProductsHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	sc := auth.SecurityContextFrom(c)
	product, err := h.products.Update(c.Context(), sc.Identity(), id, productInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductResponse(product)})
}

// AdjustStock handles PATCH /products/:id/stock.
func (h *ProductsHandler) AdjustStock(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.StockRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	sc := auth.SecurityContextFrom(c)
	product, err := h.products.AdjustStock(c.Context(), sc.Identity(), id, req.Quantity)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductResponse(product)})
}

// Delete handles DELETE /products/:id.
func (h *ProductsHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	sc := auth.SecurityContextFrom(c)
	if err := h.products.Delete(c.Context(), sc.Identity(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func productInput(req dto.ProductRequest) service.ProductInput {
	return service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
	}
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("id must be a positive integer", map[string]any{"id": c.Params("id")})
	}
	return id, nil
}
