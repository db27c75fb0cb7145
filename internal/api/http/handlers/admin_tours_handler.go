package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/tour-marketplace/internal/api/dto"
	"github.com/spec-kit/tour-marketplace/internal/service"
)

// AdminToursHandler serves the moderation endpoints.
type AdminToursHandler struct {
	products *service.ProductService
}

// NewAdminToursHandler constructs handler.
func NewAdminToursHandler(products *service.ProductService) *AdminToursHandler {
	return &AdminToursHandler{products: products}
}

// List handles GET /admin/tours?status=.
func (h *AdminToursHandler) List(c *fiber.Ctx) error {
	filters, err := productFilters(c)
	if err != nil {
		return err
	}
	products, err := h.products.ListProducts(c.UserContext(), filters)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProductList(products)})
}

// BatchApprove handles POST /admin/tours/batch-approve.
func (h *AdminToursHandler) BatchApprove(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req dto.BatchApproveRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	outcomes, err := h.products.BatchApprove(c.UserContext(), a, req.IDs)
	if err != nil {
		return err
	}
	items := make([]dto.BatchOutcomeResponse, 0, len(outcomes))
	for _, o := range outcomes {
		item := dto.BatchOutcomeResponse{ID: o.ID, OK: o.OK, Code: o.Code, Message: o.Message}
		if o.Product != nil {
			p := dto.NewProductResponse(o.Product)
			item.Product = &p
		}
		items = append(items, item)
	}
	return c.JSON(fiber.Map{"data": items})
}

// Audit handles GET /admin/audit/tours/:id.
func (h *AdminToursHandler) Audit(c *fiber.Ctx) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	product, err := h.products.AuditLookup(c.UserContext(), a, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AuditProductResponse{
		ProductResponse: dto.NewProductResponse(product),
		IsDeleted:       product.IsDeleted,
		DeletedAt:       product.DeletedAt,
	}})
}
