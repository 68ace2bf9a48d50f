package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/shashiranjanraj/stockroom/app/models"
	"github.com/shashiranjanraj/stockroom/app/services"
	"github.com/shashiranjanraj/stockroom/pkg/ctx"
)

type InventoryController struct {
	service *services.InventoryService
}

func NewInventoryController(service *services.InventoryService) *InventoryController {
	return &InventoryController{service: service}
}

// Index handles GET /api/inventory.
func (ic *InventoryController) Index(c *ctx.Context) {
	products, err := ic.service.List(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(products)
}

// Show handles GET /api/inventory/{id}.
func (ic *InventoryController) Show(c *ctx.Context) {
	id, err := c.ParamUint("id")
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return
	}

	p, err := ic.service.GetByID(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(p)
}

// ShowByName handles GET /api/inventory/byname/{name}.
func (ic *InventoryController) ShowByName(c *ctx.Context) {
	p, err := ic.service.GetByName(c.Context(), c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(p)
}

// Store handles POST /api/inventory. Expects a multipart form with name,
// price, qty and an image file.
func (ic *InventoryController) Store(c *ctx.Context) {
	in, file, err := parseForm(c)
	if err != nil {
		c.Error(http.StatusBadRequest, "Invalid request payload.")
		return
	}
	if file != nil {
		defer file.Close()
	}

	p, err := ic.service.Create(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(p)
}

// Update handles PUT /api/inventory/{id}. The image file is optional; when
// absent the stored image is kept.
func (ic *InventoryController) Update(c *ctx.Context) {
	id, err := c.ParamUint("id")
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return
	}

	in, file, err := parseForm(c)
	if err != nil {
		c.Error(http.StatusBadRequest, "Invalid request payload.")
		return
	}
	if file != nil {
		defer file.Close()
	}

	if _, err := ic.service.Update(c.Context(), id, services.UpdateInput(in)); err != nil {
		fail(c, err)
		return
	}
	c.NoContent()
}

// Destroy handles DELETE /api/inventory/{id}.
func (ic *InventoryController) Destroy(c *ctx.Context) {
	id, err := c.ParamUint("id")
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return
	}

	if err := ic.service.Delete(c.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.NoContent()
}

// AdjustQty handles PATCH /api/inventory/{id}/adjust-qty?delta=N.
func (ic *InventoryController) AdjustQty(c *ctx.Context) {
	id, err := c.ParamUint("id")
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return
	}

	delta, err := strconv.Atoi(c.Query("delta"))
	if err != nil {
		c.Error(http.StatusBadRequest, "delta must be an integer")
		return
	}

	p, err := ic.service.AdjustQuantity(c.Context(), id, delta)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(map[string]any{
		"id":     p.ID,
		"name":   p.Name,
		"qty":    p.Qty,
		"status": p.Status,
	})
}

// parseForm reads the multipart form fields shared by Store and Update.
// A missing image file is not an error here; Create enforces it, Update
// treats it as "keep the current image".
func parseForm(c *ctx.Context) (services.CreateInput, multipart.File, error) {
	price, err := strconv.ParseFloat(c.PostForm("price"), 64)
	if err != nil {
		return services.CreateInput{}, nil, err
	}
	qty, err := strconv.Atoi(c.PostForm("qty"))
	if err != nil {
		return services.CreateInput{}, nil, err
	}

	in := services.CreateInput{
		Name:  c.PostForm("name"),
		Price: price,
		Qty:   qty,
	}

	file, header, err := c.FormFile("image")
	if err == http.ErrMissingFile {
		return in, nil, nil
	}
	if err != nil {
		return services.CreateInput{}, nil, err
	}

	in.ImageName = header.Filename
	in.Image = file
	return in, file, nil
}

// fail translates domain errors into HTTP status codes.
func fail(c *ctx.Context, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		c.NotFound()
	case errors.Is(err, models.ErrNameTaken):
		c.Error(http.StatusConflict, "Product with this name already exists.")
	case errors.Is(err, models.ErrImageRequired):
		c.Error(http.StatusBadRequest, "Image file is required.")
	case errors.Is(err, models.ErrInsufficientStock):
		c.Error(http.StatusBadRequest, "Insufficient stock.")
	case errors.Is(err, models.ErrInvalidInput):
		c.Error(http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrMediaStore):
		c.Error(http.StatusBadGateway, "Media store unavailable.")
	default:
		c.Error(http.StatusInternalServerError, "Internal server error")
	}
}
