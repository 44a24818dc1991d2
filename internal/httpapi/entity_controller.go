package httpapi

import (
	"net/http"

	"github.com/a3tai/mcp-pdf-form-filler/internal/filler"
	"github.com/a3tai/mcp-pdf-form-filler/internal/model"
	"github.com/labstack/echo/v4"
)

type EntityController struct {
	service *filler.Service
}

func NewEntityController(service *filler.Service) *EntityController {
	return &EntityController{service: service}
}

func (c *EntityController) ListEntities(ctx echo.Context) error {
	entities, err := c.service.ListEntities(ctx.Request().Context())
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, entities)
}

func (c *EntityController) CreateEntity(ctx echo.Context) error {
	var req struct {
		Name          string `json:"name"`
		StreetAddress string `json:"street_address"`
		City          string `json:"city"`
		State         string `json:"state"`
		ZipCode       string `json:"zip_code"`
	}
	if err := bind(ctx, &req); err != nil {
		return err
	}

	entity, err := c.service.CreateEntity(ctx.Request().Context(), &model.Entity{
		Name:          req.Name,
		StreetAddress: req.StreetAddress,
		City:          req.City,
		State:         req.State,
		ZipCode:       req.ZipCode,
	})
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, entity)
}

func (c *EntityController) GetEntity(ctx echo.Context) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}

	entity, err := c.service.GetEntity(ctx.Request().Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, entity)
}

func (c *EntityController) DeleteEntity(ctx echo.Context) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}

	if err := c.service.DeleteEntity(ctx.Request().Context(), id); err != nil {
		return err
	}

	return ctx.NoContent(http.StatusNoContent)
}
