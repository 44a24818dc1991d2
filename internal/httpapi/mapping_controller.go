package httpapi

import (
	"net/http"

	apperrors "github.com/a3tai/mcp-pdf-form-filler/internal/errors"
	"github.com/a3tai/mcp-pdf-form-filler/internal/filler"
	"github.com/labstack/echo/v4"
)

type MappingController struct {
	service *filler.Service
}

func NewMappingController(service *filler.Service) *MappingController {
	return &MappingController{service: service}
}

func (c *MappingController) GetMapping(ctx echo.Context) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}

	m, err := c.service.GetMapping(ctx.Request().Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, m)
}

// SaveMapping replaces the full mapping set of a form with the request body.
func (c *MappingController) SaveMapping(ctx echo.Context) error {
	var req filler.SaveMappingRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}

	if req.FormID == 0 {
		return apperrors.Validation("form_id is required")
	}

	result, err := c.service.SaveMapping(ctx.Request().Context(), req)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, result)
}

func (c *MappingController) AutoMap(ctx echo.Context) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}

	autoMap := c.service.AutoMap
	if ctx.QueryParam("save") == "true" {
		autoMap = c.service.AutoMapAndSave
	}

	proposal, err := autoMap(ctx.Request().Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, proposal)
}

func (c *MappingController) MappingStatus(ctx echo.Context) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}

	status, err := c.service.MappingStatus(ctx.Request().Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, status)
}

func (c *MappingController) TestMapping(ctx echo.Context) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}

	result, err := c.service.TestMapping(ctx.Request().Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, result)
}
