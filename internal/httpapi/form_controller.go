package httpapi

import (
	"io"
	"net/http"

	apperrors "github.com/a3tai/mcp-pdf-form-filler/internal/errors"
	"github.com/a3tai/mcp-pdf-form-filler/internal/filler"
	"github.com/labstack/echo/v4"
)

type FormController struct {
	service *filler.Service
}

func NewFormController(service *filler.Service) *FormController {
	return &FormController{service: service}
}

func (c *FormController) ListForms(ctx echo.Context) error {
	forms, err := c.service.ListForms(ctx.Request().Context())
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, forms)
}

// UploadForm accepts a multipart body with a "file" part and a "form_name" value.
func (c *FormController) UploadForm(ctx echo.Context) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return apperrors.Validation("no file provided")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	// One byte past the limit is enough for the validator to reject it.
	data, err := io.ReadAll(io.LimitReader(f, c.service.MaxFileSize()+1))
	if err != nil {
		return err
	}

	form, err := c.service.UploadForm(ctx.Request().Context(), filler.UploadFormRequest{
		FormName: ctx.FormValue("form_name"),
		Data:     data,
	})
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, form)
}

func (c *FormController) DeleteForm(ctx echo.Context) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}

	if err := c.service.DeleteForm(ctx.Request().Context(), id); err != nil {
		return err
	}

	return ctx.NoContent(http.StatusNoContent)
}

func (c *FormController) GetFormFields(ctx echo.Context) error {
	id, err := idParam(ctx)
	if err != nil {
		return err
	}

	fields, err := c.service.GetFormFields(ctx.Request().Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, fields)
}
