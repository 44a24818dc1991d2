package httpapi

import (
	"fmt"
	"mime"
	"net/http"
	"strings"
	"unicode"

	apperrors "github.com/a3tai/mcp-pdf-form-filler/internal/errors"
	"github.com/a3tai/mcp-pdf-form-filler/internal/filler"
	"github.com/labstack/echo/v4"
)

const mimeApplicationPDF = "application/pdf"

type GenerateController struct {
	service *filler.Service
}

func NewGenerateController(service *filler.Service) *GenerateController {
	return &GenerateController{service: service}
}

// GeneratePDF responds with the filled document as an attachment. Nothing is
// written to the response until generation has fully succeeded.
func (c *GenerateController) GeneratePDF(ctx echo.Context) error {
	var req filler.GenerateRequest
	if err := bind(ctx, &req); err != nil {
		return err
	}

	if req.FormID == 0 || req.EntityID == 0 {
		return apperrors.Validation("form_id and entity_id are required")
	}

	result, err := c.service.Generate(ctx.Request().Context(), req)
	if err != nil {
		return err
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, contentDisposition(result.FileName))
	return ctx.Blob(http.StatusOK, mimeApplicationPDF, result.Data)
}

var (
	lineBreakStripper = strings.NewReplacer("\r", "", "\n", "")
	quoteEscaper      = strings.NewReplacer(`\`, `\\`, `"`, `\"`)
)

// contentDisposition quotes an ASCII rendition of fileName and adds the
// RFC 5987 filename* parameter when the name has characters outside ASCII.
func contentDisposition(fileName string) string {
	fileName = lineBreakStripper.Replace(fileName)
	fallback := strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII || !unicode.IsPrint(r) {
			return '_'
		}
		return r
	}, fileName)

	header := fmt.Sprintf(`attachment; filename="%s"`, quoteEscaper.Replace(fallback))
	if fallback == fileName {
		return header
	}

	encoded := mime.FormatMediaType("attachment", map[string]string{"filename": fileName})
	if param, ok := strings.CutPrefix(encoded, "attachment; "); ok {
		header += "; " + param
	}
	return header
}
