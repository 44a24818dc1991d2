package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/a3tai/mcp-pdf-form-filler/internal/filler"
	"github.com/apex/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Server is the REST transport used in server mode
type Server struct {
	e       *echo.Echo
	address string
}

// NewServer builds the echo instance and registers every route
func NewServer(service *filler.Service, address string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler
	e.Use(middleware.Recover())
	e.Use(requestLogger())

	setupRoutes(e, service)

	return &Server{
		e:       e,
		address: address,
	}
}

func setupRoutes(e *echo.Echo, service *filler.Service) {
	e.GET("/", health)

	g := e.Group("/api")

	formController := NewFormController(service)
	g.GET("/forms", formController.ListForms)
	g.POST("/forms/upload", formController.UploadForm)
	g.DELETE("/forms/:id", formController.DeleteForm)
	g.GET("/forms/:id/fields", formController.GetFormFields)

	mappingController := NewMappingController(service)
	g.GET("/mappings/form/:id", mappingController.GetMapping)
	g.POST("/mappings", mappingController.SaveMapping)
	g.POST("/mappings/form/:id/auto", mappingController.AutoMap)
	g.GET("/mappings/form/:id/status", mappingController.MappingStatus)
	g.GET("/mappings/form/:id/test", mappingController.TestMapping)

	generateController := NewGenerateController(service)
	g.POST("/generate-pdf", generateController.GeneratePDF)

	entityController := NewEntityController(service)
	g.GET("/entities", entityController.ListEntities)
	g.POST("/entities", entityController.CreateEntity)
	g.GET("/entities/:id", entityController.GetEntity)
	g.DELETE("/entities/:id", entityController.DeleteEntity)
}

// ServeHTTP lets the server be driven directly by httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.e.ServeHTTP(w, r)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Infof("HTTP server listening on %s", s.address)
		errCh <- s.e.Start(s.address)
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down HTTP server")
		return s.e.Shutdown(shutdownCtx)
	}
}

func health(c echo.Context) error {
	return c.String(http.StatusOK, "PDF form filler is running")
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := log.WithFields(log.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency.String(),
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request failed")
				return nil
			}
			entry.Debug("request")
			return nil
		},
	})
}
