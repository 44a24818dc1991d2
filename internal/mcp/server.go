package mcp

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/a3tai/mcp-pdf-form-filler/internal/config"
	"github.com/a3tai/mcp-pdf-form-filler/internal/descriptions"
	"github.com/a3tai/mcp-pdf-form-filler/internal/filler"
	"github.com/a3tai/mcp-pdf-form-filler/internal/model"
	"github.com/apex/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	service   *filler.Service
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, service *filler.Service) (*Server, error) {
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:    cfg,
		service:   service,
		mcpServer: mcpServer,
	}

	s.registerTools()

	return s, nil
}

func formIDParam() mcp.ToolOption {
	return mcp.WithNumber("form_id", mcp.Required(), mcp.Description("Id of the form template"))
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	tool := func(name string, opts ...mcp.ToolOption) mcp.Tool {
		return mcp.NewTool(name, append([]mcp.ToolOption{mcp.WithDescription(descriptions.GetToolDescription(name))}, opts...)...)
	}

	// Forms
	s.mcpServer.AddTool(tool("list_forms"), s.handleListForms)
	s.mcpServer.AddTool(tool("import_form",
		mcp.WithString("form_name", mcp.Required(), mcp.Description("Unique display name for the template")),
		mcp.WithString("path", mcp.Required(), mcp.Description("PDF file path, relative to the data directory")),
	), s.handleImportForm)
	s.mcpServer.AddTool(tool("delete_form", formIDParam()), s.handleDeleteForm)
	s.mcpServer.AddTool(tool("get_form_fields", formIDParam()), s.handleGetFormFields)

	// Mappings
	s.mcpServer.AddTool(tool("get_mapping", formIDParam()), s.handleGetMapping)
	s.mcpServer.AddTool(tool("save_mapping",
		formIDParam(),
		mcp.WithObject("mappings", mcp.Required(),
			mcp.Description("PDF field name to entity attribute; an empty string leaves the field unfilled")),
	), s.handleSaveMapping)
	s.mcpServer.AddTool(tool("auto_map",
		formIDParam(),
		mcp.WithBoolean("save", mcp.Description("Persist the proposal instead of only returning it")),
	), s.handleAutoMap)
	s.mcpServer.AddTool(tool("mapping_status", formIDParam()), s.handleMappingStatus)
	s.mcpServer.AddTool(tool("test_mapping", formIDParam()), s.handleTestMapping)

	// Generation
	s.mcpServer.AddTool(tool("generate_pdf",
		formIDParam(),
		mcp.WithNumber("entity_id", mcp.Required(), mcp.Description("Id of the entity to fill the form for")),
		mcp.WithString("filename", mcp.Description("Output file name (default: <entity name>_form.pdf)")),
	), s.handleGeneratePDF)

	// Entities
	s.mcpServer.AddTool(tool("list_entities"), s.handleListEntities)
	s.mcpServer.AddTool(tool("create_entity",
		mcp.WithString("name", mcp.Required(), mcp.Description("Organization or person name")),
		mcp.WithString("street_address", mcp.Description("Street address")),
		mcp.WithString("city", mcp.Description("City")),
		mcp.WithString("state", mcp.Description("State or province")),
		mcp.WithString("zip_code", mcp.Description("ZIP or postal code")),
	), s.handleCreateEntity)
	s.mcpServer.AddTool(tool("delete_entity",
		mcp.WithNumber("entity_id", mcp.Required(), mcp.Description("Id of the entity")),
	), s.handleDeleteEntity)

	s.mcpServer.AddTool(tool("server_info"), s.handleServerInfo)
}

// idArgument reads a positive integer id. JSON numbers arrive as float64;
// numeric strings are accepted too.
func idArgument(args map[string]interface{}, key string) (uint, error) {
	raw, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("missing required argument %q", key)
	}

	var id float64
	switch v := raw.(type) {
	case float64:
		id = v
	case int:
		id = float64(v)
	case string:
		parsed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("argument %q must be a positive integer", key)
		}
		id = float64(parsed)
	default:
		return 0, fmt.Errorf("argument %q must be a number", key)
	}

	if id < 1 || id != float64(uint(id)) {
		return 0, fmt.Errorf("argument %q must be a positive integer", key)
	}
	return uint(id), nil
}

func stringArgument(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func toolError(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(err.Error())
}

// Handler functions

func (s *Server) handleListForms(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	forms, err := s.service.ListForms(ctx)
	if err != nil {
		return toolError(err), nil
	}

	return mcp.NewToolResultText(formatForms(forms)), nil
}

func (s *Server) handleImportForm(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("form_name")
	if err != nil {
		return toolError(err), nil
	}
	path, err := request.RequireString("path")
	if err != nil {
		return toolError(err), nil
	}

	form, err := s.service.ImportForm(ctx, filler.ImportFormRequest{FormName: name, Path: path})
	if err != nil {
		return toolError(err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Imported form %q (id %d, %d page(s), %d bytes)",
		form.FormName, form.ID, form.PageCount, form.FileSize)), nil
}

func (s *Server) handleDeleteForm(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	formID, err := idArgument(request.GetArguments(), "form_id")
	if err != nil {
		return toolError(err), nil
	}

	if err := s.service.DeleteForm(ctx, formID); err != nil {
		return toolError(err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Deleted form %d and its mapping", formID)), nil
}

func (s *Server) handleGetFormFields(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	formID, err := idArgument(request.GetArguments(), "form_id")
	if err != nil {
		return toolError(err), nil
	}

	result, err := s.service.GetFormFields(ctx, formID)
	if err != nil {
		return toolError(err), nil
	}

	return mcp.NewToolResultText(formatFields(result)), nil
}

func (s *Server) handleGetMapping(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	formID, err := idArgument(request.GetArguments(), "form_id")
	if err != nil {
		return toolError(err), nil
	}

	result, err := s.service.GetMapping(ctx, formID)
	if err != nil {
		return toolError(err), nil
	}

	return mcp.NewToolResultText(formatMapping(fmt.Sprintf("Mapping for form %d", formID), result.Mappings)), nil
}

func (s *Server) handleSaveMapping(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	formID, err := idArgument(args, "form_id")
	if err != nil {
		return toolError(err), nil
	}

	raw, ok := args["mappings"].(map[string]interface{})
	if !ok {
		return toolError(fmt.Errorf("argument \"mappings\" must be an object")), nil
	}

	mappings := make(map[string]string, len(raw))
	for field, v := range raw {
		attr, ok := v.(string)
		if !ok {
			return toolError(fmt.Errorf("mapping for field %q must be a string", field)), nil
		}
		mappings[field] = attr
	}

	result, err := s.service.SaveMapping(ctx, filler.SaveMappingRequest{FormID: formID, Mappings: mappings})
	if err != nil {
		return toolError(err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Saved %d mapping(s) for form %d", result.Count, result.FormID)), nil
}

func (s *Server) handleAutoMap(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	formID, err := idArgument(args, "form_id")
	if err != nil {
		return toolError(err), nil
	}
	save, _ := args["save"].(bool)

	if save {
		result, err := s.service.AutoMapAndSave(ctx, formID)
		if err != nil {
			return toolError(err), nil
		}
		text := formatAutoMap(result)
		text += fmt.Sprintf("\nSaved %d mapping(s)\n", len(result.Mapping))
		return mcp.NewToolResultText(text), nil
	}

	result, err := s.service.AutoMap(ctx, formID)
	if err != nil {
		return toolError(err), nil
	}

	text := formatAutoMap(result)
	text += "\nProposal not saved; call save_mapping or auto_map with save=true to keep it\n"
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleMappingStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	formID, err := idArgument(request.GetArguments(), "form_id")
	if err != nil {
		return toolError(err), nil
	}

	status, err := s.service.MappingStatus(ctx, formID)
	if err != nil {
		return toolError(err), nil
	}

	if !status.HasMappings {
		return mcp.NewToolResultText(fmt.Sprintf(
			"Form %d has no field mappings; generated PDFs will be blank", formID)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Form %d has %d field mapping(s)", formID, status.Count)), nil
}

func (s *Server) handleTestMapping(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	formID, err := idArgument(request.GetArguments(), "form_id")
	if err != nil {
		return toolError(err), nil
	}

	result, err := s.service.TestMapping(ctx, formID)
	if err != nil {
		return toolError(err), nil
	}

	return mcp.NewToolResultText(formatTestMapping(result)), nil
}

func (s *Server) handleGeneratePDF(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	formID, err := idArgument(args, "form_id")
	if err != nil {
		return toolError(err), nil
	}
	entityID, err := idArgument(args, "entity_id")
	if err != nil {
		return toolError(err), nil
	}

	result, err := s.service.Generate(ctx, filler.GenerateRequest{
		FormID:   formID,
		EntityID: entityID,
		FileName: stringArgument(args, "filename"),
	})
	if err != nil {
		return toolError(err), nil
	}

	path, err := s.service.WriteGenerated(result)
	if err != nil {
		return toolError(err), nil
	}

	text := fmt.Sprintf("Generated %s\nPath: %s\nFields filled: %d\nSize: %d bytes\n",
		result.FileName, path, result.FilledFields, len(result.Data))
	if result.FilledFields == 0 {
		text += "\nWARNING: form has no field mappings; the output is an unfilled copy\n"
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleListEntities(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entities, err := s.service.ListEntities(ctx)
	if err != nil {
		return toolError(err), nil
	}

	return mcp.NewToolResultText(formatEntities(entities)), nil
}

func (s *Server) handleCreateEntity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return toolError(err), nil
	}

	args := request.GetArguments()
	entity, err := s.service.CreateEntity(ctx, &model.Entity{
		Name:          name,
		StreetAddress: stringArgument(args, "street_address"),
		City:          stringArgument(args, "city"),
		State:         stringArgument(args, "state"),
		ZipCode:       stringArgument(args, "zip_code"),
	})
	if err != nil {
		return toolError(err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created entity %q (id %d)", entity.Name, entity.ID)), nil
}

func (s *Server) handleDeleteEntity(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entityID, err := idArgument(request.GetArguments(), "entity_id")
	if err != nil {
		return toolError(err), nil
	}

	if err := s.service.DeleteEntity(ctx, entityID); err != nil {
		return toolError(err), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Deleted entity %d", entityID)), nil
}

func (s *Server) handleServerInfo(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	forms, err := s.service.ListForms(ctx)
	if err != nil {
		return toolError(err), nil
	}
	entities, err := s.service.ListEntities(ctx)
	if err != nil {
		return toolError(err), nil
	}

	text := fmt.Sprintf("%s v%s - Server Information\n", s.config.ServerName, s.config.Version)
	text += fmt.Sprintf("Data Directory: %s\n", s.service.DataDirectory())
	text += fmt.Sprintf("Database: %s\n", s.config.DatabasePath)
	text += fmt.Sprintf("Max File Size: %d MB\n", s.service.MaxFileSize()/(1024*1024))
	text += fmt.Sprintf("Forms: %d\nEntities: %d\n", len(forms), len(entities))

	text += "\nAvailable Tools:\n"
	for _, name := range descriptions.GetAllToolNames() {
		text += fmt.Sprintf("• %s: %s\n", name, descriptions.Summary(name))
	}

	text += "\nTypical workflow: import_form → get_form_fields → auto_map → save_mapping → " +
		"create_entity → test_mapping → generate_pdf\n"

	return mcp.NewToolResultText(text), nil
}

// Formatting functions

func formatForms(forms []filler.FormSummary) string {
	if len(forms) == 0 {
		return "No forms uploaded"
	}

	text := fmt.Sprintf("Found %d form(s):\n", len(forms))
	for _, f := range forms {
		text += fmt.Sprintf("%d. %s (%d page(s), %d bytes, uploaded %s)\n",
			f.ID, f.FormName, f.PageCount, f.FileSize, f.UploadedAt.Format("2006-01-02 15:04"))
	}
	return text
}

func formatFields(result *filler.FormFieldsResult) string {
	text := fmt.Sprintf("Form %d (%s) has %d field(s):\n", result.FormID, result.FormName, len(result.Fields))
	for i, f := range result.Fields {
		text += fmt.Sprintf("%d. %s [%s]", i+1, f.Name, f.Type)
		if f.AlternateName != "" {
			text += fmt.Sprintf(" - %s", f.AlternateName)
		}
		text += "\n"
	}
	return text
}

func formatMapping(title string, m model.Mapping) string {
	if len(m) == 0 {
		return title + ": no fields mapped"
	}

	text := fmt.Sprintf("%s (%d field(s)):\n", title, len(m))
	for _, field := range m.FieldNames() {
		text += fmt.Sprintf("  %s → %s\n", field, m[field])
	}
	return text
}

func formatAutoMap(result *filler.AutoMapResult) string {
	text := fmt.Sprintf("Auto-map proposal for form %d: %d new entries\n", result.FormID, result.Added)
	for _, match := range result.Matches {
		text += fmt.Sprintf("  + %s → %s (rule %s)\n", match.PdfField, match.Attribute, match.Rule)
	}
	text += "\n" + formatMapping("Proposed mapping", result.Mapping)
	if len(result.Unmapped) > 0 {
		text += fmt.Sprintf("\nUnmapped fields (%d):\n", len(result.Unmapped))
		for _, field := range result.Unmapped {
			text += fmt.Sprintf("  %s\n", field)
		}
	}
	return text
}

func formatTestMapping(result *filler.TestMappingResult) string {
	text := fmt.Sprintf("Mapping test for form %d using entity %q (id %d)\n",
		result.FormID, result.EntityUsed.Name, result.EntityUsed.ID)
	text += fmt.Sprintf("Resolved fields: %d (%d with a value)\n", result.ResolvedFieldCount, result.NonEmptyCount)

	fields := make([]string, 0, len(result.Values))
	for field := range result.Values {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		text += fmt.Sprintf("  %s = %q\n", field, result.Values[field])
	}
	return text
}

func formatEntities(entities []model.Entity) string {
	if len(entities) == 0 {
		return "No entities"
	}

	text := fmt.Sprintf("Found %d entities:\n", len(entities))
	for _, e := range entities {
		text += fmt.Sprintf("%d. %s, %s, %s, %s %s\n", e.ID, e.Name, e.StreetAddress, e.City, e.State, e.ZipCode)
	}
	return text
}

// Run serves MCP over standard I/O until the client disconnects
func (s *Server) Run(_ context.Context) error {
	log.WithFields(log.Fields{
		"data_dir": s.service.DataDirectory(),
		"db":       s.config.DatabasePath,
	}).Debug("starting MCP server on stdio")

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
