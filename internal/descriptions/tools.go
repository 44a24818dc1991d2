package descriptions

import "sort"

// Tool descriptions shown to MCP clients, with examples of typical use.

const (
	// Forms
	ListFormsDescription = `List every uploaded PDF form template.

**When to use:** Find the id of a form before reading its fields, editing its mapping or generating it.

**Returns:** id, form_name, file_size, page_count and uploaded_at for each template, in upload order.`

	ImportFormDescription = `Import a fillable PDF from the data directory as a new form template.

**When to use:** A blank form (W-9, vendor registration, permit application) has been placed in the data directory and should become available for mapping.

**Examples:**
• "Import w9.pdf as 'W-9'"
• "Add forms/vendor-setup.pdf under the name 'Vendor Setup'"

**Rules:** form_name must be unique. The file must be a readable PDF no larger than the configured maximum size. Paths are resolved inside the data directory; anything outside it is rejected.`

	DeleteFormDescription = `Delete a form template together with its field mapping.

**When to use:** A template is obsolete or was imported by mistake. Entities are not affected.`

	GetFormFieldsDescription = `List the fillable fields of a form template.

**Returns:** each field's fully qualified name (dotted for nested fields), its tooltip (alternate name) when present, and its type (text, checkbox, radio, choice, signature).

**Common workflows:**
1. get_form_fields → save_mapping with the names returned
2. get_form_fields → auto_map → review → save_mapping`

	// Mappings
	GetMappingDescription = `Show the stored field mapping of a form: PDF field name → entity attribute.

**Entity attributes:** name, street_address, city, state, zip_code.`

	SaveMappingDescription = `Replace the whole field mapping of a form.

**Arguments:** form_id and mappings, an object of PDF field name → entity attribute (name, street_address, city, state, zip_code). An empty string means "do not fill" and removes the field from the mapping.

**Rules:** The save is all-or-nothing. If any attribute is not recognized nothing is changed. Fields omitted from mappings are no longer filled.

**Example:**
{"form_id": 1, "mappings": {"full_name": "name", "addr_line1": "street_address", "address.city": "city"}}`

	AutoMapDescription = `Propose mapping entries for a form's unmapped fields by matching field names and tooltips.

**How it works:** Each unmapped field is compared against an ordered rule table (name, then street address, city, state, zip code). The first matching rule wins. Fields that already have an entry are never changed, and running it again proposes nothing new.

**Arguments:** form_id, and save=true to persist the proposal immediately. By default the proposal is only returned for review.`

	MappingStatusDescription = `Report whether a form has any field mapping and how many entries it has.

**When to use:** Before generating, to warn that the output would be blank. Generation is never blocked by this check.`

	TestMappingDescription = `Dry-run a form's mapping against the oldest stored entity and report the values that would be filled.

**Returns:** the entity used, the number of resolved fields, how many are non-empty, and each field's value. No PDF is produced. Fails when no entities exist.`

	// Generation
	GeneratePDFDescription = `Fill a form for an entity and write the resulting PDF into the data directory.

**Arguments:** form_id, entity_id, optional filename (defaults to "<entity name>_form.pdf"). The file name is made filesystem safe before writing.

**Notes:** Fields without a mapping stay blank. A form with no mapping at all produces an unfilled copy; check mapping_status first.`

	// Entities
	ListEntitiesDescription = `List all entities (organizations or people) available for filling forms, oldest first.`

	CreateEntityDescription = `Create an entity whose attributes can be filled into forms.

**Arguments:** name (required), street_address, city, state, zip_code.`

	DeleteEntityDescription = `Delete an entity by id.`

	ServerInfoDescription = `Show server configuration and the available tools.

**Returns:** server name and version, data directory, database file, maximum template size, form and entity counts, and a short description of every tool.`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"list_forms":      ListFormsDescription,
	"import_form":     ImportFormDescription,
	"delete_form":     DeleteFormDescription,
	"get_form_fields": GetFormFieldsDescription,
	"get_mapping":     GetMappingDescription,
	"save_mapping":    SaveMappingDescription,
	"auto_map":        AutoMapDescription,
	"mapping_status":  MappingStatusDescription,
	"test_mapping":    TestMappingDescription,
	"generate_pdf":    GeneratePDFDescription,
	"list_entities":   ListEntitiesDescription,
	"create_entity":   CreateEntityDescription,
	"delete_entity":   DeleteEntityDescription,
	"server_info":     ServerInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns the names of all tools in alphabetical order
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Summary returns the first line of a tool's description.
func Summary(toolName string) string {
	desc := GetToolDescription(toolName)
	for i, r := range desc {
		if r == '\n' {
			return desc[:i]
		}
	}
	return desc
}
