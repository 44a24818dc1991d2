package pdf

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/a3tai/mcp-pdf-form-filler/internal/model"
	"github.com/apex/log"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// FieldType values reported in FieldDescriptor.Type
const (
	FieldTypeText      = "text"
	FieldTypeCheckbox  = "checkbox"
	FieldTypeRadio     = "radio"
	FieldTypeButton    = "button"
	FieldTypeChoice    = "choice"
	FieldTypeSignature = "signature"
	FieldTypeUnknown   = "unknown"
)

// maxFieldDepth bounds the Kids recursion for malformed field trees.
const maxFieldDepth = 32

// FieldExtractor lists the fillable fields of a template using pdfcpu.
type FieldExtractor struct {
	debugMode bool
}

// NewFieldExtractor creates a new field extractor using pdfcpu
func NewFieldExtractor(debugMode bool) *FieldExtractor {
	return &FieldExtractor{
		debugMode: debugMode,
	}
}

// ExtractFields returns the descriptors of all terminal AcroForm fields in
// document order. Identical input always yields the identical list.
func (fe *FieldExtractor) ExtractFields(data []byte) ([]model.FieldDescriptor, error) {
	return fe.ExtractFromReader(bytes.NewReader(data))
}

// ExtractFromFile extracts field descriptors from a PDF file on disk
func (fe *FieldExtractor) ExtractFromFile(filePath string) ([]model.FieldDescriptor, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF file: %w", err)
	}
	defer file.Close()

	return fe.ExtractFromReader(file)
}

// ExtractFromReader extracts field descriptors from an io.ReadSeeker
func (fe *FieldExtractor) ExtractFromReader(reader io.ReadSeeker) ([]model.FieldDescriptor, error) {
	ctx, err := api.ReadContext(reader, relaxedConfiguration())
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to ensure page count: %w", err)
	}

	return fe.extractFromContext(ctx)
}

func (fe *FieldExtractor) extractFromContext(ctx *pdfmodel.Context) ([]model.FieldDescriptor, error) {
	fields := []model.FieldDescriptor{}

	rootDict, err := ctx.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog: %w", err)
	}

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		fe.debugf("No AcroForm dictionary found in document")
		return fields, nil
	}

	acroFormDict, err := ctx.DereferenceDict(acroFormObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference AcroForm: %w", err)
	}
	if acroFormDict == nil {
		return fields, nil
	}

	fieldsObj, found := acroFormDict.Find("Fields")
	if !found {
		fe.debugf("No Fields array found in AcroForm")
		return fields, nil
	}

	fieldsArray, err := ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return nil, fmt.Errorf("failed to dereference Fields array: %w", err)
	}

	w := &fieldWalker{ctx: ctx, seen: map[string]bool{}, extractor: fe}
	for i, fieldRef := range fieldsArray {
		if err := w.walk(fieldRef, "", "", 0); err != nil {
			fe.debugf("Error processing field %d: %v", i, err)
		}
	}

	return w.fields, nil
}

type fieldWalker struct {
	ctx       *pdfmodel.Context
	fields    []model.FieldDescriptor
	seen      map[string]bool
	extractor *FieldExtractor
}

// walk visits one node of the field tree. Partial names (T) are joined with
// "." into the fully qualified name; FT is inherited from ancestors. A node is
// terminal when it has no named kids or carries FT itself; only terminal
// nodes produce a descriptor, named the way pdfcpu fills them.
func (w *fieldWalker) walk(obj types.Object, parentName, parentType string, depth int) error {
	if depth > maxFieldDepth {
		return fmt.Errorf("field tree deeper than %d levels", maxFieldDepth)
	}

	fieldDict, err := w.ctx.DereferenceDict(obj)
	if err != nil {
		return fmt.Errorf("failed to dereference field: %w", err)
	}
	if fieldDict == nil {
		return nil
	}

	partial := w.stringEntry(fieldDict, "T")
	if partial == "" {
		// A pure widget annotation; its field is the parent.
		return nil
	}

	fullName := partial
	if parentName != "" {
		fullName = parentName + "." + partial
	}

	ownType := w.fieldType(fieldDict)
	fieldType := ownType
	if fieldType == "" {
		fieldType = parentType
	}

	kids := w.namedKids(fieldDict)
	if len(kids) > 0 && ownType == "" {
		for _, kid := range kids {
			if err := w.walk(kid, fullName, fieldType, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	if w.seen[fullName] {
		return nil
	}
	w.seen[fullName] = true

	if fieldType == "" {
		fieldType = FieldTypeUnknown
	}

	descriptor := model.FieldDescriptor{
		Name:          fullName,
		AlternateName: w.stringEntry(fieldDict, "TU"),
		Type:          fieldType,
	}
	w.fields = append(w.fields, descriptor)

	w.extractor.debugf("Extracted field: %s (type: %s)", descriptor.Name, descriptor.Type)
	return nil
}

// namedKids returns the Kids entries that are fields themselves (carry a T).
func (w *fieldWalker) namedKids(fieldDict types.Dict) []types.Object {
	kidsObj, found := fieldDict.Find("Kids")
	if !found {
		return nil
	}

	kidsArray, err := w.ctx.DereferenceArray(kidsObj)
	if err != nil {
		return nil
	}

	var named []types.Object
	for _, kid := range kidsArray {
		kidDict, err := w.ctx.DereferenceDict(kid)
		if err != nil || kidDict == nil {
			continue
		}
		if _, hasName := kidDict.Find("T"); hasName {
			named = append(named, kid)
		}
	}
	return named
}

func (w *fieldWalker) stringEntry(dict types.Dict, key string) string {
	obj, found := dict.Find(key)
	if !found {
		return ""
	}
	s, err := w.ctx.DereferenceStringOrHexLiteral(obj, pdfmodel.V10, nil)
	if err != nil {
		return ""
	}
	return s
}

// fieldType maps the FT entry of dict; "" means the entry is absent.
func (w *fieldWalker) fieldType(dict types.Dict) string {
	ftObj, found := dict.Find("FT")
	if !found {
		return ""
	}

	ftName, err := w.ctx.DereferenceName(ftObj, pdfmodel.V10, nil)
	if err != nil {
		return FieldTypeUnknown
	}

	switch ftName {
	case "Tx":
		return FieldTypeText
	case "Btn":
		if flagsObj, found := dict.Find("Ff"); found {
			if flags, err := w.ctx.DereferenceInteger(flagsObj); err == nil && flags != nil {
				flagValue := *flags
				if (flagValue & (1 << 15)) != 0 { // Bit 16: Radio
					return FieldTypeRadio
				} else if (flagValue & (1 << 16)) != 0 { // Bit 17: Pushbutton
					return FieldTypeButton
				}
			}
		}
		return FieldTypeCheckbox
	case "Ch":
		return FieldTypeChoice
	case "Sig":
		return FieldTypeSignature
	default:
		return FieldTypeUnknown
	}
}

func (fe *FieldExtractor) debugf(format string, args ...interface{}) {
	if fe.debugMode {
		log.Debugf(format, args...)
	}
}

func relaxedConfiguration() *pdfmodel.Configuration {
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed
	return conf
}
