// Package pdftest builds small in-memory PDF documents for tests.
package pdftest

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// FormPDF assembles a one-page AcroForm document with three text fields:
// "full_name", "addr_line1" and the nested "address.city".
func FormPDF() []byte {
	objects := []string{
		`<< /Type /Catalog /Pages 2 0 R /AcroForm 5 0 R >>`,
		`<< /Type /Pages /Kids [3 0 R] /Count 1 >>`,
		`<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /Helv 4 0 R >> >> /Annots [6 0 R 7 0 R 9 0 R] >>`,
		`<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>`,
		`<< /Fields [6 0 R 7 0 R 8 0 R] /DA (/Helv 0 Tf 0 g) /DR << /Font << /Helv 4 0 R >> >> >>`,
		`<< /Type /Annot /Subtype /Widget /FT /Tx /T (full_name) /TU (Full legal name) /Rect [50 700 300 720] /P 3 0 R /DA (/Helv 12 Tf 0 g) /F 4 >>`,
		`<< /Type /Annot /Subtype /Widget /FT /Tx /T (addr_line1) /TU (Mailing Address) /Rect [50 660 300 680] /P 3 0 R /DA (/Helv 12 Tf 0 g) /F 4 >>`,
		`<< /T (address) /Kids [9 0 R] >>`,
		`<< /Type /Annot /Subtype /Widget /FT /Tx /Parent 8 0 R /T (city) /TU (City) /Rect [50 620 300 640] /P 3 0 R /DA (/Helv 12 Tf 0 g) /F 4 >>`,
	}
	return assemblePDF(objects)
}

// ParentFieldPDF assembles a form whose only field "address" carries FT
// itself and has a named widget kid "city". The parent is the field.
func ParentFieldPDF() []byte {
	objects := []string{
		`<< /Type /Catalog /Pages 2 0 R /AcroForm 5 0 R >>`,
		`<< /Type /Pages /Kids [3 0 R] /Count 1 >>`,
		`<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /Helv 4 0 R >> >> /Annots [7 0 R] >>`,
		`<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>`,
		`<< /Fields [6 0 R] /DA (/Helv 0 Tf 0 g) /DR << /Font << /Helv 4 0 R >> >> >>`,
		`<< /FT /Tx /T (address) /TU (Address) /Kids [7 0 R] >>`,
		`<< /Type /Annot /Subtype /Widget /Parent 6 0 R /T (city) /TU (City) /Rect [50 620 300 640] /P 3 0 R /DA (/Helv 12 Tf 0 g) /F 4 >>`,
	}
	return assemblePDF(objects)
}

// PlainPDF assembles a one-page document without a form.
func PlainPDF() []byte {
	return assemblePDF([]string{
		`<< /Type /Catalog /Pages 2 0 R >>`,
		`<< /Type /Pages /Kids [3 0 R] /Count 1 >>`,
		`<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>`,
	})
}

// TextValues exports the form of data with pdfcpu and returns the value of
// every text field keyed by its fully qualified name.
func TextValues(data []byte) (map[string]string, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	var buf bytes.Buffer
	if err := api.ExportFormJSON(bytes.NewReader(data), &buf, "test.pdf", conf); err != nil {
		return nil, err
	}

	var exported struct {
		Forms []struct {
			TextFields []struct {
				Name  string `json:"name"`
				Value string `json:"value"`
			} `json:"textfield"`
		} `json:"forms"`
	}
	if err := json.Unmarshal(buf.Bytes(), &exported); err != nil {
		return nil, err
	}

	values := make(map[string]string)
	for _, form := range exported.Forms {
		for _, field := range form.TextFields {
			values[field.Name] = field.Value
		}
	}
	return values, nil
}

// assemblePDF numbers objects from 1 and writes a classic xref table.
func assemblePDF(objects []string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xrefOffset)

	return buf.Bytes()
}
