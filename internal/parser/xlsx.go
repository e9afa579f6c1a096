package parser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tabcheck/tabcheck/internal/dataset"
)

// xlsxLoader reads .xlsx workbooks with a minimal OOXML reader: workbook and
// relationship metadata, the shared-string table, and a streaming row scanner
// over the selected worksheet. Cells holding formatted dates as strings load
// as-is; raw Excel serial dates are out of scope.
type xlsxLoader struct{}

func (xlsxLoader) CanLoad(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

func (xlsxLoader) Load(path string, opt Options) (*dataset.Dataset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}

	sheets := readWorkbookSheets(zipFileBytes(zr, "xl/workbook.xml"))
	rels := readRelTargets(zipFileBytes(zr, "xl/_rels/workbook.xml.rels"))

	target := ""
	if opt.SheetName != "" {
		for _, s := range sheets {
			if strings.EqualFold(s.Name, opt.SheetName) {
				if rel, ok := rels[s.RelID]; ok {
					target = sheetZipPath(rel)
				}
				break
			}
		}
		if target == "" {
			names := make([]string, len(sheets))
			for i, s := range sheets {
				names[i] = s.Name
			}
			return nil, fmt.Errorf("sheet %q not found in %s (available: %s)",
				opt.SheetName, filepath.Base(path), strings.Join(names, ", "))
		}
	}
	if target == "" {
		idx := opt.SheetIndex
		if idx <= 0 {
			idx = 1
		}
		for _, s := range sheets {
			if s.ID == idx {
				if rel, ok := rels[s.RelID]; ok {
					target = sheetZipPath(rel)
				}
				break
			}
		}
		if target == "" {
			target = fmt.Sprintf("xl/worksheets/sheet%d.xml", idx)
		}
	}

	sheetXML := zipFileBytes(zr, target)
	if sheetXML == nil {
		return nil, fmt.Errorf("worksheet %s not found in %s", target, filepath.Base(path))
	}
	shared := readSharedStrings(zipFileBytes(zr, "xl/sharedStrings.xml"))

	sc := newRowScanner(sheetXML, shared)
	header, ok := sc.Scan()
	name := datasetName(path, opt.SheetName)
	if !ok || len(header) == 0 {
		return dataset.New(name, nil, nil), nil
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	ncol := len(header)

	var rows [][]string
	for {
		row, ok := sc.Scan()
		if !ok {
			break
		}
		rows = append(rows, normalizeWidth(row, ncol))
	}
	return dataset.New(name, header, rows), nil
}

func datasetName(path, sheetName string) string {
	base := filepath.Base(path)
	if sheetName == "" {
		return base
	}
	return fmt.Sprintf("%s (sheet: %s)", base, sheetName)
}

type workbookSheet struct {
	Name  string
	ID    int
	RelID string
}

// readWorkbookSheets extracts sheet entries with names, ids, and relationship
// ids from xl/workbook.xml.
func readWorkbookSheets(data []byte) []workbookSheet {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var sheets []workbookSheet
	for {
		tok, err := dec.Token()
		if err != nil {
			return sheets
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "sheet" {
			continue
		}
		var s workbookSheet
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "name":
				s.Name = a.Value
			case "sheetId":
				s.ID = leadingInt(a.Value)
			case "id": // r: namespace
				s.RelID = a.Value
			}
		}
		sheets = append(sheets, s)
	}
}

// readRelTargets maps relationship ids to their target paths.
func readRelTargets(data []byte) map[string]string {
	out := map[string]string{}
	if len(data) == 0 {
		return out
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Relationship" {
			continue
		}
		var id, target string
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "Id":
				id = a.Value
			case "Target":
				target = a.Value
			}
		}
		if id != "" && target != "" {
			out[id] = target
		}
	}
}

func zipFileBytes(zr *zip.Reader, name string) []byte {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil
		}
		defer rc.Close()
		b, _ := io.ReadAll(rc)
		return b
	}
	return nil
}

// readSharedStrings flattens the shared-string table; rich-text runs inside
// one si element are concatenated.
func readSharedStrings(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	var out []string
	var buf strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "si":
				buf.Reset()
			case "t":
				inText = true
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "t":
				inText = false
			case "si":
				out = append(out, buf.String())
				buf.Reset()
			}
		case xml.CharData:
			if inText {
				buf.Write([]byte(se))
			}
		}
	}
}

// rowScanner streams row elements out of a worksheet document, resolving
// shared-string cells against the workbook table.
type rowScanner struct {
	dec    *xml.Decoder
	shared []string
	inRow  bool
	cells  []string
	width  int
}

func newRowScanner(data []byte, shared []string) *rowScanner {
	return &rowScanner{dec: xml.NewDecoder(bytes.NewReader(data)), shared: shared}
}

// Scan returns the next row of cell values; ok is false at end of sheet.
func (r *rowScanner) Scan() ([]string, bool) {
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, false
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "row" {
				r.inRow = true
				r.cells = nil
				r.width = 0
			}
			if r.inRow && se.Name.Local == "c" {
				var ref, kind string
				for _, a := range se.Attr {
					switch a.Name.Local {
					case "r":
						ref = a.Value
					case "t":
						kind = a.Value
					}
				}
				col := cellColumn(ref)
				if col < 0 {
					// no cell reference; assume next position
					col = len(r.cells)
				}
				if col+1 > r.width {
					r.width = col + 1
				}
				val := r.cellValue(kind)
				if len(r.cells) <= col {
					tmp := make([]string, col+1)
					copy(tmp, r.cells)
					r.cells = tmp
				}
				r.cells[col] = val
			}
		case xml.EndElement:
			if se.Name.Local == "row" {
				if len(r.cells) < r.width {
					tmp := make([]string, r.width)
					copy(tmp, r.cells)
					r.cells = tmp
				}
				r.inRow = false
				return r.cells, true
			}
		}
	}
}

// cellValue consumes tokens to the end of the current cell, capturing the v
// or inline-string t payload and resolving shared-string references.
func (r *rowScanner) cellValue(kind string) string {
	var val string
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return val
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "v" || se.Name.Local == "t" {
				var sb strings.Builder
				for {
					tk, err := r.dec.Token()
					if err != nil {
						break
					}
					if end, ok := tk.(xml.EndElement); ok && (end.Name.Local == "v" || end.Name.Local == "t") {
						break
					}
					if ch, ok := tk.(xml.CharData); ok {
						sb.Write([]byte(ch))
					}
				}
				val = sb.String()
			}
		case xml.EndElement:
			if se.Name.Local == "c" {
				if kind == "s" {
					idx := leadingInt(val)
					if idx >= 0 && idx < len(r.shared) {
						return r.shared[idx]
					}
					return ""
				}
				return val
			}
		}
	}
}

// cellColumn converts a cell reference like "C12" to its 0-based column.
func cellColumn(ref string) int {
	i := 0
	for i < len(ref) {
		c := ref[i]
		if c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' {
			i++
			continue
		}
		break
	}
	idx := 0
	for _, c := range strings.ToUpper(ref[:i]) {
		idx = idx*26 + int(c-'A'+1)
	}
	return idx - 1
}

func leadingInt(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			break
		}
		n = n*10 + int(s[i]-'0')
	}
	return n
}

// sheetZipPath converts a relationship target to its ZIP entry path.
// Targets may carry a leading slash or omit the xl/ prefix.
func sheetZipPath(rel string) string {
	rel = strings.TrimPrefix(rel, "/")
	if strings.HasPrefix(rel, "xl/") {
		return rel
	}
	return "xl/" + rel
}
