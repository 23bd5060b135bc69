package parser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"

	"document-qa/internal/models"
)

var (
	// ErrUnsupportedFormat is returned for file extensions the loader does not handle.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrParse is returned when a document cannot be read or decoded.
	ErrParse = errors.New("unable to parse document")
)

// Load reads a source file into ordered pages. PDFs yield one page per
// physical page; spreadsheet formats yield one page per sheet; the remaining
// formats yield a single page.
func Load(path string) ([]models.Page, error) {
	source := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return parsePDF(path, source)
	case ".docx":
		return parseDOCX(path, source)
	case ".xlsx":
		return parseXLSX(path, source)
	case ".ods":
		return parseODS(path, source)
	case ".md", ".markdown":
		return parseMarkdown(path, source)
	case ".txt":
		return parseText(path, source)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func parsePDF(path, source string) ([]models.Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	var pages []models.Page
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %w", ErrParse, i, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, models.Page{Source: source, Number: i, Text: text})
	}
	return pages, nil
}

func parseDOCX(path, source string) ([]models.Page, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	defer r.Close()

	content := r.Editable().GetContent()
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}
	// DOCX has no page numbers
	return []models.Page{{Source: source, Number: 1, Text: content}}, nil
}

func parseXLSX(path, source string) ([]models.Page, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	var pages []models.Page
	for sheetNum, sheet := range f.Sheets {
		var text strings.Builder
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheet.Name))
		for _, row := range sheet.Rows {
			for _, cell := range row.Cells {
				text.WriteString(cell.String() + "\t")
			}
			text.WriteString("\n")
		}
		if strings.TrimSpace(text.String()) == "" {
			continue
		}
		pages = append(pages, models.Page{Source: source, Number: sheetNum + 1, Text: text.String()})
	}
	return pages, nil
}

func parseODS(path, source string) ([]models.Page, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	defer f.Close()

	var pages []models.Page
	for sheetNum, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		var text strings.Builder
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheetName))
		for _, row := range rows {
			for _, cell := range row {
				text.WriteString(cell + "\t")
			}
			text.WriteString("\n")
		}
		if strings.TrimSpace(text.String()) == "" {
			continue
		}
		pages = append(pages, models.Page{Source: source, Number: sheetNum + 1, Text: text.String()})
	}
	return pages, nil
}

func parseText(path, source string) ([]models.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}
	return []models.Page{{Source: source, Number: 1, Text: string(data)}}, nil
}
