package inventory

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/shopspring/decimal"
)

// StockRow is one line of a stock sheet. Threshold is nil when the sheet
// does not carry a reorder threshold.
type StockRow struct {
	Name      string
	Stock     decimal.Decimal
	Threshold *decimal.Decimal
}

var (
	nameHeaders      = []string{"ingredient", "ingredient name", "name"}
	stockHeaders     = []string{"current stock", "stock", "current_stock", "quantity"}
	thresholdHeaders = []string{"reorder threshold", "reorder_threshold", "threshold"}

	numberPattern   = regexp.MustCompile(`^[-+]?\d+(?:\.\d+)?$`)
	cleanWhitespace = regexp.MustCompile(`\s+`)
)

// ParseStockCSV reads a stock sheet with a header row. The ingredients
// export of the reports page is accepted as is.
func ParseStockCSV(r io.Reader) ([]StockRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("csv is empty")
	}

	header := make(map[string]int, len(rows[0]))
	for idx, key := range rows[0] {
		header[strings.ToLower(strings.TrimSpace(key))] = idx
	}
	nameCol, ok := column(header, nameHeaders)
	if !ok {
		return nil, errors.New("csv has no ingredient column")
	}
	stockCol, ok := column(header, stockHeaders)
	if !ok {
		return nil, errors.New("csv has no stock column")
	}
	thresholdCol, hasThreshold := column(header, thresholdHeaders)

	out := make([]StockRow, 0, len(rows)-1)
	for line, row := range rows[1:] {
		name := cell(row, nameCol)
		if name == "" {
			continue
		}
		stock, err := parseQuantity(cell(row, stockCol))
		if err != nil {
			return nil, fmt.Errorf("line %d: stock for %s: %w", line+2, name, err)
		}
		entry := StockRow{Name: name, Stock: stock}
		if hasThreshold && cell(row, thresholdCol) != "" {
			threshold, err := parseQuantity(cell(row, thresholdCol))
			if err != nil {
				return nil, fmt.Errorf("line %d: threshold for %s: %w", line+2, name, err)
			}
			entry.Threshold = &threshold
		}
		out = append(out, entry)
	}
	return out, nil
}

func column(header map[string]int, names []string) (int, bool) {
	for _, name := range names {
		if idx, ok := header[name]; ok {
			return idx, true
		}
	}
	return 0, false
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseQuantity(value string) (decimal.Decimal, error) {
	value = strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if value == "" {
		return decimal.Zero, errors.New("value is empty")
	}
	return decimal.NewFromString(value)
}

// ParseStockPDF extracts stock rows from a text PDF where each line reads
// "<ingredient name> <stock> [<threshold>]". Lines that do not end in a
// number, such as titles and headers, are skipped.
func ParseStockPDF(data []byte) ([]StockRow, error) {
	text, err := extractTextFromPDF(data)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	rows := ParseStockText(text)
	if len(rows) == 0 {
		return nil, errors.New("pdf contains no stock lines")
	}
	return rows, nil
}

// ParseStockText parses the plain text layout used by ParseStockPDF.
func ParseStockText(text string) []StockRow {
	var out []StockRow
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(cleanWhitespace.ReplaceAllString(line, " "))
		numbers := 0
		for i := len(fields) - 1; i >= 0 && numbers < 2; i-- {
			if !numberPattern.MatchString(strings.ReplaceAll(fields[i], ",", "")) {
				break
			}
			numbers++
		}
		if numbers == 0 || numbers == len(fields) {
			continue
		}

		name := strings.Join(fields[:len(fields)-numbers], " ")
		values := fields[len(fields)-numbers:]
		stock, err := parseQuantity(values[0])
		if err != nil {
			continue
		}
		row := StockRow{Name: name, Stock: stock}
		if numbers == 2 {
			threshold, err := parseQuantity(values[1])
			if err == nil {
				row.Threshold = &threshold
			}
		}
		out = append(out, row)
	}
	return out
}

func extractTextFromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var builder strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", err
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}
