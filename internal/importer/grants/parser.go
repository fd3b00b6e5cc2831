package grants

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	enc "github.com/brewtab/brewtab/internal/encoding"
	"github.com/brewtab/brewtab/internal/wallet"
)

// Grant is one row of a promotional credit grant sheet.
type Grant struct {
	Phone  string
	Amount int64 // cents, always positive
	Note   string
}

const (
	colPhone  = "phone"
	colAmount = "amount"
	colNote   = "note"
)

// Parser reads back-office grant CSVs. The sheet must carry a header row
// with "phone" and "amount" columns ("note" is optional); rows above the
// header (titles, export metadata) are skipped.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]Grant, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	delim, utf8r := sniffDelimiter(utf8r)

	reader := csv.NewReader(utf8r)
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	headerIdx, cols := findHeader(rows)
	if cols == nil {
		return nil, fmt.Errorf("no header row with %q and %q columns found", colPhone, colAmount)
	}

	return parseRows(rows[headerIdx+1:], cols, headerIdx+1)
}

// sniffDelimiter peeks at the first line and picks ';' when it outnumbers
// ','; spreadsheet exports use either depending on locale. The consumed
// bytes are stitched back in front of the returned reader.
func sniffDelimiter(r io.Reader) (rune, io.Reader) {
	buf := make([]byte, 1024)
	n, _ := io.ReadFull(r, buf)
	buf = buf[:n]

	rest := io.MultiReader(strings.NewReader(string(buf)), r)

	line, _, _ := strings.Cut(string(buf), "\n")
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';', rest
	}

	return ',', rest
}

type colIndex map[string]int

func findHeader(rows [][]string) (int, colIndex) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(cell))
			if name != "" {
				cols[name] = i
			}
		}

		_, hasPhone := cols[colPhone]
		_, hasAmount := cols[colAmount]

		if hasPhone && hasAmount {
			return rowIdx, cols
		}
	}

	return 0, nil
}

func parseRows(rows [][]string, cols colIndex, headerRowNum int) ([]Grant, error) {
	phoneIdx := cols[colPhone]
	amountIdx := cols[colAmount]

	noteIdx := -1
	if i, ok := cols[colNote]; ok {
		noteIdx = i
	}

	var out []Grant

	for i, row := range rows {
		rowNum := headerRowNum + i + 2 // 1-based, counting the header

		phone := cellValue(row, phoneIdx)
		amountStr := cellValue(row, amountIdx)

		// Blank lines and footer rows.
		if phone == "" && amountStr == "" {
			continue
		}

		if phone == "" {
			return nil, fmt.Errorf("row %d: missing phone", rowNum)
		}

		cents, err := wallet.ParseAmount(amountStr)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowNum, err)
		}

		if cents <= 0 {
			return nil, fmt.Errorf("row %d: grant amount must be positive", rowNum)
		}

		out = append(out, Grant{
			Phone:  phone,
			Amount: cents,
			Note:   cellValue(row, noteIdx),
		})
	}

	return out, nil
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
