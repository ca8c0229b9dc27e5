package workbook

import (
	"strconv"
	"strings"
	"time"

	"freight-route-optimizer/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// table walks the data rows of one sheet. Cell accessors record the first
// parse failure in err and return zero values afterwards.
type table struct {
	sheet   string
	rows    [][]string
	columns map[string]int
	cur     int
	err     error
}

func newTable(sheet string, rows [][]string, required []string) (*table, error) {
	if len(rows) == 0 {
		return nil, &domain.InputError{Source: sheet, Row: 1, Msg: "header row is missing"}
	}

	columns := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		key := normalizeHeader(h)
		if _, dup := columns[key]; !dup && key != "" {
			columns[key] = i
		}
	}

	for _, c := range required {
		if _, ok := columns[normalizeHeader(c)]; !ok {
			return nil, &domain.InputError{Source: sheet, Row: 1, Field: c, Msg: "required column is missing"}
		}
	}

	return &table{sheet: sheet, rows: rows, columns: columns}, nil
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}

// next advances to the next non-blank data row.
func (t *table) next() bool {
	for t.cur++; t.cur < len(t.rows); t.cur++ {
		if !blank(t.rows[t.cur]) {
			return true
		}
	}
	return false
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// rowNumber is the 1-based sheet row of the current record.
func (t *table) rowNumber() int { return t.cur + 1 }

func (t *table) fail(column, msg string) {
	if t.err == nil {
		t.err = &domain.InputError{Source: t.sheet, Row: t.rowNumber(), Field: column, Msg: msg}
	}
}

func (t *table) text(column string) string {
	row := t.rows[t.cur]
	i := t.columns[normalizeHeader(column)]
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (t *table) decimal(column string) decimal.Decimal {
	raw := strings.ReplaceAll(t.text(column), ",", "")
	if raw == "" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		t.fail(column, "not a number: "+strconv.Quote(raw))
		return decimal.Zero
	}
	return d
}

// percentage accepts a fraction ("0.05") or a percent string ("5%").
func (t *table) percentage(column string) decimal.Decimal {
	raw := t.text(column)
	if !strings.HasSuffix(raw, "%") {
		return t.decimal(column)
	}

	d, err := decimal.NewFromString(strings.TrimSpace(strings.TrimSuffix(raw, "%")))
	if err != nil {
		t.fail(column, "not a percentage: "+strconv.Quote(raw))
		return decimal.Zero
	}
	return d.Div(decimal.NewFromInt(100))
}

func (t *table) integer(column string) int {
	d := t.decimal(column)
	if !d.Equal(d.Truncate(0)) {
		t.fail(column, "not a whole number of days: "+d.String())
		return 0
	}
	if d.GreaterThan(decimal.NewFromInt(domain.MaxTransitDays)) || d.LessThan(decimal.NewFromInt(-domain.MaxTransitDays)) {
		t.fail(column, "out of range: "+d.String())
		return 0
	}
	return int(d.IntPart())
}

func (t *table) flag(column string) bool {
	switch strings.ToLower(t.text(column)) {
	case "", "0", "false", "no", "n":
		return false
	case "1", "true", "yes", "y":
		return true
	}

	return !t.decimal(column).IsZero()
}

func (t *table) weekdays(column string) domain.WeekdaySet {
	s, err := domain.ParseWeekdays(t.text(column))
	if err != nil {
		t.fail(column, err.Error())
		return 0
	}
	return s
}

var dateLayouts = []string{
	domain.DateLayout,
	"2006/01/02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"1/2/2006",
	"1/2/06",
	"01-02-06",
	"2-Jan-2006",
	"Jan 2, 2006",
}

// day parses ISO and common spreadsheet date renderings, and Excel serial numbers.
func (t *table) day(column string) domain.Day {
	raw := t.text(column)
	if raw == "" {
		t.fail(column, "date is required")
		return 0
	}

	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return domain.DayOf(ts)
		}
	}

	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if ts, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return domain.DayOf(ts)
		}
	}

	t.fail(column, "unrecognized date "+strconv.Quote(raw))
	return 0
}
