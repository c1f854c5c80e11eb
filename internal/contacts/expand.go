package contacts

// expand.go turns a parsed sheet back into contacts.
//
// The first record is the header. Columns are matched by label,
// case-insensitively; only Name is required. Each method column is split
// on ',' and every non-empty trimmed piece becomes one method without a
// label. Fully blank rows are skipped. Every cell, names included, goes
// through CleanCell, so a literal ="x" imports as x.

import "strings"

// HeaderIndex maps lowercased column labels to their position in a record.
type HeaderIndex map[string]int

// MakeHeaderIndex builds a HeaderIndex. When a label repeats, the first
// occurrence wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanCell(h))
		if key == "" {
			continue
		}
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

// Cell returns the cleaned value of column in row and whether the column
// exists in the header. Short rows yield an empty value.
func (h HeaderIndex) Cell(row []string, column string) (string, bool) {
	pos, ok := h[strings.ToLower(column)]
	if !ok {
		return "", false
	}
	if pos >= len(row) {
		return "", true
	}
	return CleanCell(row[pos]), true
}

// CleanCell trims whitespace and unwraps the ="..." form spreadsheet
// programs use to force text cells. It applies to every column.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = strings.TrimSpace(s[2 : len(s)-1])
	}
	return s
}

// SplitValues splits a grouped cell into its individual values.
func SplitValues(cell string) []string {
	var out []string
	for _, part := range strings.Split(cell, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Expand parses records into contacts. OwnerID and ImportID are left for
// the caller to set. A missing Name column or a row without a name fails
// the whole document.
func Expand(records [][]string) ([]NewContact, error) {
	const op = "import"

	if len(records) == 0 {
		return nil, Formatf(op, "empty file")
	}

	header := MakeHeaderIndex(records[0])
	if _, ok := header[strings.ToLower(ColumnName)]; !ok {
		return nil, Validationf(op, ColumnName, "missing required column %q", ColumnName)
	}

	out := make([]NewContact, 0, len(records)-1)
	for i, row := range records[1:] {
		line := i + 2
		if isEmptyRow(row) {
			continue
		}

		name, _ := header.Cell(row, ColumnName)
		if name == "" {
			return nil, Validationf(op, ColumnName, "required field is empty on line %d", line)
		}

		fav, _ := header.Cell(row, ColumnFavorite)
		c := NewContact{
			Name:       name,
			IsFavorite: fav == FavoriteYes,
		}

		for _, t := range MethodTypes {
			cell, ok := header.Cell(row, columnFor(t))
			if !ok || cell == "" {
				continue
			}
			for _, v := range SplitValues(cell) {
				c.Methods = append(c.Methods, Method{Type: t, Value: v})
			}
		}

		out = append(out, c)
	}

	return out, nil
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
