package contacts

// Spreadsheet column labels, shared by export and import.
const (
	ColumnName     = "Name"
	ColumnFavorite = "Favorite"
	ColumnPhone    = "Phone"
	ColumnEmail    = "Email"
	ColumnSocial   = "Social"
	ColumnAddress  = "Address"
)

// Favorite display strings.
const (
	FavoriteYes = "yes"
	FavoriteNo  = "no"
)

// ValueSeparator joins same-typed values in one cell.
const ValueSeparator = ", "

// ExportColumns is the fixed header of an exported sheet.
var ExportColumns = []string{ColumnName, ColumnFavorite, ColumnPhone, ColumnEmail, ColumnSocial, ColumnAddress}

// MethodColumns holds one grouped cell per method type.
type MethodColumns struct {
	Phone   string
	Email   string
	Social  string
	Address string
}

// Append adds value to the column of t, separated from any existing value.
// Unknown types are ignored.
func (c *MethodColumns) Append(t MethodType, value string) {
	var col *string
	switch t {
	case MethodPhone:
		col = &c.Phone
	case MethodEmail:
		col = &c.Email
	case MethodSocial:
		col = &c.Social
	case MethodAddress:
		col = &c.Address
	default:
		return
	}
	if *col == "" {
		*col = value
	} else {
		*col += ValueSeparator + value
	}
}

// Get returns the grouped cell for t.
func (c MethodColumns) Get(t MethodType) string {
	switch t {
	case MethodPhone:
		return c.Phone
	case MethodEmail:
		return c.Email
	case MethodSocial:
		return c.Social
	case MethodAddress:
		return c.Address
	}
	return ""
}

// columnFor returns the spreadsheet label of a method type.
func columnFor(t MethodType) string {
	switch t {
	case MethodPhone:
		return ColumnPhone
	case MethodEmail:
		return ColumnEmail
	case MethodSocial:
		return ColumnSocial
	case MethodAddress:
		return ColumnAddress
	}
	return ""
}

// FlatRow is one exported contact.
type FlatRow struct {
	Name       string
	IsFavorite bool
	Methods    MethodColumns
}

// Record returns the row's cells in ExportColumns order.
func (r FlatRow) Record() []string {
	fav := FavoriteNo
	if r.IsFavorite {
		fav = FavoriteYes
	}
	return []string{r.Name, fav, r.Methods.Phone, r.Methods.Email, r.Methods.Social, r.Methods.Address}
}

// Flatten groups join rows into one FlatRow per contact. Rows must be
// ordered by contact id; the first row of a contact defines its name and
// favorite flag. Output order follows first appearance.
func Flatten(rows []ExportRow) []FlatRow {
	out := make([]FlatRow, 0)
	index := make(map[int64]int)

	for _, r := range rows {
		i, ok := index[r.ContactID]
		if !ok {
			i = len(out)
			index[r.ContactID] = i
			out = append(out, FlatRow{Name: r.Name, IsFavorite: r.IsFavorite})
		}
		if r.MethodType == "" || r.MethodValue == "" {
			continue
		}
		out[i].Methods.Append(r.MethodType, r.MethodValue)
	}

	return out
}
