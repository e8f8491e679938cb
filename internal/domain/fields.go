package domain

// Columns is the canonical column order, shared by the local CSV store and
// both remote backends. Key stays last so hand-authored files can simply
// leave it off the end.
var Columns = []string{
	"Company", "CompanyKey", "Website", "ContactName", "Role", "Email",
	"ContactFormURL", "Category", "WhyFit", "SourceURL", "Notes",
	"Status", "DateAdded", "Key",
}

// Field returns a column value by name. Unknown names return "".
func (l Lead) Field(name string) string {
	switch name {
	case "Company":
		return l.Company
	case "CompanyKey":
		return l.CompanyKey
	case "Website":
		return l.Website
	case "ContactName":
		return l.ContactName
	case "Role":
		return l.Role
	case "Email":
		return l.Email
	case "ContactFormURL":
		return l.ContactFormURL
	case "Category":
		return string(l.Category)
	case "WhyFit":
		return l.WhyFit
	case "SourceURL":
		return l.SourceURL
	case "Notes":
		return l.Notes
	case "Status":
		return string(l.Status)
	case "DateAdded":
		return l.DateAdded
	case "Key":
		return l.Key
	}
	return ""
}

// SetField writes a column value by name. Unknown names are ignored.
func (l *Lead) SetField(name, value string) {
	switch name {
	case "Company":
		l.Company = value
	case "CompanyKey":
		l.CompanyKey = value
	case "Website":
		l.Website = value
	case "ContactName":
		l.ContactName = value
	case "Role":
		l.Role = value
	case "Email":
		l.Email = value
	case "ContactFormURL":
		l.ContactFormURL = value
	case "Category":
		l.Category = Category(value)
	case "WhyFit":
		l.WhyFit = value
	case "SourceURL":
		l.SourceURL = value
	case "Notes":
		l.Notes = value
	case "Status":
		l.Status = Status(value)
	case "DateAdded":
		l.DateAdded = value
	case "Key":
		l.Key = value
	}
}

// Record renders the lead in Columns order.
func (l Lead) Record() []string {
	out := make([]string, len(Columns))
	for i, c := range Columns {
		out[i] = l.Field(c)
	}
	return out
}

// FromRowMap builds a Lead straight from a header->value map with no
// validation. Store adapters use it to round-trip rows exactly as persisted.
func FromRowMap(raw map[string]string) Lead {
	var l Lead
	for _, c := range Columns {
		l.SetField(c, raw[c])
	}
	return l
}

// RowMap renders the lead as a header->value map, the shape Validate takes.
func (l Lead) RowMap() map[string]string {
	m := make(map[string]string, len(Columns))
	for _, c := range Columns {
		m[c] = l.Field(c)
	}
	return m
}

// Equal compares every canonical column.
func (l Lead) Equal(other Lead) bool {
	for _, c := range Columns {
		if l.Field(c) != other.Field(c) {
			return false
		}
	}
	return true
}
