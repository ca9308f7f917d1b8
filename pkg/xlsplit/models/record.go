package models

// Header is the ordered list of field names taken from the first row.
// Header[i] names the column FirstCol+i of the sheet bounds.
type Header []string

// Record holds one data row, positionally aligned to a Header.
// Absent cells are stored as empty strings.
type Record []string

// Empty reports whether every value of the record is the empty string.
func (r Record) Empty() bool {
	for _, v := range r {
		if v != "" {
			return false
		}
	}
	return true
}

// Map renders the record as a field name to value mapping.
// When the header repeats a name, the rightmost column wins.
func (r Record) Map(h Header) map[string]string {
	m := make(map[string]string, len(h))
	for i, name := range h {
		if i < len(r) {
			m[name] = r[i]
		} else {
			m[name] = ""
		}
	}
	return m
}
