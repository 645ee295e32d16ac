package tabular

// Outcome classifies a Fetch result.
type Outcome string

const (
	// Absent: the dataset has no key column yet, nothing to prefill.
	Absent Outcome = "absent"
	// Found: a row matched the key.
	Found Outcome = "found"
	// Blank: the dataset exists but has no row for the key; every known
	// column is present with an empty value.
	Blank Outcome = "blank"
)

// Lookup is the result of Fetch.
type Lookup struct {
	Outcome Outcome `json:"outcome"`
	Fields  Record  `json:"fields"`
}

// Exists reports whether the lookup resolved a stored row with data.
func (l Lookup) Exists() bool {
	return l.Outcome == Found && !l.Fields.IsBlank()
}

// Fetch resolves key in keyColumn of t. The first match wins when the key is
// duplicated. Fetch never mutates t.
func Fetch(t *Table, keyColumn, key string) Lookup {
	if !t.HasColumn(keyColumn) {
		return Lookup{Outcome: Absent}
	}
	if i := t.Find(keyColumn, key); i >= 0 {
		return Lookup{Outcome: Found, Fields: t.Record(i)}
	}
	var blank Record
	for _, c := range t.Columns {
		blank.Set(c, "")
	}
	return Lookup{Outcome: Blank, Fields: blank}
}
