package record

// Field describes one searchable value of a Record.
type Field struct {
	Name string
	// Weight is reserved for result ranking. Matching ignores it.
	Weight int
	// ExactMatch marks fields whose value may hold a comma separated list.
	// Matching tries whole-value equality, then element equality, then
	// substring containment.
	ExactMatch bool
	Value      func(*Record) string
}

// Fields lists every searchable field in the order matching visits them.
var Fields = []Field{
	{Name: "name", Weight: 10, Value: func(r *Record) string { return r.Name }},
	{Name: "filename", Weight: 10, Value: func(r *Record) string { return r.Filename }},
	{Name: "category", Weight: 8, Value: func(r *Record) string { return r.Category }},
	{Name: "base model", Weight: 7, ExactMatch: true, Value: func(r *Record) string { return r.BaseModel }},

	{Name: "civitai name", Weight: 8, Value: func(r *Record) string { return r.Attributes.CivitaiName }},
	{Name: "subcategory", Weight: 7, Value: func(r *Record) string { return r.Attributes.Subcategory }},
	{Name: "folder", Weight: 6, Value: func(r *Record) string { return r.Attributes.Folder }},
	{Name: "creator", Weight: 8, ExactMatch: true, Value: func(r *Record) string { return r.Attributes.Creator }},
	{Name: "tags", Weight: 9, Value: func(r *Record) string { return r.Attributes.Tags }},
	{Name: "activation text", Weight: 5, Value: func(r *Record) string { return r.Attributes.ActivationText }},
	{Name: "negative text", Weight: 5, Value: func(r *Record) string { return r.Attributes.NegativeText }},
	{Name: "civitai text", Weight: 5, Value: func(r *Record) string { return r.Attributes.CivitaiText }},
	{Name: "description", Weight: 6, Value: func(r *Record) string { return r.Attributes.Description }},
	{Name: "example prompt", Weight: 5, Value: func(r *Record) string { return r.Attributes.ExamplePrompt }},

	{Name: "path", Weight: 4, Value: func(r *Record) string { return r.Path }},
}

// QuickFields are the fields consulted by plain substring search.
var QuickFields = []Field{Fields[0], Fields[1], Fields[2]}

// FieldByName returns the searchable field with the given name.
func FieldByName(name string) (Field, bool) {
	for _, f := range Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
