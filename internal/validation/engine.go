package validation

import "sort"

// Rule reports whether a present value is well-formed.
type Rule func(value string) bool

// Field declares one validated attribute of a record.
type Field[T any] struct {
	Name     string
	Label    string
	Required bool
	Value    func(T) *string
	Assign   func(*T, *string)
	Rule     Rule
}

// Bind builds a required field whose getter and setter share one accessor.
func Bind[T any](name, label string, ref func(*T) **string, rule Rule) Field[T] {
	return Field[T]{
		Name:     name,
		Label:    label,
		Required: true,
		Value:    func(record T) *string { return *ref(&record) },
		Assign:   func(record *T, value *string) { *ref(record) = value },
		Rule:     rule,
	}
}

// Schema is an ordered list of fields for one record shape.
type Schema[T any] struct {
	fields []Field[T]
}

func NewSchema[T any](fields ...Field[T]) Schema[T] {
	return Schema[T]{fields: fields}
}

// Fields returns the declared fields in order.
func (s Schema[T]) Fields() []Field[T] {
	out := make([]Field[T], len(s.fields))
	copy(out, s.fields)
	return out
}

// Field looks up a declared field by name.
func (s Schema[T]) Field(name string) (Field[T], bool) {
	for _, f := range s.fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field[T]{}, false
}

// ValidateRequired checks presence only. The result has one entry per
// declared field; an empty message means the field passed.
func (s Schema[T]) ValidateRequired(record T) Errors {
	errs := make(Errors, len(s.fields))
	for _, f := range s.fields {
		errs[f.Name] = ""
		if f.Required && f.Value(record) == nil {
			errs[f.Name] = requiredMessage(f.Label)
		}
	}
	return errs
}

// Validate runs the presence pass, then format rules on present fields.
func (s Schema[T]) Validate(record T) Errors {
	errs := s.ValidateRequired(record)
	for _, f := range s.fields {
		if f.Rule == nil {
			continue
		}
		value := f.Value(record)
		if value == nil {
			continue
		}
		if !f.Rule(*value) {
			errs[f.Name] = invalidMessage(f.Label)
		}
	}
	return errs
}

func requiredMessage(label string) string { return label + " is required." }

func invalidMessage(label string) string { return label + " is invalid." }

// Errors maps field name to its message; "" means the field is valid.
type Errors map[string]string

// Valid reports whether every field passed.
func (e Errors) Valid() bool {
	for _, msg := range e {
		if msg != "" {
			return false
		}
	}
	return true
}

// Messages returns the failing fields only.
func (e Errors) Messages() map[string]string {
	out := map[string]string{}
	for field, msg := range e {
		if msg != "" {
			out[field] = msg
		}
	}
	return out
}

// Failed lists the failing field names in sorted order.
func (e Errors) Failed() []string {
	var names []string
	for field, msg := range e {
		if msg != "" {
			names = append(names, field)
		}
	}
	sort.Strings(names)
	return names
}
