package contacts

// sync.go holds the input side of the method-set synchronizer.
//
// A contact's method set is always replaced as a whole: the store deletes
// every existing method and inserts exactly the prepared set. Preparation
// drops entries with an empty value and rejects unknown types. Duplicates
// are kept.

// PrepareMethods validates inputs and converts them to methods ready for
// insertion. Entries with an empty value are skipped without error.
func PrepareMethods(op string, inputs []MethodInput) ([]Method, error) {
	methods := make([]Method, 0, len(inputs))
	for i, in := range inputs {
		if in.Value == "" {
			continue
		}
		t := MethodType(in.Type)
		if !t.Valid() {
			return nil, Validationf(op, "methods", "invalid enum %q at index %d (want phone, email, social or address)", in.Type, i)
		}
		methods = append(methods, Method{
			Type:  t,
			Value: in.Value,
			Label: in.Label,
		})
	}
	return methods, nil
}

// CheckMethods verifies that every method has a known type and a value.
// Stores call it before writing so the constraint holds without a database.
func CheckMethods(op string, methods []Method) error {
	for i, m := range methods {
		if !m.Type.Valid() {
			return Validationf(op, "methods", "invalid enum %q at index %d", m.Type, i)
		}
		if m.Value == "" {
			return Validationf(op, "methods", "required field value is empty at index %d", i)
		}
	}
	return nil
}
