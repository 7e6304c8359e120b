package query

import "strings"

// Project keeps only the selected fields of rec. Dotted names select nested
// values and rebuild the enclosing objects; names that do not resolve are
// skipped. A nil FieldSet returns a shallow copy of rec.
func Project(rec Record, fields FieldSet) Record {
	out := make(Record, len(rec))
	if fields.All() {
		for k, v := range rec {
			out[k] = v
		}
		return out
	}

	for _, name := range fields {
		if v, ok := rec[name]; ok {
			out[name] = v
			continue
		}
		parts := strings.Split(name, ".")
		if ancestorSelected(fields, parts) {
			continue
		}
		v, ok := Resolve(rec, name)
		if !ok {
			continue
		}
		setPath(out, parts, v)
	}
	return out
}

// ancestorSelected reports whether a parent object of the path is already
// selected as a whole, which makes the nested selection redundant.
func ancestorSelected(fields FieldSet, parts []string) bool {
	for i := 1; i < len(parts); i++ {
		if fields.Contains(strings.Join(parts[:i], ".")) {
			return true
		}
	}
	return false
}

// setPath only writes into maps it created, never into the source record.
func setPath(dst Record, parts []string, v any) {
	cur := map[string]any(dst)
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[p] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = v
}
