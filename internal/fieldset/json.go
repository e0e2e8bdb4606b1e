package fieldset

import (
	"bytes"

	json "github.com/goccy/go-json"
)

// JSON projection contract:
//
//   - A FieldSet serializes as an object mapping field name to field record,
//     keys in insertion order.
//   - A field record carries datatype, crossref, values, validation and,
//     only when cross-reference was attempted, comparison; additional only
//     when authority-only values were observed. The absent-vs-empty
//     distinction of the in-memory model is therefore preserved on the wire:
//     a field that was never cross-referenced has no "comparison" key, while
//     an attempted-but-unmatched value maps to [].
//   - Inner validation/comparison maps are keyed by value, keys in value
//     insertion order, so repeated runs serialize byte-identically.

// MarshalJSON implements json.Marshaler with insertion-ordered keys.
func (fs *FieldSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, f := range fs.fields {
		if i > 0 {
			buf.WriteByte(',')
		}

		if err := writeKey(&buf, f.Name); err != nil {
			return nil, err
		}

		b, err := f.MarshalJSON()
		if err != nil {
			return nil, err
		}

		buf.Write(b)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// MarshalJSON implements json.Marshaler for a single field record.
func (f *Field) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	if err := writeMember(&buf, "datatype", f.Datatype); err != nil {
		return nil, err
	}

	buf.WriteByte(',')

	if err := writeMember(&buf, "crossref", f.Crossref); err != nil {
		return nil, err
	}

	buf.WriteByte(',')

	values := f.Values
	if values == nil {
		values = []string{}
	}

	if err := writeMember(&buf, "values", values); err != nil {
		return nil, err
	}

	buf.WriteByte(',')

	if err := writeKey(&buf, "validation"); err != nil {
		return nil, err
	}

	if err := f.writeValidation(&buf); err != nil {
		return nil, err
	}

	if f.Comparison != nil {
		buf.WriteByte(',')

		if err := writeKey(&buf, "comparison"); err != nil {
			return nil, err
		}

		if err := f.writeComparison(&buf); err != nil {
			return nil, err
		}
	}

	if f.Additional != nil {
		buf.WriteByte(',')

		if err := writeKey(&buf, "additional"); err != nil {
			return nil, err
		}

		if err := f.writeAdditional(&buf); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// writeValidation emits the value -> results object in value order.
func (f *Field) writeValidation(buf *bytes.Buffer) error {
	buf.WriteByte('{')

	first := true

	for _, v := range f.Values {
		results, ok := f.Validation[v]
		if !ok {
			continue
		}

		if !first {
			buf.WriteByte(',')
		}

		first = false

		if err := writeMember(buf, v, results); err != nil {
			return err
		}
	}

	buf.WriteByte('}')

	return nil
}

// writeComparison emits the value -> successful matches object in value
// order. Values the engine never attempted carry no key.
func (f *Field) writeComparison(buf *bytes.Buffer) error {
	buf.WriteByte('{')

	first := true

	for _, v := range f.Values {
		results, ok := f.Comparison[v]
		if !ok {
			continue
		}

		if !first {
			buf.WriteByte(',')
		}

		first = false

		if err := writeMember(buf, v, results); err != nil {
			return err
		}
	}

	buf.WriteByte('}')

	return nil
}

// writeAdditional groups the observed (value, source) pairs under their
// authority value, preserving first-seen order.
func (f *Field) writeAdditional(buf *bytes.Buffer) error {
	order := make([]string, 0, len(f.Additional))
	grouped := make(map[string][]Additional, len(f.Additional))

	for _, a := range f.Additional {
		if _, seen := grouped[a.Value]; !seen {
			order = append(order, a.Value)
		}

		grouped[a.Value] = append(grouped[a.Value], a)
	}

	buf.WriteByte('{')

	for i, v := range order {
		if i > 0 {
			buf.WriteByte(',')
		}

		if err := writeMember(buf, v, grouped[v]); err != nil {
			return err
		}
	}

	buf.WriteByte('}')

	return nil
}

func writeKey(buf *bytes.Buffer, key string) error {
	b, err := json.Marshal(key)
	if err != nil {
		return err
	}

	buf.Write(b)
	buf.WriteByte(':')

	return nil
}

func writeMember(buf *bytes.Buffer, key string, value any) error {
	if err := writeKey(buf, key); err != nil {
		return err
	}

	b, err := json.Marshal(value)
	if err != nil {
		return err
	}

	buf.Write(b)

	return nil
}
