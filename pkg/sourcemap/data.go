package sourcemap

import "encoding/json"

// Data is the opaque handle a vfile.File stores for its source map: it may
// hold a raw Object, a serialized JSON string, or a Builder. Conversions
// between the three are idempotent and lossless except that a
// string↔object round-trip goes through JSON.
type Data struct {
	object  *Object
	json    string
	builder *Builder
}

// FromObject wraps a raw Object.
func FromObject(obj *Object) Data { return Data{object: obj} }

// FromJSON wraps a serialized Source Map V3 JSON string.
func FromJSON(s string) Data { return Data{json: s} }

// FromBuilder wraps a Builder.
func FromBuilder(b *Builder) Data { return Data{builder: b} }

// IsZero reports whether the Data holds nothing.
func (d Data) IsZero() bool {
	return d.object == nil && d.json == "" && d.builder == nil
}

// Object coerces the data to a raw Object, parsing JSON if necessary.
func (d Data) Object() (*Object, error) {
	switch {
	case d.object != nil:
		return d.object, nil
	case d.builder != nil:
		return d.builder.ToObject(), nil
	case d.json != "":
		obj := &Object{}
		if err := json.Unmarshal([]byte(d.json), obj); err != nil {
			return nil, err
		}
		return obj, nil
	default:
		return nil, nil
	}
}

// JSON coerces the data to its serialized form.
func (d Data) JSON() (string, error) {
	if d.json != "" {
		return d.json, nil
	}
	obj, err := d.Object()
	if err != nil {
		return "", err
	}
	if obj == nil {
		return "", nil
	}
	encoded, err := json.Marshal(obj)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// Builder coerces the data to Builder form, parsing an Object/JSON if
// necessary.
func (d Data) Builder() (*Builder, error) {
	if d.builder != nil {
		return d.builder, nil
	}
	obj, err := d.Object()
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return NewBuilder(), nil
	}
	return Parse(obj)
}
