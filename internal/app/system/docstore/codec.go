package docstore

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
)

// ParentField holds the parent ID on every sub-collection document.
const ParentField = "_parent"

const (
	idField      = "_id"
	versionField = "version"
)

var validate = validator.New()

// Normalizer is implemented by models that need fixing up after decode.
type Normalizer interface {
	Normalize()
}

// Decode unmarshals raw into T and validates its shape. Any failure is
// reported as ErrCorruptRecord so malformed documents never reach callers
// half-populated.
func Decode[T any](raw bson.Raw) (T, error) {
	var v T
	if err := bson.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("%w: %s: %v", ErrCorruptRecord, idOf(raw), err)
	}
	if n, ok := any(&v).(Normalizer); ok {
		n.Normalize()
	}
	if err := validate.Struct(v); err != nil {
		return v, fmt.Errorf("%w: %s: %v", ErrCorruptRecord, idOf(raw), err)
	}
	return v, nil
}

// DecodeAll decodes every document, failing on the first corrupt one.
func DecodeAll[T any](raws []bson.Raw) ([]T, error) {
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		v, err := Decode[T](raw)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// encode marshals doc and stamps the store-owned fields: _id, _parent for
// sub-collection members and, when version >= 0, the version.
func encode(c Collection, id string, doc any, version int64) (bson.D, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode %s/%s: %w", c.Path(), id, err)
	}
	var fields bson.D
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("encode %s/%s: %w", c.Path(), id, err)
	}

	out := bson.D{{Key: idField, Value: id}}
	if c.Parent != "" {
		out = append(out, bson.E{Key: ParentField, Value: c.ParentID})
	}
	for _, e := range fields {
		switch {
		case e.Key == idField, e.Key == ParentField:
			continue
		case e.Key == versionField && version >= 0:
			continue
		}
		out = append(out, e)
	}
	if version >= 0 {
		out = append(out, bson.E{Key: versionField, Value: version})
	}
	return out, nil
}

// versionOf reads the version field; documents without one are version 0.
func versionOf(raw bson.Raw) int64 {
	rv := raw.Lookup(versionField)
	if v, ok := rv.Int64OK(); ok {
		return v
	}
	if v, ok := rv.Int32OK(); ok {
		return int64(v)
	}
	return 0
}

func idOf(raw bson.Raw) string {
	if s, ok := raw.Lookup(idField).StringValueOK(); ok {
		return s
	}
	return "<unknown id>"
}
