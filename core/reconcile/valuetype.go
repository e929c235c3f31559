package reconcile

import (
	"errors"
	"fmt"
	"slices"

	"postcard-sync/core/utils"
)

// ValueType tags a directive with the conversion applied to its value.
type ValueType string

const (
	TypeString   ValueType = "string"
	TypeInteger  ValueType = "integer"
	TypeBoolean  ValueType = "boolean"
	TypeFloat    ValueType = "float"
	TypeGeoPoint ValueType = "geopoint"

	// TypePositiveInteger is an integer greater than zero, such as a frame delay.
	TypePositiveInteger ValueType = "positive_integer"
	// TypePrivacy is one of PrivacyProtected or PrivacyPublic.
	TypePrivacy ValueType = "privacy"
)

// Privacy levels accepted by TypePrivacy.
const (
	PrivacyProtected = "protected"
	PrivacyPublic    = "public"
)

// codec converts between JSON-decoded remote values and local Go values.
type codec struct {
	decode func(raw any) (any, error)
	encode func(local any) (any, error)
}

var codecs = map[ValueType]codec{
	TypeString: {
		decode: func(raw any) (any, error) { return utils.ToString(raw) },
		encode: func(local any) (any, error) { return utils.ToString(local) },
	},
	TypeInteger: {
		decode: func(raw any) (any, error) { return utils.ToInt(raw) },
		encode: func(local any) (any, error) { return utils.ToInt(local) },
	},
	TypeBoolean: {
		decode: func(raw any) (any, error) { return utils.ToBool(raw) },
		encode: func(local any) (any, error) { return utils.ToBool(local) },
	},
	TypeFloat: {
		decode: func(raw any) (any, error) { return utils.ToFloat(raw) },
		encode: func(local any) (any, error) { return utils.ToFloat(local) },
	},
	TypeGeoPoint: {
		decode: decodeGeoPoint,
		encode: encodeGeoPoint,
	},
	TypePositiveInteger: {
		decode: func(raw any) (any, error) { return utils.ToPositiveInt(raw) },
		encode: func(local any) (any, error) { return utils.ToPositiveInt(local) },
	},
	TypePrivacy: enumCodec(PrivacyProtected, PrivacyPublic),
}

var errNotInEnum = errors.New("value not allowed")

// enumCodec accepts only the exact strings in values, in both directions.
func enumCodec(values ...string) codec {
	check := func(v any) (any, error) {
		s, err := utils.ToString(v)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(values, s) {
			return nil, fmt.Errorf("%w: %q not one of %v", errNotInEnum, s, values)
		}
		return s, nil
	}
	return codec{decode: check, encode: check}
}

var errUnknownType = errors.New("unknown value type")

// Decode converts a remote value to the local representation of t.
func Decode(t ValueType, raw any) (any, error) {
	c, ok := codecs[t]
	if !ok {
		return nil, fmt.Errorf("%w %q", errUnknownType, t)
	}
	return c.decode(raw)
}

// Encode converts a local value to its remote representation for t.
func Encode(t ValueType, local any) (any, error) {
	c, ok := codecs[t]
	if !ok {
		return nil, fmt.Errorf("%w %q", errUnknownType, t)
	}
	return c.encode(local)
}

// decodeGeoPoint reads a GeoJSON-ordered [longitude, latitude] pair.
func decodeGeoPoint(raw any) (any, error) {
	pair, ok := raw.([]any)
	if !ok || len(pair) != 2 {
		return nil, fmt.Errorf("expected [longitude, latitude], got %T", raw)
	}
	lon, err := utils.ToFloat(pair[0])
	if err != nil {
		return nil, fmt.Errorf("longitude: %w", err)
	}
	lat, err := utils.ToFloat(pair[1])
	if err != nil {
		return nil, fmt.Errorf("latitude: %w", err)
	}
	p := GeoPoint{Latitude: lat, Longitude: lon}
	if !p.Valid() {
		return nil, fmt.Errorf("coordinate out of range: %v,%v", lat, lon)
	}
	return p, nil
}

func encodeGeoPoint(local any) (any, error) {
	switch p := local.(type) {
	case GeoPoint:
		return []float64{p.Longitude, p.Latitude}, nil
	case *GeoPoint:
		if p == nil {
			return nil, errors.New("nil point")
		}
		return []float64{p.Longitude, p.Latitude}, nil
	default:
		return nil, fmt.Errorf("%w: %T", utils.ErrUnsupportedType, local)
	}
}
