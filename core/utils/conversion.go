package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrUnsupportedType is returned when a value's dynamic type cannot be converted.
var ErrUnsupportedType = errors.New("unsupported type")

// ErrOutOfRange is returned when a numeric value does not fit the target type.
var ErrOutOfRange = errors.New("value out of range")

// ToInt converts JSON-decoded and native numeric values to int using explicit type switching.
// Floats must be integral; strings must parse as base-10 integers. Values outside
// math.MinInt..math.MaxInt are rejected with ErrOutOfRange.
func ToInt(val any) (int, error) {
	switch v := val.(type) {
	case int:
		return v, nil
	case int64:
		if v < math.MinInt || v > math.MaxInt {
			return 0, fmt.Errorf("%w: %d", ErrOutOfRange, v)
		}
		return int(v), nil
	case int32:
		return int(v), nil
	case int16:
		return int(v), nil
	case int8:
		return int(v), nil
	case uint:
		if v > math.MaxInt {
			return 0, fmt.Errorf("%w: %d", ErrOutOfRange, v)
		}
		return int(v), nil
	case uint64:
		if v > math.MaxInt {
			return 0, fmt.Errorf("%w: %d", ErrOutOfRange, v)
		}
		return int(v), nil
	case uint32:
		if uint64(v) > math.MaxInt {
			return 0, fmt.Errorf("%w: %d", ErrOutOfRange, v)
		}
		return int(v), nil
	case uint16:
		return int(v), nil
	case uint8:
		return int(v), nil
	case float64:
		return floatToInt(v)
	case float32:
		return floatToInt(float64(v))
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return ToInt(i)
		}
		f, err := v.Float64()
		if err != nil {
			return 0, err
		}
		return floatToInt(f)
	case string:
		return strconv.Atoi(strings.TrimSpace(v))
	case []byte:
		return strconv.Atoi(strings.TrimSpace(string(v)))
	default:
		return 0, fmt.Errorf("%w: %T", ErrUnsupportedType, val)
	}
}

// ToPositiveInt is ToInt restricted to values greater than zero.
func ToPositiveInt(val any) (int, error) {
	i, err := ToInt(val)
	if err != nil {
		return 0, err
	}
	if i <= 0 {
		return 0, fmt.Errorf("%w: %d is not positive", ErrOutOfRange, i)
	}
	return i, nil
}

func floatToInt(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%v is not an integer", f)
	}
	// float64(math.MinInt) is exact; its negation is the first float past math.MaxInt.
	if f < float64(math.MinInt) || f >= -float64(math.MinInt) {
		return 0, fmt.Errorf("%w: %v", ErrOutOfRange, f)
	}
	return int(f), nil
}

// ToFloat converts numeric values and numeric strings to float64.
func ToFloat(val any) (float64, error) {
	switch v := val.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	case int, int64, int32, int16, int8, uint, uint64, uint32, uint16, uint8:
		i, err := ToInt(v)
		return float64(i), err
	default:
		return 0, fmt.Errorf("%w: %T", ErrUnsupportedType, val)
	}
}

// ToString converts string-like values to string. Numbers and booleans are rejected.
func ToString(val any) (string, error) {
	switch v := val.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedType, val)
	}
}

// ToBool converts various types to bool.
// It handles bool, integers 0 and 1, and the strings "0", "1", "true" and "false".
func ToBool(val any) (bool, error) {
	switch v := val.(type) {
	case bool:
		return v, nil
	case int, int64, int32, int16, int8, uint, uint64, uint32, uint16, uint8, json.Number:
		i, err := ToInt(v)
		if err != nil {
			return false, err
		}
		return intToBool(i)
	case string:
		return parseBool(v)
	case []byte:
		return parseBool(string(v))
	default:
		return false, fmt.Errorf("%w: %T", ErrUnsupportedType, val)
	}
}

func intToBool(i int) (bool, error) {
	switch i {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("%d is not a boolean", i)
	}
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true":
		return true, nil
	case "0", "false":
		return false, nil
	default:
		return false, fmt.Errorf("%q is not a boolean", s)
	}
}
