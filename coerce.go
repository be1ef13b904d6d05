package tracecfg

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// coerceValue converts a raw source value into the declared kind. There is
// exactly one coercion path for every source, so the string "2" becomes the
// integer 2 whether it came from a .env file, the OS environment or a CLI
// flag. Values that already match the declared kind pass through unchanged;
// everything else routes through the same conversion attempt and fails with
// ErrBadValue when no conversion exists.
func coerceValue(raw any, kind Kind) (any, error) {
	switch kind {
	case KindString:
		return coerceString(raw)
	case KindOptionalString:
		s, err := coerceString(raw)
		if err != nil {
			return nil, err
		}
		str := s.(string)
		return &str, nil
	case KindInt:
		return coerceInt(raw)
	case KindFloat:
		return coerceFloat(raw)
	case KindBool:
		return coerceBool(raw)
	case KindDuration:
		return coerceDuration(raw)
	case KindInts:
		return coerceInts(raw)
	default:
		return nil, fmt.Errorf("%w: unknown kind %s", ErrBadValue, kind)
	}
}

func coerceString(raw any) (any, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case *string:
		if v == nil {
			return nil, badValue(raw, KindString)
		}
		return *v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	default:
		return nil, badValue(raw, KindString)
	}
}

func coerceInt(raw any) (any, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return nil, badValue(raw, KindInt)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, badValue(raw, KindInt)
		}
		return n, nil
	default:
		return nil, badValue(raw, KindInt)
	}
}

func coerceFloat(raw any) (any, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, badValue(raw, KindFloat)
		}
		return f, nil
	default:
		return nil, badValue(raw, KindFloat)
	}
}

func coerceBool(raw any) (any, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, badValue(raw, KindBool)
		}
		return b, nil
	default:
		return nil, badValue(raw, KindBool)
	}
}

func coerceDuration(raw any) (any, error) {
	switch v := raw.(type) {
	case time.Duration:
		return v, nil
	case string:
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return nil, badValue(raw, KindDuration)
		}
		return d, nil
	default:
		return nil, badValue(raw, KindDuration)
	}
}

func coerceInts(raw any) (any, error) {
	switch v := raw.(type) {
	case []int:
		return v, nil
	case []any:
		out := make([]int, 0, len(v))
		for _, item := range v {
			n, err := coerceInt(item)
			if err != nil {
				return nil, badValue(raw, KindInts)
			}
			out = append(out, n.(int))
		}
		return out, nil
	case string:
		parts := strings.Split(v, ",")
		out := make([]int, 0, len(parts))
		for _, part := range parts {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			n, err := strconv.Atoi(part)
			if err != nil {
				return nil, badValue(raw, KindInts)
			}
			out = append(out, n)
		}
		if len(out) == 0 {
			return nil, badValue(raw, KindInts)
		}
		return out, nil
	default:
		return nil, badValue(raw, KindInts)
	}
}

func badValue(raw any, kind Kind) error {
	return fmt.Errorf("%w: %v (%T) is not a valid %s", ErrBadValue, raw, raw, kind)
}
