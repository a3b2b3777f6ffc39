package kind

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
)

// Native layouts for the temporal kinds. The fractional second part of a
// timestamp is optional on input and emitted only when present.
const (
	DateLayout          = "2006-01-02"
	TimestampLayout     = "2006-01-02 15:04:05"
	TimestampLayoutFrac = "2006-01-02 15:04:05.999999"
)

func castBoolean(value any) (any, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(v) {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		}
		return nil, fmt.Errorf("unrecognized boolean literal %q", v)
	case int, int8, int16, int32, int64:
		n, _ := toInt64(v)
		return n != 0, nil
	}
	return nil, fmt.Errorf("unsupported source type %T", value)
}

func castInteger(value any) (any, error) {
	if n, ok := toInt64(value); ok {
		return n, nil
	}
	switch v := value.(type) {
	case bool:
		if v {
			return int64(1), nil
		}
		return int64(0), nil
	case float32:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case *apd.Decimal:
		n, err := v.Int64()
		if err != nil {
			return nil, fmt.Errorf("decimal %s is not an integer", v)
		}
		return n, nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("unparsable integer literal %q", v)
		}
		return n, nil
	}
	return nil, fmt.Errorf("unsupported source type %T", value)
}

func castFloat(value any) (any, error) {
	if n, ok := toInt64(value); ok {
		return float64(n), nil
	}
	switch v := value.(type) {
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case *apd.Decimal:
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("decimal %s out of float range", v)
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("unparsable float literal %q", v)
		}
		return f, nil
	}
	return nil, fmt.Errorf("unsupported source type %T", value)
}

func castDecimal(value any) (any, error) {
	switch v := value.(type) {
	case *apd.Decimal:
		return v, nil
	case float32:
		d := new(apd.Decimal)
		if _, err := d.SetFloat64(float64(v)); err != nil {
			return nil, err
		}
		return d, nil
	case float64:
		d := new(apd.Decimal)
		if _, err := d.SetFloat64(v); err != nil {
			return nil, err
		}
		return d, nil
	case string:
		d, _, err := apd.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("unparsable decimal literal %q", v)
		}
		return d, nil
	}
	if n, ok := toInt64(value); ok {
		return apd.New(n, 0), nil
	}
	return nil, fmt.Errorf("unsupported source type %T", value)
}

func castString(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 64), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case *apd.Decimal:
		return v.Text('f'), nil
	case time.Time:
		return v.Format(TimestampLayoutFrac), nil
	case fmt.Stringer:
		return v.String(), nil
	}
	if n, ok := toInt64(value); ok {
		return strconv.FormatInt(n, 10), nil
	}
	return nil, fmt.Errorf("unsupported source type %T", value)
}

func castDate(value any) (any, error) {
	switch v := value.(type) {
	case time.Time:
		return time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC), nil
	case string:
		t, err := time.Parse(DateLayout, strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("unparsable date literal %q", v)
		}
		return t, nil
	}
	return nil, fmt.Errorf("unsupported source type %T", value)
}

func castTimestamp(value any) (any, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range []string{TimestampLayoutFrac, TimestampLayout, time.RFC3339Nano, DateLayout} {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return nil, fmt.Errorf("unparsable timestamp literal %q", v)
	}
	return nil, fmt.Errorf("unsupported source type %T", value)
}

// toInt64 widens any native signed or unsigned integer to int64.
func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	}
	return 0, false
}
