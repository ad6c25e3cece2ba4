package clickhousebatch

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// columnValue 把json值转换成clickhouse列类型对应的go值，缺失时用零值
func columnValue(ty string, v any, dateFormat string) (any, error) {
	if inner, ok := unwrapType(ty, "Nullable"); ok {
		if v == nil {
			return nil, nil
		}
		return columnValue(inner, v, dateFormat)
	}
	if inner, ok := unwrapType(ty, "LowCardinality"); ok {
		return columnValue(inner, v, dateFormat)
	}

	switch ty {
	case "String":
		if v == nil {
			return "", nil
		}
		if s, ok := v.(string); ok {
			return s, nil
		}
		return fmt.Sprintf("%v", v), nil
	case "Int64":
		return toInt64(v)
	case "Int32":
		i, err := toInt64(v)
		return int32(i), err
	case "UInt64":
		i, err := toInt64(v)
		return uint64(i), err
	case "UInt8":
		i, err := toInt64(v)
		return uint8(i), err
	case "Float64":
		return toFloat64(v)
	case "Date", "Date32", "DateTime":
		return toTime(v, dateFormat)
	}
	return nil, fmt.Errorf("unsupported column type %s", ty)
}

// unwrapType 取出Wrapper(Type)中的Type
func unwrapType(ty, wrapper string) (string, bool) {
	if strings.HasPrefix(ty, wrapper+"(") && strings.HasSuffix(ty, ")") {
		return ty[len(wrapper)+1 : len(ty)-1], true
	}
	return "", false
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case json.Number:
		return n.Int64()
	case string:
		return strconv.ParseInt(n, 10, 64)
	}
	return 0, fmt.Errorf("cannot convert %T to integer", v)
}

func toFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		return strconv.ParseFloat(n, 64)
	}
	return 0, fmt.Errorf("cannot convert %T to float", v)
}

func toTime(v any, dateFormat string) (time.Time, error) {
	switch t := v.(type) {
	case nil:
		return time.Unix(0, 0).UTC(), nil
	case time.Time:
		return t, nil
	case string:
		return time.Parse(dateFormat, t)
	}
	return time.Time{}, fmt.Errorf("cannot convert %T to date", v)
}
