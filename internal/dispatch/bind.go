package dispatch

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/newthinker/tickertalk/internal/core"
	"github.com/newthinker/tickertalk/internal/registry"
)

// Bind validates raw directive arguments against the function's declared
// arguments and coerces them to their types. Undeclared arguments are dropped.
func Bind(spec core.FunctionSpec, raw map[string]any) (registry.Args, error) {
	args := make(registry.Args, len(spec.Args))
	for _, a := range spec.Args {
		v, present := raw[a.Name]
		if !present || v == nil {
			if a.Required {
				return nil, core.MissingArgument(a.Name)
			}
			if a.Default == nil {
				continue
			}
			v = a.Default
		}

		val, err := coerce(a, v)
		if err != nil {
			return nil, err
		}
		args[a.Name] = val
	}
	return args, nil
}

func coerce(a core.ArgSpec, v any) (any, error) {
	switch a.Type {
	case core.ArgString:
		s, ok := v.(string)
		if !ok {
			return nil, core.TypeMismatch(a.Name, "string", jsonType(v))
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, core.MissingArgument(a.Name)
		}
		if a.Name == "ticker" {
			s = strings.ToUpper(s)
		}
		return s, nil

	case core.ArgInteger:
		n, ok := toInt(v)
		if !ok {
			return nil, core.TypeMismatch(a.Name, "integer", jsonType(v))
		}
		if a.Positive && n < 1 {
			return nil, core.TypeMismatch(a.Name, "positive integer", strconv.Itoa(n))
		}
		return n, nil

	case core.ArgNumber:
		f, ok := toFloat(v)
		if !ok {
			return nil, core.TypeMismatch(a.Name, "number", jsonType(v))
		}
		if a.Positive && f < 1 {
			return nil, core.TypeMismatch(a.Name, "positive number", strconv.FormatFloat(f, 'g', -1, 64))
		}
		return f, nil

	case core.ArgBoolean:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			if parsed, err := strconv.ParseBool(strings.TrimSpace(b)); err == nil {
				return parsed, nil
			}
		}
		return nil, core.TypeMismatch(a.Name, "boolean", jsonType(v))
	}
	return nil, fmt.Errorf("argument %q has unsupported type %q", a.Name, a.Type)
}

// toInt accepts integral JSON numbers and numeric strings whose magnitude
// fits in 32 bits.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return bounded(int64(n))
	case int64:
		return bounded(n)
	case float64:
		return integral(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return bounded(i)
		}
		if f, err := n.Float64(); err == nil {
			return integral(f)
		}
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return bounded(i)
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return integral(f)
		}
	}
	return 0, false
}

func bounded(i int64) (int, bool) {
	if i > math.MaxInt32 || i < -math.MaxInt32 {
		return 0, false
	}
	return int(i), true
}

func integral(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// jsonType names v the way a JSON schema would.
func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float64, float32, int, int64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}
