package docdiff

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ObjectMapping is a flattened nested-object document: fully qualified key
// paths mapped to normalized scalar strings. Only scalars are leaves, so an
// empty object or array contributes no keys
type ObjectMapping map[string]string

// Keys returns every key path in sorted order
func (om ObjectMapping) Keys() []string {
	keys := make([]string, 0, len(om))
	for k := range om {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type objectFrame struct {
	path  string
	value interface{}
}

type objectMember struct {
	name, kind string
	value      interface{}
}

// FlattenObject converts a document tree of the go types created by
// unmarshaling JSON or YAML into an ObjectMapping. Two complex types are
// walked:
//
//	map[string]interface{} (map[interface{}]interface{} is accepted too)
//	[]interface{}
//
// Object members are addressed "path.key", array elements "path[i]" with a
// 0-based index. A scalar root is stored at the empty key. Members are
// visited in sorted key order, so when two members produce the same key
// path (a key named "a.b" next to a nested "a" holding "b") the first one
// visited is kept, every time
func FlattenObject(v interface{}) ObjectMapping {
	om, _ := FlattenObjectCollisions(v)
	return om
}

// FlattenObjectCollisions flattens v like FlattenObject, also returning every
// key path that was produced more than once. Only the first value seen at
// such a key path is kept
func FlattenObjectCollisions(v interface{}) (ObjectMapping, []string) {
	om := ObjectMapping{}
	var collisions []string
	stack := []objectFrame{{value: v}}
	for len(stack) > 0 {
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		var children []objectFrame
		switch x := fr.value.(type) {
		case map[string]interface{}:
			keys := make([]string, 0, len(x))
			for k := range x {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				children = append(children, objectFrame{path: joinKey(fr.path, k), value: x[k]})
			}
		case map[interface{}]interface{}:
			members := make([]objectMember, 0, len(x))
			for k, ch := range x {
				members = append(members, objectMember{name: fmt.Sprint(k), kind: fmt.Sprintf("%T", k), value: ch})
			}
			sort.Slice(members, func(i, j int) bool {
				if members[i].name != members[j].name {
					return members[i].name < members[j].name
				}
				return members[i].kind < members[j].kind
			})
			for i, m := range members {
				path := joinKey(fr.path, m.name)
				// distinct keys with the same rendering, 1 & "1"
				if i > 0 && members[i-1].name == m.name {
					collisions = append(collisions, path)
					continue
				}
				children = append(children, objectFrame{path: path, value: m.value})
			}
		case []interface{}:
			for i, ch := range x {
				children = append(children, objectFrame{path: fr.path + "[" + strconv.Itoa(i) + "]", value: ch})
			}
		default:
			if _, exists := om[fr.path]; exists {
				collisions = append(collisions, fr.path)
				continue
			}
			om[fr.path] = NormalizeScalar(x)
		}

		// push in reverse so the first child is visited next
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return om, collisions
}

func joinKey(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// NormalizeScalar renders a scalar as the string used for comparison:
//
//	nil               "null"
//	bool              "true" / "false"
//	string            unchanged
//	json.Number       the number literal as written
//	integer types     base 10
//	float types       shortest decimal, exponent form outside [1e-6, 1e21)
//	time.Time         RFC 3339 with nanoseconds
//
// anything else is formatted with fmt.Sprint. Values of different go types
// that render to the same string compare equal
func NormalizeScalar(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(x)
	case string:
		return x
	case json.Number:
		return x.String()
	case int:
		return strconv.FormatInt(int64(x), 10)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float32:
		return formatFloat(float64(x), 32)
	case float64:
		return formatFloat(x, 64)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(x)
	}
}

func formatFloat(f float64, bits int) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, bits)
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		return strconv.FormatFloat(f, 'e', -1, bits)
	}
	return strconv.FormatFloat(f, 'f', -1, bits)
}

// DecodeJSON reads a single JSON value, keeping number literals as
// json.Number so they compare exactly as written
func DecodeJSON(r io.Reader) (interface{}, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return v, nil
}

// DecodeYAML reads a single YAML document
func DecodeYAML(r io.Reader) (interface{}, error) {
	var v interface{}
	if err := yaml.NewDecoder(r).Decode(&v); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty document")
		}
		return nil, err
	}
	return v, nil
}
