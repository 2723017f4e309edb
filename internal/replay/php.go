package replay

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/elliotchance/phpserialize"
)

// phpArray is the shape phpserialize produces for PHP arrays.
type phpArray = map[interface{}]interface{}

func unserializeArray(path string, data []byte) (phpArray, error) {
	var out phpArray
	if err := phpserialize.Unmarshal(data, &out); err != nil {
		return nil, phpError(path, err)
	}
	return out, nil
}

// phpReader pulls typed values out of an unserialized PHP array, recording the
// first failure so callers can chain lookups without checking each one.
type phpReader struct {
	arr  phpArray
	path string
	err  error
}

func newPHPReader(path string, arr phpArray) *phpReader {
	return &phpReader{arr: arr, path: path}
}

func (r *phpReader) fail(key string, format string, args ...interface{}) {
	if r.err == nil {
		r.err = phpError(r.path, fmt.Errorf("field %q: %s", key, fmt.Sprintf(format, args...)))
	}
}

func (r *phpReader) lookup(key string) (interface{}, bool) {
	if r.err != nil {
		return nil, false
	}
	value, ok := r.arr[key]
	return value, ok
}

func (r *phpReader) str(key string) string {
	value, ok := r.lookup(key)
	if !ok {
		r.fail(key, "missing")
		return ""
	}
	s, ok := asString(value)
	if !ok {
		r.fail(key, "expected string, got %T", value)
	}
	return s
}

func (r *phpReader) optStr(key string) *string {
	value, ok := r.lookup(key)
	if !ok || value == nil {
		return nil
	}
	s, ok := asString(value)
	if !ok {
		r.fail(key, "expected string, got %T", value)
		return nil
	}
	return &s
}

func (r *phpReader) i64(key string) int64 {
	value, ok := r.lookup(key)
	if !ok {
		r.fail(key, "missing")
		return 0
	}
	n, ok := asInt(value)
	if !ok {
		r.fail(key, "expected integer, got %T", value)
	}
	return n
}

func (r *phpReader) u32(key string) uint32 {
	return uint32(r.i64(key))
}

// i64Alias reads whichever of the two keys is present, reporting the primary
// name when both are missing.
func (r *phpReader) i64Alias(primary, alias string) int64 {
	if _, ok := r.lookup(alias); ok {
		if _, primaryPresent := r.lookup(primary); !primaryPresent {
			return r.i64(alias)
		}
	}
	return r.i64(primary)
}

func (r *phpReader) i32(key string) int32 {
	return int32(r.i64(key))
}

func (r *phpReader) optU32(key string) *uint32 {
	value, ok := r.lookup(key)
	if !ok || value == nil {
		return nil
	}
	n, ok := asInt(value)
	if !ok {
		r.fail(key, "expected integer, got %T", value)
		return nil
	}
	u := uint32(n)
	return &u
}

func (r *phpReader) f64(key string) float64 {
	value, ok := r.lookup(key)
	if !ok {
		r.fail(key, "missing")
		return 0
	}
	f, ok := asFloat(value)
	if !ok {
		r.fail(key, "expected number, got %T", value)
	}
	return f
}

// yn maps the AWBW "Y"/"N" convention onto a bool.
func (r *phpReader) yn(key string) bool {
	switch r.str(key) {
	case "Y", "y":
		return true
	default:
		return false
	}
}

// values returns the sub-arrays of an id-keyed PHP array in ascending key order.
func (r *phpReader) values(key string) []phpArray {
	value, ok := r.lookup(key)
	if !ok {
		r.fail(key, "missing")
		return nil
	}
	nested, ok := asPHPArray(value)
	if !ok {
		r.fail(key, "expected array, got %T", value)
		return nil
	}
	return sortedSubArrays(nested)
}

func sortedSubArrays(arr phpArray) []phpArray {
	keys := make([]int64, 0, len(arr))
	for key := range arr {
		if n, ok := asInt(key); ok {
			keys = append(keys, n)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	out := make([]phpArray, 0, len(keys))
	for _, key := range keys {
		value := lookupIntKey(arr, key)
		if sub, ok := asPHPArray(value); ok {
			out = append(out, sub)
		}
	}
	return out
}

// asPHPArray normalises the two shapes phpserialize produces for PHP arrays:
// maps for associative arrays and slices for sequential integer keys.
func asPHPArray(value interface{}) (phpArray, bool) {
	switch v := value.(type) {
	case phpArray:
		return v, true
	case []interface{}:
		out := make(phpArray, len(v))
		for i, elem := range v {
			out[int64(i)] = elem
		}
		return out, true
	}
	return nil, false
}

// lookupIntKey resolves an integer key regardless of the concrete type the
// unserializer chose for it.
func lookupIntKey(arr phpArray, key int64) interface{} {
	if value, ok := arr[key]; ok {
		return value
	}
	if value, ok := arr[int(key)]; ok {
		return value
	}
	if value, ok := arr[strconv.FormatInt(key, 10)]; ok {
		return value
	}
	return nil
}

func asString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	default:
		return "", false
	}
}

func asInt(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case uint64:
		return int64(v), true
	case float64:
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func asFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
