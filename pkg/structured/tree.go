package structured

import (
	"fmt"
	"sort"
	"strconv"
)

// FlattenTree walks a decoded tree of nested maps, slices, and scalars and
// emits one field per scalar leaf. Object keys append ".key" to the path and
// slice elements append "[i]" (0-based); the root path is "$". Map keys are
// visited in sorted order so that identical documents always flatten to the
// same sequence. Nil nodes emit nothing.
func FlattenTree(node any) []Field {
	var fields []Field
	index := 1
	walkTree(node, "$", &fields, &index)
	return fields
}

func walkTree(node any, path string, fields *[]Field, index *int) {
	switch v := node.(type) {
	case nil:
		return
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			walkTree(v[k], path+"."+k, fields, index)
		}
	case map[any]any:
		// Older YAML decoders produce interface-keyed maps.
		keys := make([]string, 0, len(v))
		byKey := make(map[string]any, len(v))
		for k, val := range v {
			ks := fmt.Sprintf("%v", k)
			keys = append(keys, ks)
			byKey[ks] = val
		}
		sort.Strings(keys)
		for _, k := range keys {
			walkTree(byKey[k], path+"."+k, fields, index)
		}
	case []any:
		for i, item := range v {
			walkTree(item, path+"["+strconv.Itoa(i)+"]", fields, index)
		}
	default:
		*fields = append(*fields, Field{
			Path:   path,
			Value:  scalarString(v),
			Index:  *index,
			Line:   -1,
			Column: -1,
		})
		*index++
	}
}

func scalarString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case uint64:
		return strconv.FormatUint(s, 10)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
