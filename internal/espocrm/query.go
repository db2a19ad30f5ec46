package espocrm

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
)

// BuildQuery serializes nested params into EspoCRM's flat bracketed
// query-parameter form (arrays indexed by position, objects keyed by name)
// and URL-encodes the result. Map keys are sorted at each level so the
// encoded URL is deterministic.
func BuildQuery(params any) string {
	pairs := url.Values{}
	flatten(pairs, nil, params)
	return pairs.Encode()
}

type segment struct {
	key   string
	index bool
}

func flatten(pairs url.Values, parents []segment, value any) {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flatten(pairs, append(parents, segment{key: k}), v[k])
		}
	case []any:
		for i, item := range v {
			flatten(pairs, append(parents, segment{key: strconv.Itoa(i), index: true}), item)
		}
	default:
		pairs.Set(renderKey(parents), fmt.Sprintf("%v", v))
	}
}

// renderKey joins segments as a[b][0]; array indexes are bracketed even in
// the leading position.
func renderKey(parents []segment) string {
	out := ""
	for i, p := range parents {
		if i == 0 && !p.index {
			out = p.key
			continue
		}
		out += "[" + p.key + "]"
	}
	return out
}
