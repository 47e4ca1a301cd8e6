package alibaba

import (
	"fmt"
	"strings"
)

// ParseTag parses an Alibaba resource tag string into a key/value map.
//
// Observed formats:
//
//	key:Environment value:PROD; key:Role value:App
//	key:Environment value:Prod; key:Application_Owner value:x@y.z;
//
// Separator spacing is normalized first, so "a;b", "a; b" and "a  ;  b" all
// parse the same. A pair without "value:" or with an empty key is an error.
func ParseTag(tag string) (map[string]string, error) {
	if strings.TrimSpace(tag) == "" {
		return map[string]string{}, nil
	}

	normalized := strings.TrimSpace(tag)
	normalized = strings.ReplaceAll(normalized, "; ", ";")
	normalized = strings.ReplaceAll(normalized, ";", "; ")
	normalized = strings.TrimRight(normalized, "; ")

	result := map[string]string{}
	for _, pair := range strings.Split(normalized, "; ") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		if !strings.Contains(pair, "value:") {
			return nil, fmt.Errorf("failed to parse tag pair %q: missing 'value:'", pair)
		}

		keyPart, value, _ := strings.Cut(pair, "value:")
		key := strings.TrimSpace(strings.Replace(keyPart, "key:", "", 1))
		if key == "" {
			return nil, fmt.Errorf("failed to parse tag pair %q: empty key", pair)
		}

		result[key] = strings.TrimSpace(value)
	}

	return result, nil
}
