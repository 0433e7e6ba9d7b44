// Package envelope locates the list of raw entries inside the outer
// JSON or proxy wrapper an upstream (or a CORS proxy sitting in front
// of it) uses to carry its payload.
package envelope

// entryPaths is the detection order for JSON envelopes. The first
// path resolving to a list wins.
var entryPaths = [][]string{
	{"items"},
	{"entries"},
	{"feed", "items"},
	{"data", "items"},
}

// Entries returns the ordered list of raw entry objects carried by
// payload, or an empty slice when no recognized shape is found. It
// never returns nil and never panics, whatever the input.
func Entries(payload any) []map[string]any {
	if payload == nil {
		return []map[string]any{}
	}

	if list, ok := asEntryList(payload); ok {
		return list
	}

	root, ok := payload.(map[string]any)
	if !ok {
		return []map[string]any{}
	}

	for _, path := range entryPaths {
		if list, ok := asEntryList(lookup(root, path)); ok {
			return list
		}
	}

	return []map[string]any{}
}

// Contents extracts the raw text blob of a proxy envelope, i.e. a
// string-valued "contents" field wrapping un-parsed XML or HTML.
func Contents(payload any) (string, bool) {
	root, ok := payload.(map[string]any)
	if !ok {
		return "", false
	}
	text, ok := root["contents"].(string)
	if !ok || text == "" {
		return "", false
	}
	return text, true
}

// Title probes the envelope for a feed-level title, used as the
// record source name when present.
func Title(payload any) string {
	root, ok := payload.(map[string]any)
	if !ok {
		return ""
	}
	if title, ok := root["title"].(string); ok {
		return title
	}
	if feed, ok := root["feed"].(map[string]any); ok {
		if title, ok := feed["title"].(string); ok {
			return title
		}
	}
	return ""
}

func lookup(root map[string]any, path []string) any {
	var current any = root
	for _, key := range path {
		node, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = node[key]
	}
	return current
}

func asEntryList(value any) ([]map[string]any, bool) {
	switch list := value.(type) {
	case []map[string]any:
		return list, true
	case []any:
		entries := make([]map[string]any, 0, len(list))
		for _, element := range list {
			if entry, ok := element.(map[string]any); ok {
				entries = append(entries, entry)
			}
		}
		return entries, true
	default:
		return nil, false
	}
}
