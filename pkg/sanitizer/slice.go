package sanitizer

// normalizeSlice applies fn to every item and drops empty results and
// repeats, keeping first-seen order. The result is never nil.
func normalizeSlice(items []string, fn func(string) string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		v := fn(item)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// NormalizeURLs normalizes listing photo links.
func NormalizeURLs(urls []string) []string {
	return normalizeSlice(urls, NormalizeURL)
}

// NormalizeIDs trims and de-duplicates ids while keeping their order.
func NormalizeIDs(ids []string) []string {
	return normalizeSlice(ids, TrimAndNormalize)
}
