package reconcile

// Merge combines several fetched result sets into one list with a single row
// per key. Rows keep the position of their key's first appearance; a later
// duplicate replaces the kept row only when it ranks strictly higher.
func Merge[T any](key func(T) string, rank func(T) int, sources ...[]T) []T {
	n := 0
	for _, src := range sources {
		n += len(src)
	}
	out := make([]T, 0, n)
	pos := make(map[string]int, n)
	for _, src := range sources {
		for _, row := range src {
			k := key(row)
			i, seen := pos[k]
			if !seen {
				pos[k] = len(out)
				out = append(out, row)
				continue
			}
			if rank(row) > rank(out[i]) {
				out[i] = row
			}
		}
	}
	return out
}
