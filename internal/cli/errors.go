package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type flagError struct {
	flag string
	msg  string
}

func (e flagError) Error() string {
	return fmt.Sprintf("--%s: %s", e.flag, e.msg)
}

func errFlag(flag, msg string) error {
	return flagError{flag: flag, msg: msg}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// parseAssignments turns repeated key=value flags into a field map.
func parseAssignments(flag string, pairs []string) (map[string]any, error) {
	out := map[string]any{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, errFlag(flag, fmt.Sprintf("want key=value, got %q", p))
		}
		out[k] = v
	}
	if len(out) == 0 {
		return nil, errFlag(flag, "at least one key=value is required")
	}
	return out, nil
}

func optionalID(s string) (*int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
