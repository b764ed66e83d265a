// Package sortutil holds order-preserving slice helpers.
package sortutil

// UniqueInOrder drops repeated strings, keeping the first occurrence of each
// and the original order.
func UniqueInOrder(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, s := range items {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
