// Package cache provides TTL'd key-value stores backing analysis
// results and external lookup results: in-memory, SQLite, MySQL and
// Redis implementations of core.CacheStore.
package cache

import "strings"

// escapeLike escapes LIKE wildcards in a prefix so prefix deletion
// matches literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
