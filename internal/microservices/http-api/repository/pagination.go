package repository

import "strings"

func offset(page, pageSize int) int {
	if page <= 1 {
		return 0
	}
	return (page - 1) * pageSize
}

// containsClause is a case-insensitive substring match on col, portable
// between postgres and sqlite. Pair it with likePattern.
func containsClause(col string) string {
	return "LOWER(" + col + ") LIKE ? ESCAPE '\\'"
}

// likePattern lowers s and escapes LIKE wildcards.
func likePattern(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
	return "%" + s + "%"
}
