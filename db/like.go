package db

import "strings"

var likeEscaper = strings.NewReplacer(
	`\`, `\\`,
	"_", `\_`,
	"%", `\%`,
)

// EscapeLike escapes the LIKE wildcards in s using MySQL's default escape character '\',
// so s is matched literally when bound as (part of) a LIKE pattern:
//
//	q.SelectContext(ctx, &names, "SELECT name FROM widgets WHERE name LIKE ?", EscapeLike(prefix)+"%")
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
