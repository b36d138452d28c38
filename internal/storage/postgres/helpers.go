package postgres

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralizes LIKE wildcards in user-supplied search text so
// patterns match literally.
func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}
