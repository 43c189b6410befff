package storage

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern turns a search term into a lower-cased substring pattern for
// "LOWER(col) LIKE ? ESCAPE '\'", matching % and _ literally.
func LikePattern(search string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
}
