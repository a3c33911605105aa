package db

import "strings"

// IsUniqueViolation reports whether err is a unique-constraint failure. With
// a constraint name it matches that constraint specifically; without one it
// falls back to the Postgres duplicate-key message. Matching on message text
// keeps the check working under the sqlite test driver too.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value")
}
