package db

import "strings"

// IsUniqueViolation reports whether the provided error is a unique constraint
// violation, optionally scoped to one named constraint. sqlite reports the
// violated columns rather than the constraint name, so the name filter only
// applies to the Postgres wording; this keeps repository tests on sqlite
// behaving like production.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()

	if strings.Contains(msg, "UNIQUE constraint failed") {
		return true
	}
	if !strings.Contains(msg, "duplicate key value") {
		return false
	}
	if constraintName == "" {
		return true
	}
	return strings.Contains(msg, constraintName)
}
