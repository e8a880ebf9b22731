package db

import (
	"errors"
	"testing"
)

func TestIsUniqueViolation(t *testing.T) {
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil error should not match")
	}
	pgErr := errors.New(`ERROR: duplicate key value violates unique constraint "ux_waitlist_event_position" (SQLSTATE 23505)`)
	if !IsUniqueViolation(pgErr, "") {
		t.Fatal("expected postgres duplicate key to match")
	}
	if !IsUniqueViolation(pgErr, "ux_waitlist_event_position") {
		t.Fatal("expected named constraint to match")
	}
	if IsUniqueViolation(pgErr, "ux_engagement_trends_date") {
		t.Fatal("different constraint name should not match")
	}
	sqliteErr := errors.New("UNIQUE constraint failed: engagement_trends.date")
	if !IsUniqueViolation(sqliteErr, "") {
		t.Fatal("expected sqlite unique violation to match")
	}
	if !IsUniqueViolation(sqliteErr, "ux_engagement_trends_date") {
		t.Fatal("sqlite violations should match regardless of constraint name")
	}
}
