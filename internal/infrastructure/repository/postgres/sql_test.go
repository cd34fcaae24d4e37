package postgres

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsNotFound(t *testing.T) {
	if !isNotFound(sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows to be treated as not found")
	}
	if !isNotFound(fmt.Errorf("get league: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped sql.ErrNoRows to be treated as not found")
	}
	if isNotFound(fmt.Errorf("boom")) {
		t.Fatalf("did not expect arbitrary error to be treated as not found")
	}
	if isNotFound(nil) {
		t.Fatalf("did not expect nil to be treated as not found")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	uniqueErr := &pq.Error{Code: "23505", Constraint: "roster_assignments_league_player_unique"}

	if !isUniqueViolation(uniqueErr, "") {
		t.Fatalf("expected 23505 to be a unique violation")
	}
	if !isUniqueViolation(uniqueErr, "roster_assignments_league_player_unique") {
		t.Fatalf("expected constraint match to be a unique violation")
	}
	if isUniqueViolation(uniqueErr, "waiver_windows_open_unique") {
		t.Fatalf("did not expect mismatched constraint to match")
	}
	if isUniqueViolation(&pq.Error{Code: "23503"}, "") {
		t.Fatalf("did not expect foreign key violation to match")
	}
	if isUniqueViolation(fmt.Errorf("boom"), "") {
		t.Fatalf("did not expect plain error to match")
	}
}

func TestOptionalString(t *testing.T) {
	if got := optionalString(nil); got != "" {
		t.Fatalf("expected empty string for nil, got %q", got)
	}
	value := "abc"
	if got := optionalString(&value); got != "abc" {
		t.Fatalf("expected abc, got %q", got)
	}
}
