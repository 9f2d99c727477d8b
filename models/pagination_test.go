package models

import (
	"errors"
	"testing"

	"bitbucket.org/mmdatafocus/finops_backend/utils"
)

func TestCursorRoundTrip(t *testing.T) {
	for _, id := range []int{1, 42, 987654} {
		got, err := DecodeCursor(EncodeCursor(id))
		if err != nil || got != id {
			t.Fatalf("DecodeCursor(EncodeCursor(%d)) = %d, %v", id, got, err)
		}
	}
	if got, err := DecodeCursor(""); err != nil || got != 0 {
		t.Fatalf("empty cursor = %d, %v", got, err)
	}
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	for _, cursor := range []string{"%%%", "bm90LWEtbnVtYmVy", "LTE="} {
		if _, err := DecodeCursor(cursor); !errors.Is(err, utils.ErrInvalidInput) {
			t.Errorf("DecodeCursor(%q): expected ErrInvalidInput, got %v", cursor, err)
		}
	}
}

func TestPageSize(t *testing.T) {
	cases := map[int]int{0: defaultPageSize, -5: defaultPageSize, 10: 10, maxPageSize + 1: maxPageSize}
	for in, want := range cases {
		if got := pageSize(in); got != want {
			t.Errorf("pageSize(%d) = %d, want %d", in, got, want)
		}
	}
}
