package http

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseRosterCSV(t *testing.T) {
	in := "username,role,password,id\n" +
		"mai,student,s3cret,u-01\n" +
		"prof-lan, author ,hunter2,\n"
	entries, err := parseRosterCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != "u-01" || entries[0].Username != "mai" || entries[0].Role != "student" {
		t.Fatalf("entry 0 mismatch: %+v", entries[0])
	}
	// Columns are trimmed and roles lower-cased; missing id stays empty for minting.
	if entries[1].Role != "author" || entries[1].ID != "" {
		t.Fatalf("entry 1 mismatch: %+v", entries[1])
	}
}

func TestParseRosterCSV_UsernameOnly(t *testing.T) {
	entries, err := parseRosterCSV(strings.NewReader("username\nmai\nlinh\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 || entries[0].Username != "mai" || entries[1].Username != "linh" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestParseRosterCSV_MissingUsernameColumn(t *testing.T) {
	if _, err := parseRosterCSV(strings.NewReader("id,role\nu-01,student\n")); err == nil {
		t.Fatalf("expected error for roster without a username column")
	}
}

func TestDecodeRoster_JSONBody(t *testing.T) {
	r := httptest.NewRequest("POST", "/users/bulk",
		strings.NewReader(`[{"username":"mai","password":"s3cret"}]`))
	r.Header.Set("Content-Type", "application/json")
	entries, err := decodeRoster(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].Username != "mai" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestDecodeRoster_MultipartCSV(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "class.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := fw.Write([]byte("username,password\nmai,s3cret\n")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = mw.Close()

	r := httptest.NewRequest("POST", "/users/bulk", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	entries, err := decodeRoster(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 1 || entries[0].Username != "mai" || entries[0].Password != "s3cret" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}
