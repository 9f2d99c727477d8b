package utils

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
)

func TestJwtRoundTrip(t *testing.T) {
	t.Setenv("API_SECRET", "test-secret")
	token, err := JwtGenerate(42, "cashier")
	if err != nil {
		t.Fatalf("JwtGenerate: %v", err)
	}
	parsed, err := JwtValidate(token)
	if err != nil || !parsed.Valid {
		t.Fatalf("JwtValidate: %v", err)
	}
	claims, ok := parsed.Claims.(*JwtCustomClaim)
	if !ok || claims.ID != 42 || claims.Role != "cashier" {
		t.Fatalf("claims = %+v", parsed.Claims)
	}

	t.Setenv("API_SECRET", "rotated")
	if _, err := JwtValidate(token); err == nil {
		t.Fatal("token signed with an old secret accepted")
	}
}

func TestTokenLifespan(t *testing.T) {
	t.Setenv("TOKEN_HOUR_LIFESPAN", "")
	if GetTokenLifespan() != 12*time.Hour {
		t.Fatalf("default lifespan = %s", GetTokenLifespan())
	}
	t.Setenv("TOKEN_HOUR_LIFESPAN", "2")
	if GetTokenLifespan() != 2*time.Hour {
		t.Fatalf("lifespan = %s", GetTokenLifespan())
	}
}

func TestInvalidInputWraps(t *testing.T) {
	err := InvalidInput("amount %s is negative", "-5")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatal("InvalidInput does not wrap ErrInvalidInput")
	}
	if err.Error() != "invalid input: amount -5 is negative" {
		t.Fatalf("message = %q", err.Error())
	}
}

func TestIsDuplicateKey(t *testing.T) {
	if !IsDuplicateKey(fmt.Errorf("create: %w", &mysql.MySQLError{Number: 1062})) {
		t.Fatal("wrapped 1062 not detected")
	}
	if IsDuplicateKey(&mysql.MySQLError{Number: 1452}) {
		t.Fatal("foreign key error reported as duplicate")
	}
	if !IsDuplicateKey(ErrDuplicate) {
		t.Fatal("ErrDuplicate not detected")
	}
}

func TestThumbnailKey(t *testing.T) {
	cases := map[string]string{
		"receipts/1/abc.jpg":    "receipts/1/abc_thumb.jpg",
		"receipts/1/abc":        "receipts/1/abc_thumb",
		"receipts/v1.2/receipt": "receipts/v1.2/receipt_thumb",
	}
	for in, want := range cases {
		if got := ThumbnailKey(in); got != want {
			t.Errorf("ThumbnailKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildObjectAccessURL(t *testing.T) {
	t.Setenv("STORAGE_ACCESS_BASE_URL", "")
	t.Setenv("GCS_PUBLIC_BASE_URL", "https://storage.googleapis.com/")
	t.Setenv("GCS_BUCKET", "finops-receipts")
	if got := BuildObjectAccessURL("receipts/1/a.jpg"); got != "https://storage.googleapis.com/finops-receipts/receipts/1/a.jpg" {
		t.Fatalf("public url = %q", got)
	}

	t.Setenv("STORAGE_ACCESS_BASE_URL", "https://cdn.example.com/files?key={objectKey}")
	if got := BuildObjectAccessURL("receipts/1/a.jpg"); got != "https://cdn.example.com/files?key=receipts%2F1%2Fa.jpg" {
		t.Fatalf("templated url = %q", got)
	}
	if BuildObjectAccessURL("") != "" {
		t.Fatal("empty key should give empty url")
	}
}

func TestConvertToDate(t *testing.T) {
	// 20:00 UTC is already the next day in Yangon (+06:30)
	at := time.Date(2024, 1, 31, 20, 0, 0, 0, time.UTC)
	got, err := ConvertToDate(at, "Asia/Yangon")
	if err != nil {
		t.Fatalf("ConvertToDate: %v", err)
	}
	if got.Year() != 2024 || got.Month() != time.February || got.Day() != 1 || got.Hour() != 0 {
		t.Fatalf("ConvertToDate = %s", got)
	}
	if _, err := ConvertToDate(at, "Mars/Olympus"); err == nil {
		t.Fatal("unknown timezone accepted")
	}
}

func TestPasswordHash(t *testing.T) {
	hashed, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := ComparePassword(hashed, "secret123"); err != nil {
		t.Fatalf("ComparePassword: %v", err)
	}
	if ComparePassword(hashed, "secret124") == nil {
		t.Fatal("wrong password accepted")
	}
	if _, err := HashPassword("abc"); err == nil {
		t.Fatal("short password hashed")
	}
}

func TestNormalizePhoneNumber(t *testing.T) {
	got, err := NormalizePhoneNumber("(650) 253-0000", "US")
	if err != nil {
		t.Fatalf("NormalizePhoneNumber: %v", err)
	}
	if got != "+16502530000" {
		t.Fatalf("normalized = %q", got)
	}
	if _, err := NormalizePhoneNumber("12", "US"); err == nil {
		t.Fatal("too short number accepted")
	}
}
