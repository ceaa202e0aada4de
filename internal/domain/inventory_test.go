package domain_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/smarthousehold/inventory-service/internal/domain"
)

func date(t *testing.T, s string) *domain.Date {
	t.Helper()
	d, err := domain.ParseDate(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return &d
}

func TestItemRequest_Validate(t *testing.T) {
	valid := domain.ItemRequest{
		Name:       "Milk",
		Category:   "Dairy",
		Quantity:   1,
		Unit:       "L",
		Price:      56,
		ExpiryDate: date(t, "2026-10-21"),
	}

	t.Run("valid request passes", func(t *testing.T) {
		if err := valid.Validate(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("blank name", func(t *testing.T) {
		r := valid
		r.Name = "   "
		if err := r.Validate(); err != domain.ErrInvalidName {
			t.Fatalf("expected ErrInvalidName, got %v", err)
		}
	})

	t.Run("name too long", func(t *testing.T) {
		r := valid
		r.Name = strings.Repeat("x", 201)
		if err := r.Validate(); err != domain.ErrInvalidName {
			t.Fatalf("expected ErrInvalidName, got %v", err)
		}
	})

	t.Run("empty category", func(t *testing.T) {
		r := valid
		r.Category = ""
		if err := r.Validate(); err != domain.ErrInvalidCategory {
			t.Fatalf("expected ErrInvalidCategory, got %v", err)
		}
	})

	t.Run("zero quantity", func(t *testing.T) {
		r := valid
		r.Quantity = 0
		if err := r.Validate(); err != domain.ErrInvalidQuantity {
			t.Fatalf("expected ErrInvalidQuantity, got %v", err)
		}
	})

	t.Run("negative price", func(t *testing.T) {
		r := valid
		r.Price = -1
		if err := r.Validate(); err != domain.ErrInvalidPrice {
			t.Fatalf("expected ErrInvalidPrice, got %v", err)
		}
	})

	t.Run("free item passes", func(t *testing.T) {
		r := valid
		r.Price = 0
		if err := r.Validate(); err != nil {
			t.Fatalf("expected no error for zero price, got %v", err)
		}
	})

	t.Run("missing expiry", func(t *testing.T) {
		r := valid
		r.ExpiryDate = nil
		if err := r.Validate(); err != domain.ErrInvalidExpiry {
			t.Fatalf("expected ErrInvalidExpiry, got %v", err)
		}
	})
}

func TestStatusFor(t *testing.T) {
	cases := map[int]domain.ExpiryStatus{
		0:  domain.StatusRed,
		2:  domain.StatusRed,
		3:  domain.StatusYellow,
		5:  domain.StatusYellow,
		6:  domain.StatusGreen,
		30: domain.StatusGreen,
	}
	for days, want := range cases {
		if got := domain.StatusFor(days); got != want {
			t.Fatalf("days=%d: expected %s, got %s", days, want, got)
		}
	}
}

func TestDate_DaysUntilAcrossDST(t *testing.T) {
	// Europe/Berlin switches to winter time on 2026-10-25.
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	today := domain.DateOf(time.Date(2026, 10, 24, 23, 30, 0, 0, loc), loc)
	expiry := *date(t, "2026-10-26")

	if got := today.DaysUntil(expiry); got != 2 {
		t.Fatalf("expected 2 days, got %d", got)
	}
}

func TestDate_DateOfUsesLocation(t *testing.T) {
	kolkata := time.FixedZone("IST", 5*3600+1800)
	instant := time.Date(2026, 10, 19, 20, 0, 0, 0, time.UTC) // 01:30 next day in IST

	if got := domain.DateOf(instant, kolkata).String(); got != "2026-10-20" {
		t.Fatalf("expected 2026-10-20, got %s", got)
	}
	if got := domain.DateOf(instant, time.UTC).String(); got != "2026-10-19" {
		t.Fatalf("expected 2026-10-19, got %s", got)
	}
}

func TestDate_JSON(t *testing.T) {
	var req domain.ItemRequest
	if err := json.Unmarshal([]byte(`{"expiry_date":"2026-11-02"}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.ExpiryDate == nil || req.ExpiryDate.String() != "2026-11-02" {
		t.Fatalf("unexpected expiry date: %v", req.ExpiryDate)
	}

	if err := json.Unmarshal([]byte(`{"expiry_date":"02/11/2026"}`), &req); err == nil {
		t.Fatal("expected error for non-ISO date")
	}

	b, err := json.Marshal(req.ExpiryDate)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2026-11-02"` {
		t.Fatalf("unexpected JSON %s", b)
	}
}

func TestRegisterTokenRequest_Validate(t *testing.T) {
	r := domain.RegisterTokenRequest{Token: "abc"}
	if err := r.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if r.Platform != domain.PlatformWeb {
		t.Fatalf("expected default platform web, got %s", r.Platform)
	}

	r = domain.RegisterTokenRequest{Token: "abc", Platform: "blackberry"}
	if err := r.Validate(); err != domain.ErrInvalidPlatform {
		t.Fatalf("expected ErrInvalidPlatform, got %v", err)
	}

	r = domain.RegisterTokenRequest{Token: " "}
	if err := r.Validate(); err != domain.ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
