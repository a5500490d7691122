package main

import (
	"strings"
	"testing"
	"time"

	"github.com/turfbook/turfbook/pkg/domain"
)

func TestWhoamiSummary(t *testing.T) {
	u := &domain.User{
		Name:     "Dana",
		Email:    "dana@example.com",
		Role:     domain.RoleUser,
		Verified: true,
	}

	out := whoamiSummary(u, time.Time{})
	if !strings.Contains(out, "Dana <dana@example.com>") {
		t.Errorf("summary missing identity line: %q", out)
	}
	if strings.Contains(out, "role:") {
		t.Error("plain user role should not be printed")
	}
	if strings.Contains(out, "not verified") {
		t.Error("verified user should not be flagged")
	}
}

func TestWhoamiSummaryAdminUnverified(t *testing.T) {
	u := &domain.User{
		Name:  "Root",
		Email: "root@example.com",
		Role:  domain.RoleAdmin,
	}
	exp := time.Date(2026, 9, 30, 12, 0, 0, 0, time.UTC)

	out := whoamiSummary(u, exp)
	if !strings.Contains(out, "role: admin") {
		t.Errorf("admin role should be printed: %q", out)
	}
	if !strings.Contains(out, "email not verified") {
		t.Errorf("unverified flag should be printed: %q", out)
	}
	if !strings.Contains(out, "session valid until") {
		t.Errorf("expiry line should be printed: %q", out)
	}
}
