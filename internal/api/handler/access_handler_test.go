package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/ledgerbook/bookkeeper/internal/core/domain"
)

func TestAccessHandler_Me(t *testing.T) {
	e := newEcho()
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	expired := now.Add(-time.Hour)
	h := NewAccessHandler(&stubAccessService{})
	h.now = func() time.Time { return now }

	c, rec := newRequest(e, http.MethodGet, "/v1/me", "")
	c.Set("user", &domain.User{ID: 10, Role: domain.RoleUser, AccessExpiry: &expired})
	serve(t, e, c, h.Me)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp meResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.User.ID != 10 || resp.HasAccess {
		t.Fatalf("unexpected body %+v", resp)
	}
}

func TestAccessHandler_GrantAccess(t *testing.T) {
	e := newEcho()
	var gotID int64
	var gotDays int
	h := NewAccessHandler(&stubAccessService{
		grantAccess: func(_ context.Context, userID int64, days int) (*domain.User, error) {
			gotID, gotDays = userID, days
			return &domain.User{ID: userID}, nil
		},
	})

	c, rec := newRequest(e, http.MethodPost, "/v1/admin/users/55/access", `{"days":14}`, "id", "55")
	serve(t, e, c, h.GrantAccess)

	if rec.Code != http.StatusOK || gotID != 55 || gotDays != 14 {
		t.Fatalf("code=%d id=%d days=%d", rec.Code, gotID, gotDays)
	}

	c, _ = newRequest(e, http.MethodPost, "/v1/admin/users/55/access", `{"days":-3}`, "id", "55")
	if code := httpCode(h.GrantAccess(c)); code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for negative days, got %d", code)
	}
}

func TestAccessHandler_RemoveProtectedAdmin(t *testing.T) {
	e := newEcho()
	h := NewAccessHandler(&stubAccessService{
		removeAdmin: func(context.Context, int64) (*domain.User, error) {
			return nil, domain.ErrProtectedAdmin
		},
	})

	c, _ := newRequest(e, http.MethodDelete, "/v1/admin/users/1/admin", "", "id", "1")
	if err := h.RemoveAdmin(c); !errors.Is(err, domain.ErrProtectedAdmin) {
		t.Fatalf("expected ErrProtectedAdmin, got %v", err)
	}
}

func TestAccessHandler_GrantAll(t *testing.T) {
	e := newEcho()
	h := NewAccessHandler(&stubAccessService{
		grantAll: func(_ context.Context, days int) (int, error) {
			if days != 0 {
				t.Fatalf("expected default days, got %d", days)
			}
			return 3, nil
		},
	})

	c, rec := newRequest(e, http.MethodPost, "/v1/admin/access/grant-all", `{}`)
	serve(t, e, c, h.GrantAll)

	if rec.Body.String() != "{\"updated\":3}\n" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}
