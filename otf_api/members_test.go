package otf_api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"
)

func memberFixtureHandler(t *testing.T, detailHits *atomic.Int32, putBodies *[]map[string]any) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/member/members/member-uuid-1":
			if detailHits != nil {
				detailHits.Add(1)
			}
			writeJSON(t, w, map[string]any{"data": testMemberDetailJSON()})
		case r.Method == http.MethodPut && r.URL.Path == "/member/members/member-uuid-1":
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			if putBodies != nil {
				*putBodies = append(*putBodies, body)
			}
			detail := testMemberDetailJSON()
			detail["firstName"] = body["firstName"]
			detail["lastName"] = body["lastName"]
			writeJSON(t, w, map[string]any{"data": detail})
		case r.Method == http.MethodGet && r.URL.Path == "/mobile/v1/studios/"+testHomeStudioUUID:
			writeJSON(t, w, map[string]any{"data": testStudioDetailJSON(testHomeStudioUUID, "OTF Home")})
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
		}
	})
}

func TestMemberDetailSubstitutesHomeStudio(t *testing.T) {
	c := newTestClient(t, memberFixtureHandler(t, nil, nil))

	got, err := c.Members.Detail(context.Background())
	if err != nil {
		t.Fatalf("Detail returned error: %v", err)
	}
	if got.FirstName != "Alex" || got.LastName != "Rivera" {
		t.Fatalf("name = %s %s", got.FirstName, got.LastName)
	}
	if got.HomeStudio == nil || got.HomeStudio.Name != "OTF Home" {
		t.Fatalf("home studio = %+v, want the full detail", got.HomeStudio)
	}
}

func TestUpdateNameNoNamesIsNoOp(t *testing.T) {
	var puts []map[string]any
	c := newTestClient(t, memberFixtureHandler(t, nil, &puts))

	got, err := c.Members.UpdateName(context.Background(), "", "")
	if err != nil {
		t.Fatalf("UpdateName returned error: %v", err)
	}
	if got.FirstName != "Alex" {
		t.Fatalf("FirstName = %q, want the current detail", got.FirstName)
	}
	if len(puts) != 0 {
		t.Fatalf("PUT issued for a no-op update: %v", puts)
	}
}

func TestUpdateNameSameNamesIsNoOp(t *testing.T) {
	var puts []map[string]any
	c := newTestClient(t, memberFixtureHandler(t, nil, &puts))

	if _, err := c.Members.UpdateName(context.Background(), "Alex", "Rivera"); err != nil {
		t.Fatalf("UpdateName returned error: %v", err)
	}
	if len(puts) != 0 {
		t.Fatalf("PUT issued when nothing changed: %v", puts)
	}
}

func TestUpdateNameFillsMissingHalf(t *testing.T) {
	var puts []map[string]any
	c := newTestClient(t, memberFixtureHandler(t, nil, &puts))

	got, err := c.Members.UpdateName(context.Background(), "Sam", "")
	if err != nil {
		t.Fatalf("UpdateName returned error: %v", err)
	}
	if len(puts) != 1 {
		t.Fatalf("PUT count = %d, want 1", len(puts))
	}
	if puts[0]["firstName"] != "Sam" || puts[0]["lastName"] != "Rivera" {
		t.Fatalf("PUT body = %v, want the current last name kept", puts[0])
	}
	if got.FirstName != "Sam" {
		t.Fatalf("FirstName = %q, want Sam", got.FirstName)
	}
}

func TestUpdateNameEvictsCachedDetail(t *testing.T) {
	var detailHits atomic.Int32
	c := newTestClient(t, memberFixtureHandler(t, &detailHits, nil))
	ctx := context.Background()

	if _, err := c.Members.Detail(ctx); err != nil {
		t.Fatalf("Detail returned error: %v", err)
	}
	if _, err := c.Members.UpdateName(ctx, "Sam", "Smith"); err != nil {
		t.Fatalf("UpdateName returned error: %v", err)
	}
	if _, err := c.Members.Detail(ctx); err != nil {
		t.Fatalf("Detail returned error: %v", err)
	}

	// One hit for the first Detail (UpdateName reuses the cache), one after
	// the update invalidated it.
	if got := detailHits.Load(); got != 2 {
		t.Fatalf("detail endpoint hits = %d, want 2", got)
	}
}

func TestUpdateSMSSettingsPreservesUnsetValues(t *testing.T) {
	var postBody map[string]any
	promo := true
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/member/members/member-uuid-1":
			writeJSON(t, w, map[string]any{"data": testMemberDetailJSON()})
		case r.Method == http.MethodGet && r.URL.Path == "/mobile/v1/studios/"+testHomeStudioUUID:
			writeJSON(t, w, map[string]any{"data": testStudioDetailJSON(testHomeStudioUUID, "OTF Home")})
		case r.Method == http.MethodGet && r.URL.Path == "/sms/v1/preferences":
			if got := r.URL.Query().Get("phoneNumber"); got != "5551230000" {
				t.Errorf("phoneNumber = %q", got)
			}
			writeJSON(t, w, map[string]any{"data": map[string]any{
				"isPromotionalSmsOptIn":   promo,
				"isTransactionalSmsOptIn": false,
			}})
		case r.Method == http.MethodPost && r.URL.Path == "/sms/v1/preferences":
			_ = json.NewDecoder(r.Body).Decode(&postBody)
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
		}
	}))

	transactional := true
	got, err := c.Members.UpdateSMSNotificationSettings(context.Background(), nil, &transactional)
	if err != nil {
		t.Fatalf("UpdateSMSNotificationSettings returned error: %v", err)
	}

	// The promotional flag was not supplied, so the current server value is
	// written back unchanged.
	if postBody["promosms"] != true {
		t.Errorf("promosms = %v, want the existing true", postBody["promosms"])
	}
	if postBody["transactionalsms"] != true {
		t.Errorf("transactionalsms = %v, want the override", postBody["transactionalsms"])
	}
	if postBody["source"] != "OTF" {
		t.Errorf("source = %v, want OTF", postBody["source"])
	}
	if postBody["phoneNumber"] != "5551230000" {
		t.Errorf("phoneNumber = %v", postBody["phoneNumber"])
	}
	if got == nil || got.PromotionalOptIn == nil || !*got.PromotionalOptIn {
		t.Errorf("settings after update = %+v", got)
	}
}

func TestBoolOr(t *testing.T) {
	yes, no := true, false
	if !boolOr(&yes, &no) {
		t.Error("override true lost to current false")
	}
	if boolOr(nil, &no) {
		t.Error("nil override should fall back to current")
	}
	if boolOr(nil, nil) {
		t.Error("nil everything should be false")
	}
}
