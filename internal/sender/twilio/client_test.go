package twilio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClient_SendPostsMessagesResource(t *testing.T) {
	var gotPath, gotTo, gotFrom, gotBody, gotUser, gotPass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotTo = r.FormValue("To")
		gotFrom = r.FormValue("From")
		gotBody = r.FormValue("Body")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM123","status":"queued"}`))
	}))
	defer srv.Close()

	c := New(Config{
		AccountSID: "AC123",
		AuthToken:  "secret",
		FromNumber: "+15550000000",
		BaseURL:    srv.URL,
	})

	if err := c.Send(context.Background(), "+15551234567", "Test alert"); err != nil {
		t.Fatalf("send: %v", err)
	}

	if gotPath != "/2010-04-01/Accounts/AC123/Messages.json" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotUser != "AC123" || gotPass != "secret" {
		t.Fatalf("unexpected basic auth: %s/%s", gotUser, gotPass)
	}
	if gotTo != "+15551234567" || gotFrom != "+15550000000" || gotBody != "Test alert" {
		t.Fatalf("unexpected form: to=%s from=%s body=%s", gotTo, gotFrom, gotBody)
	}
}

func TestClient_SendSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":21604,"message":"A 'To' phone number is required.","status":400}`))
	}))
	defer srv.Close()

	c := New(Config{AccountSID: "AC123", AuthToken: "secret", FromNumber: "+15550000000", BaseURL: srv.URL})

	err := c.Send(context.Background(), "", "hi")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "21604") {
		t.Fatalf("expected provider error code in message, got %v", err)
	}
}

func TestClient_SendUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(Config{AccountSID: "AC123", AuthToken: "secret", FromNumber: "+15550000000", BaseURL: srv.URL})

	err := c.Send(context.Background(), "+1", "hi")
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("expected status error, got %v", err)
	}
}
