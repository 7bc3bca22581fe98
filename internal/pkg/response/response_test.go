package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestErrorBodyUsesDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	BadRequest(rr, "Villa not available for selected dates")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["detail"] != "Villa not available for selected dates" {
		t.Fatalf("unexpected detail: %v", body["detail"])
	}
	if body["code"] != "BAD_REQUEST" {
		t.Fatalf("unexpected code: %v", body["code"])
	}
}

func TestOKWritesBareBody(t *testing.T) {
	rr := httptest.NewRecorder()
	OK(rr, map[string]string{"message": "hi"})

	if got := strings.TrimSpace(rr.Body.String()); got != `{"message":"hi"}` {
		t.Fatalf("unexpected body: %s", got)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type: %s", ct)
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	if err := DecodeJSON(req, &dst); err != ErrEmptyBody {
		t.Fatalf("expected ErrEmptyBody, got %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	if err := DecodeJSON(req, &dst); err == nil {
		t.Fatalf("expected syntax error")
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Ana"}`))
	if err := DecodeJSON(req, &dst); err != nil || dst.Name != "Ana" {
		t.Fatalf("unexpected decode result: %v %q", err, dst.Name)
	}
}
