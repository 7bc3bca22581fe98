package villa

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlerListAndGet(t *testing.T) {
	repo := newMemRepo(&Villa{ID: "villa-1", Name: "Apollo's Sanctuary", MaxGuests: 2, PricePerNight: 850, SortOrder: 1})
	h := NewHandler(fixedService(repo))
	router := h.Routes()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var list []VillaResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || list[0].Amenities == nil {
		t.Fatalf("unexpected list: %+v", list)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/villa-99", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"detail":"Villa not found"`) {
		t.Fatalf("unexpected body: %s", rr.Body.String())
	}
}

func TestHandlerCreateValidatesAndConflicts(t *testing.T) {
	repo := newMemRepo(&Villa{ID: "villa-1", Name: "Apollo's Sanctuary", MaxGuests: 2, PricePerNight: 850})
	router := NewHandler(fixedService(repo)).AdminRoutes()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"id":"villa-11","name":"X"}`)))
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rr.Code, rr.Body.String())
	}

	body := `{"id":"villa-1","name":"Duplicate","max_guests":2,"price_per_night":100}`
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rr.Code, rr.Body.String())
	}

	body = `{"id":"villa-11","name":"Juno's Court","max_guests":3,"price_per_night":990,"amenities":["Atrium"]}`
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
}
