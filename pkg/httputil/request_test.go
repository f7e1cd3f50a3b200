package httputil

import (
	"net/http/httptest"
	"testing"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantPage int
		wantSize int
	}{
		{name: "defaults", url: "/projects", wantPage: 1, wantSize: 20},
		{name: "explicit", url: "/projects?page=3&page_size=50", wantPage: 3, wantSize: 50},
		{name: "clamped size", url: "/projects?page_size=1000", wantPage: 1, wantSize: 100},
		{name: "invalid values fall back", url: "/projects?page=0&page_size=abc", wantPage: 1, wantSize: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			p := ParsePagination(r)
			if p.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", p.Page, tt.wantPage)
			}
			if p.PageSize != tt.wantSize {
				t.Errorf("PageSize = %d, want %d", p.PageSize, tt.wantSize)
			}
		})
	}
}

func TestPagination_Offset(t *testing.T) {
	p := Pagination{Page: 3, PageSize: 20}
	if p.Offset() != 40 {
		t.Errorf("Offset() = %d, want 40", p.Offset())
	}
}

func TestQueryBool(t *testing.T) {
	r := httptest.NewRequest("GET", "/users?is_active=true", nil)
	val, ok := QueryBool(r, "is_active")
	if !ok || !val {
		t.Errorf("QueryBool() = (%v, %v), want (true, true)", val, ok)
	}

	_, ok = QueryBool(r, "missing")
	if ok {
		t.Error("QueryBool() should report absent parameter")
	}
}
