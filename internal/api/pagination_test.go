package api

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func paramsFor(t *testing.T, query string) (int, int) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return pageParams(c)
}

func TestPageParams(t *testing.T) {
	cases := []struct {
		query    string
		page     int
		pageSize int
	}{
		{"", 1, 20},
		{"page=3", 3, 20},
		{"page=3&page_size=50", 3, 50},
		{"page=0", 1, 20},        // invalid page falls back
		{"page=-2", 1, 20},       // negative falls back
		{"page_size=500", 1, 20}, // size capped, falls back
		{"page=abc", 1, 20},      // non-numeric falls back
	}
	for _, tc := range cases {
		page, pageSize := paramsFor(t, tc.query)
		if page != tc.page || pageSize != tc.pageSize {
			t.Errorf("pageParams(%q) = (%d, %d), want (%d, %d)", tc.query, page, pageSize, tc.page, tc.pageSize)
		}
	}
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total    int64
		pageSize int
		want     int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{100, 30, 4},
	}
	for _, tc := range cases {
		if got := totalPages(tc.total, tc.pageSize); got != tc.want {
			t.Errorf("totalPages(%d, %d) = %d, want %d", tc.total, tc.pageSize, got, tc.want)
		}
	}
}
