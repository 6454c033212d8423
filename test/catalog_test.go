package test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
)

// newFakeCatalog serves a small exerciseinfo page for every category.
func newFakeCatalog() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/exerciseinfo/") {
			http.NotFound(w, r)
			return
		}
		category := r.URL.Query().Get("category")

		var results []string
		for i := 1; i <= 6; i++ {
			results = append(results, fmt.Sprintf(`{
				"id": %s0%d,
				"name": "",
				"category": {"id": %s, "name": "Category %s"},
				"muscles": [{"id": 1, "name": "Biceps brachii", "name_en": "Biceps"}],
				"muscles_secondary": [],
				"equipment": [{"id": 7, "name": "none (bodyweight exercise)"}],
				"images": [],
				"translations": [{"name": "Move %s-%d", "description": "<p>Do it.</p>", "language": 2}]
			}`, category, i, category, category, category, i))
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"count": %d, "results": [%s]}`, len(results), strings.Join(results, ","))
	}))
}
