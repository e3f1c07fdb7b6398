package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouter_MethodRouting(t *testing.T) {
	r := New()

	r.Get("/resource", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/resource", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/resource", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/resource", nil))
	assert.Equal(t, http.StatusCreated, w.Code)

	// No DELETE registered for the pattern.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/resource", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRouter_MiddlewareOrder(t *testing.T) {
	var order []string

	named := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, "before:"+name)
				next.ServeHTTP(w, r)
				order = append(order, "after:"+name)
			})
		}
	}

	r := New(named("global"))
	r.Get("/test", func(w http.ResponseWriter, _ *http.Request) {
		order = append(order, "handler")
	}, named("route"))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, []string{
		"before:global",
		"before:route",
		"handler",
		"after:route",
		"after:global",
	}, order)
}

func TestRouter_GroupInheritsChain(t *testing.T) {
	var seen []string

	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = append(seen, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	r := New(mark("global"))
	group := r.Group(mark("group"))
	group.Get("/grouped", func(w http.ResponseWriter, _ *http.Request) {})

	// Routes on the parent are unaffected by the group's middleware.
	r.Get("/plain", func(w http.ResponseWriter, _ *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/grouped", nil))
	assert.Equal(t, []string{"global", "group"}, seen)

	seen = nil
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/plain", nil))
	assert.Equal(t, []string{"global"}, seen)
}
