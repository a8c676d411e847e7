package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	executor "github.com/hanpama/graphmask/internal/executor"
	mask "github.com/hanpama/graphmask/internal/mask"
	schema "github.com/hanpama/graphmask/internal/schema"
)

const testSDL = `
type Query {
  hello: String!
  secret: String!
}
`

type roleKey struct{}

func roleOf(ctx context.Context) string {
	role, _ := ctx.Value(roleKey{}).(string)
	return role
}

// newTestHandler serves a two-field schema where "secret" is visible only to
// requests carrying "X-Role: admin".
func newTestHandler(t *testing.T, opts ...Option) *Handler {
	t.Helper()
	sch, err := schema.BuildFromSDL("test.graphql", testSDL)
	if err != nil {
		t.Fatalf("build schema: %v", err)
	}
	runtime := executor.NewMapRuntime(map[string]executor.Resolver{
		"Query.hello":  executor.ValueResolver("world"),
		"Query.secret": executor.ValueResolver("classified"),
	})
	m := mask.New(func(ctx context.Context, member schema.Member) bool {
		return member.MemberName() == "secret" && roleOf(ctx) != "admin"
	})
	opts = append([]Option{
		WithContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			if role := r.Header.Get("X-Role"); role != "" {
				ctx = context.WithValue(ctx, roleKey{}, role)
			}
			return ctx
		}),
	}, opts...)
	h, err := New(runtime, sch, m, opts...)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return h
}

func postQuery(t *testing.T, h *Handler, query string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]any{"query": query})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var res map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return res
}

func firstErrorMessage(t *testing.T, res map[string]any) string {
	t.Helper()
	errs, ok := res["errors"].([]any)
	if !ok || len(errs) == 0 {
		t.Fatalf("expected errors in response, got %v", res)
	}
	msg, _ := errs[0].(map[string]any)["message"].(string)
	return msg
}

func TestPostQuery(t *testing.T) {
	h := newTestHandler(t)
	w := postQuery(t, h, `{ hello }`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	res := decodeResult(t, w)
	data, _ := res["data"].(map[string]any)
	if data["hello"] != "world" {
		t.Fatalf("unexpected data: %v", res)
	}
	if _, ok := res["errors"]; ok {
		t.Fatalf("unexpected errors: %v", res)
	}
}

func TestGetQuery(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/graphql?query="+url.QueryEscape("{ hello }"), nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	res := decodeResult(t, w)
	data, _ := res["data"].(map[string]any)
	if data["hello"] != "world" {
		t.Fatalf("unexpected data: %v", res)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodPut, "/graphql", strings.NewReader("{}"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}

func TestInvalidJSON(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestBodyTooLarge(t *testing.T) {
	h := newTestHandler(t, WithMaxBodyBytes(16))
	w := postQuery(t, h, `{ hello hello2: hello hello3: hello }`, nil)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", w.Code)
	}
}

func TestRoleHeaderMasking(t *testing.T) {
	h := newTestHandler(t)

	// Without the role the field reads as nonexistent.
	w := postQuery(t, h, `{ secret }`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	res := decodeResult(t, w)
	want := "Field 'secret' doesn't exist on type 'Query'"
	if got := firstErrorMessage(t, res); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	// A field that never existed produces the identical message shape.
	w = postQuery(t, h, `{ bogus }`, nil)
	res = decodeResult(t, w)
	if got := firstErrorMessage(t, res); got != "Field 'bogus' doesn't exist on type 'Query'" {
		t.Fatalf("unexpected message: %q", got)
	}

	// With the role the same query succeeds.
	w = postQuery(t, h, `{ secret }`, map[string]string{"X-Role": "admin"})
	res = decodeResult(t, w)
	if _, ok := res["errors"]; ok {
		t.Fatalf("unexpected errors: %v", res)
	}
	data, _ := res["data"].(map[string]any)
	if data["secret"] != "classified" {
		t.Fatalf("unexpected data: %v", res)
	}
}

func TestIntrospectionIsMasked(t *testing.T) {
	h := newTestHandler(t)

	query := `{ __type(name: "Query") { fields { name } } }`
	fieldNames := func(res map[string]any) []string {
		typ := res["data"].(map[string]any)["__type"].(map[string]any)
		var names []string
		for _, f := range typ["fields"].([]any) {
			names = append(names, f.(map[string]any)["name"].(string))
		}
		return names
	}

	res := decodeResult(t, postQuery(t, h, query, nil))
	for _, n := range fieldNames(res) {
		if n == "secret" {
			t.Fatalf("hidden field listed in introspection: %v", res)
		}
	}

	res = decodeResult(t, postQuery(t, h, query, map[string]string{"X-Role": "admin"}))
	found := false
	for _, n := range fieldNames(res) {
		if n == "secret" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected secret field for admin role: %v", res)
	}
}

func TestBatchRequest(t *testing.T) {
	h := newTestHandler(t)
	body := `[{"query":"{ hello }"},{"query":"{ secret }"}]`
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var results []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &results); err != nil {
		t.Fatalf("decode batch response %q: %v", w.Body.String(), err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if data, _ := results[0]["data"].(map[string]any); data["hello"] != "world" {
		t.Fatalf("unexpected first result: %v", results[0])
	}
	if got := firstErrorMessage(t, results[1]); got != "Field 'secret' doesn't exist on type 'Query'" {
		t.Fatalf("unexpected second result: %v", results[1])
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestHandler(t, WithCORS("https://example.com"))
	req := httptest.NewRequest(http.MethodOptions, "/graphql", nil)
	req.Header.Set("Origin", "https://example.com")
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://example.com" {
		t.Fatalf("unexpected allow-origin: %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got != "GET,POST,OPTIONS" {
		t.Fatalf("unexpected allow-methods: %q", got)
	}
}

func TestCORSDisallowedOrigin(t *testing.T) {
	h := newTestHandler(t, WithCORS("https://example.com"))
	w := postQuery(t, h, `{ hello }`, map[string]string{"Origin": "https://evil.test"})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no allow-origin header, got %q", got)
	}
}

func TestValidationErrorLocations(t *testing.T) {
	h := newTestHandler(t)
	w := postQuery(t, h, "{\n  hello\n  bogus\n}", nil)
	res := decodeResult(t, w)
	errs := res["errors"].([]any)
	first := errs[0].(map[string]any)
	ext, ok := first["extensions"].(map[string]any)
	if !ok {
		t.Fatalf("expected extensions with locations: %v", first)
	}
	if _, ok := ext["locations"]; !ok {
		t.Fatalf("expected locations in extensions: %v", ext)
	}
	if res["data"] != nil {
		t.Fatalf("expected null data on validation failure, got %v", res["data"])
	}
}
