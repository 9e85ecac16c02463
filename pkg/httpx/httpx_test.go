package httpx

import (
	"reflect"
	"testing"

	"github.com/valyala/fasthttp"
)

func newCtx(t *testing.T, build func(req *fasthttp.Request)) *fasthttp.RequestCtx {
	t.Helper()
	var req fasthttp.Request
	build(&req)
	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	return ctx
}

func TestQueryParams_LastValueWins(t *testing.T) {
	ctx := newCtx(t, func(req *fasthttp.Request) {
		req.SetRequestURI("http://test/echo?a=1&b=2&a=3")
	})

	params := QueryParams(ctx)
	want := map[string]string{"a": "3", "b": "2"}
	if !reflect.DeepEqual(params, want) {
		t.Errorf("Got %v, want %v", params, want)
	}
}

func TestQueryPairs_PreservesOrderAndDuplicates(t *testing.T) {
	ctx := newCtx(t, func(req *fasthttp.Request) {
		req.SetRequestURI("http://test/echo?a=1&b=2&a=3")
	})

	pairs := QueryPairs(ctx)
	want := []KV{{"a", "1"}, {"b", "2"}, {"a", "3"}}
	if !reflect.DeepEqual(pairs, want) {
		t.Errorf("Got %v, want %v", pairs, want)
	}
}

func TestHeaders(t *testing.T) {
	ctx := newCtx(t, func(req *fasthttp.Request) {
		req.SetRequestURI("http://test/echo")
		req.Header.Set("X-Header", "val")
	})

	headers := Headers(ctx)
	if headers["X-Header"] != "val" {
		t.Errorf("Expected X-Header val, got %v", headers)
	}
}

func TestCookies(t *testing.T) {
	ctx := newCtx(t, func(req *fasthttp.Request) {
		req.SetRequestURI("http://test/echo")
		req.Header.SetCookie("c1", "v1")
		req.Header.SetCookie("c2", "v2")
	})

	cookies := Cookies(ctx)
	want := map[string]string{"c1": "v1", "c2": "v2"}
	if !reflect.DeepEqual(cookies, want) {
		t.Errorf("Got %v, want %v", cookies, want)
	}
}

// JSONBody never fails: nil for empty or malformed input, ignoring the
// declared Content-Type entirely.
func TestJSONBody(t *testing.T) {
	if v := JSONBody(nil); v != nil {
		t.Errorf("Expected nil for empty body, got %v", v)
	}
	if v := JSONBody([]byte("   ")); v != nil {
		t.Errorf("Expected nil for blank body, got %v", v)
	}
	if v := JSONBody([]byte("{broken")); v != nil {
		t.Errorf("Expected nil for malformed body, got %v", v)
	}

	v := JSONBody([]byte(`{"test":"data"}`))
	want := map[string]any{"test": "data"}
	if !reflect.DeepEqual(v, want) {
		t.Errorf("Got %v, want %v", v, want)
	}
}

func TestFormValues_Urlencoded(t *testing.T) {
	ctx := newCtx(t, func(req *fasthttp.Request) {
		req.SetRequestURI("http://test/echo")
		req.Header.SetMethod(fasthttp.MethodPost)
		req.Header.SetContentType("application/x-www-form-urlencoded")
		req.SetBodyString("a=1&b=2")
	})

	if !IsForm(ctx) {
		t.Error("Expected an urlencoded body to be recognized as a form")
	}
	form := FormValues(ctx)
	want := map[string]string{"a": "1", "b": "2"}
	if !reflect.DeepEqual(form, want) {
		t.Errorf("Got %v, want %v", form, want)
	}
}

func TestFormValues_NotAForm(t *testing.T) {
	ctx := newCtx(t, func(req *fasthttp.Request) {
		req.SetRequestURI("http://test/echo")
		req.Header.SetMethod(fasthttp.MethodPost)
		req.Header.SetContentType("application/json")
		req.SetBodyString(`{"a":1}`)
	})

	if IsForm(ctx) {
		t.Error("JSON body must not be recognized as a form")
	}
	if form := FormValues(ctx); len(form) != 0 {
		t.Errorf("Expected no form fields, got %v", form)
	}
}

func TestWriteJSON(t *testing.T) {
	ctx := &fasthttp.RequestCtx{}
	if err := WriteJSON(ctx, map[string]string{"k": "v"}); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	if got := string(ctx.Response.Header.ContentType()); got != "application/json" {
		t.Errorf("Expected application/json, got %q", got)
	}
	if got := string(ctx.Response.Body()); got != `{"k":"v"}` {
		t.Errorf("Unexpected body %q", got)
	}
}
