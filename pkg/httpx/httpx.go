// Package httpx provides typed accessors over fasthttp request contexts so the
// handler packages can echo request metadata without re-implementing the same
// VisitAll loops.
package httpx

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/valyala/fasthttp"
)

// KV is a single key/value pair with its original position preserved.
// Used where the echoed output depends on insertion order.
type KV struct {
	Key   string
	Value string
}

// QueryParams returns the query string as a flat map, last value wins on
// duplicate keys.
func QueryParams(ctx *fasthttp.RequestCtx) map[string]string {
	params := map[string]string{}
	ctx.QueryArgs().VisitAll(func(key, value []byte) {
		params[string(key)] = string(value)
	})
	return params
}

// QueryPairs returns the query parameters in the order they appeared on the
// request line, duplicates included.
func QueryPairs(ctx *fasthttp.RequestCtx) []KV {
	var pairs []KV
	ctx.QueryArgs().VisitAll(func(key, value []byte) {
		pairs = append(pairs, KV{Key: string(key), Value: string(value)})
	})
	return pairs
}

// Headers returns the request headers as a flat map, last value wins.
func Headers(ctx *fasthttp.RequestCtx) map[string]string {
	headers := map[string]string{}
	ctx.Request.Header.VisitAll(func(key, value []byte) {
		headers[string(key)] = string(value)
	})
	return headers
}

// HeaderPairs returns the request headers in wire order, duplicates included.
func HeaderPairs(ctx *fasthttp.RequestCtx) []KV {
	var pairs []KV
	ctx.Request.Header.VisitAll(func(key, value []byte) {
		pairs = append(pairs, KV{Key: string(key), Value: string(value)})
	})
	return pairs
}

// Cookies returns the request cookies as a name → value map.
func Cookies(ctx *fasthttp.RequestCtx) map[string]string {
	cookies := map[string]string{}
	ctx.Request.Header.VisitAllCookie(func(key, value []byte) {
		cookies[string(key)] = string(value)
	})
	return cookies
}

// JSONBody attempts to parse body as JSON regardless of the request
// Content-Type. Returns nil on empty or malformed input, never an error.
func JSONBody(body []byte) any {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil
	}
	return v
}

// IsForm reports whether the request carries a form-encoded body
// (urlencoded or multipart), i.e. whether a form parser would have
// consumed the raw body.
func IsForm(ctx *fasthttp.RequestCtx) bool {
	contentType := string(ctx.Request.Header.ContentType())
	return strings.HasPrefix(contentType, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(contentType, "multipart/form-data")
}

// FormValues returns the non-file form fields from either an urlencoded or a
// multipart body, last value wins. Returns an empty map when the body is not
// form-encoded.
func FormValues(ctx *fasthttp.RequestCtx) map[string]string {
	fields := map[string]string{}

	contentType := string(ctx.Request.Header.ContentType())
	if strings.HasPrefix(contentType, "multipart/form-data") {
		form, err := ctx.MultipartForm()
		if err != nil {
			return fields
		}
		for key, values := range form.Value {
			if len(values) > 0 {
				fields[key] = values[len(values)-1]
			}
		}
		return fields
	}

	ctx.PostArgs().VisitAll(func(key, value []byte) {
		fields[string(key)] = string(value)
	})
	return fields
}

// WriteJSON marshals v and writes it as an application/json response body.
func WriteJSON(ctx *fasthttp.RequestCtx, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		ctx.Error("Internal Server Error", fasthttp.StatusInternalServerError)
		return err
	}
	ctx.SetContentType("application/json")
	ctx.SetBody(data)
	return nil
}
