// Package echo implements the stateless reflection endpoints: the httpbin
// compatible surface plus the legacy /echo_get and /echo_post handlers.
package echo

import (
	"bufio"
	"strconv"
	"strings"

	"fauxhost/pkg/httpx"
	"fauxhost/pkg/utils/logger"

	"github.com/valyala/fasthttp"
)

type Handler struct {
	Log *logger.Logger
}

func NewHandler(log *logger.Logger) *Handler {
	return &Handler{Log: log}
}

// Field order in the response structs matters: it reproduces the JSON key
// order of the service being emulated.

type echoPostResponse struct {
	Args    map[string]string `json:"args"`
	Data    string            `json:"data"`
	JSON    any               `json:"json"`
	Headers map[string]string `json:"headers"`
}

type echoGetResponse struct {
	Args    map[string]string `json:"args"`
	Headers map[string]string `json:"headers"`
	IsPatch *bool             `json:"isPatch,omitempty"`
}

type binGetResponse struct {
	Args    map[string]string `json:"args"`
	Headers map[string]string `json:"headers"`
	Origin  string            `json:"origin"`
	URL     string            `json:"url"`
}

type binBodyResponse struct {
	Args    map[string]string `json:"args"`
	Data    string            `json:"data"`
	Files   map[string]string `json:"files"`
	Form    map[string]string `json:"form"`
	Headers map[string]string `json:"headers"`
	JSON    any               `json:"json"`
	Origin  string            `json:"origin"`
	URL     string            `json:"url"`
}

type cookiesResponse struct {
	Cookies map[string]string `json:"cookies"`
}

type refreshResponse struct {
	Args        map[string]string `json:"args"`
	Headers     map[string]string `json:"headers"`
	PostBody    any               `json:"post_body"`
	AccessToken string            `json:"access_token"`
	ExpiresIn   int               `json:"expires_in"`
}

// Index streams the banner as a single chunk so the response carries no
// Content-Length header. Clients must tolerate responses of undeclared length.
func (h *Handler) Index(ctx *fasthttp.RequestCtx) {
	ctx.SetContentType("text/html; charset=utf-8")
	ctx.SetBodyStreamWriter(func(w *bufio.Writer) {
		w.WriteString("Local Test Server Running")
	})
}

// Fail responds 403 with the non-standard uppercase reason phrase, for
// clients that wrongly hardcode "Forbidden".
func (h *Handler) Fail(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusForbidden)
	ctx.Response.Header.SetStatusMessage([]byte("FORBIDDEN"))
	ctx.SetBodyString("Not authorized")
}

func (h *Handler) EchoPost(ctx *fasthttp.RequestCtx) {
	body := ctx.PostBody()
	httpx.WriteJSON(ctx, &echoPostResponse{
		Args:    httpx.QueryParams(ctx),
		Data:    string(body),
		JSON:    httpx.JSONBody(body),
		Headers: httpx.Headers(ctx),
	})
}

// EchoGet returns the request metadata as JSON when the json=true query
// parameter is set, and otherwise in the legacy textual mapping format some
// downstream client tests assert on literally.
func (h *Handler) EchoGet(ctx *fasthttp.RequestCtx) {
	isPatch := string(ctx.Method()) == fasthttp.MethodPatch

	if string(ctx.QueryArgs().Peek("json")) == "true" {
		resp := &echoGetResponse{
			Args:    httpx.QueryParams(ctx),
			Headers: httpx.Headers(ctx),
		}
		if isPatch {
			t := true
			resp.IsPatch = &t
		}
		httpx.WriteJSON(ctx, resp)
		return
	}

	ctx.SetContentType("text/html; charset=utf-8")
	ctx.SetBodyString(legacyMapString(httpx.QueryPairs(ctx), httpx.HeaderPairs(ctx), isPatch))
}

// Redirect answers 302 with a relative Location, matching the emulated
// service. ctx.Redirect is avoided on purpose: it rewrites the target into an
// absolute URI.
func (h *Handler) Redirect(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusFound)
	ctx.Response.Header.Set(fasthttp.HeaderLocation, "/echo_get?redirected=true")
}

func (h *Handler) BinGet(ctx *fasthttp.RequestCtx) {
	httpx.WriteJSON(ctx, &binGetResponse{
		Args:    httpx.QueryParams(ctx),
		Headers: httpx.Headers(ctx),
		Origin:  ctx.RemoteIP().String(),
		URL:     ctx.URI().String(),
	})
}

// BinBody serves /post, /put, /patch and /delete. The data field is mutually
// exclusive with parsed JSON and form fields: JSON > form > raw data.
func (h *Handler) BinBody(ctx *fasthttp.RequestCtx) {
	body := ctx.PostBody()
	form := httpx.FormValues(ctx)
	jsonValue := httpx.JSONBody(body)

	data := ""
	switch {
	case httpx.IsForm(ctx):
		// the form parser consumed the body
	case string(ctx.Method()) == fasthttp.MethodPost:
		// POST keeps the raw body alongside any parsed JSON
		data = string(body)
	case jsonValue == nil && len(form) == 0:
		data = string(body)
	}

	httpx.WriteJSON(ctx, &binBodyResponse{
		Args:    httpx.QueryParams(ctx),
		Data:    data,
		Files:   map[string]string{},
		Form:    form,
		Headers: httpx.Headers(ctx),
		JSON:    jsonValue,
		Origin:  ctx.RemoteIP().String(),
		URL:     ctx.URI().String(),
	})
}

func (h *Handler) Cookies(ctx *fasthttp.RequestCtx) {
	httpx.WriteJSON(ctx, &cookiesResponse{Cookies: httpx.Cookies(ctx)})
}

// Status responds with the code taken from the path. 400 and 403 carry the
// fixed custom reason phrases.
func (h *Handler) Status(ctx *fasthttp.RequestCtx) {
	codeStr := strings.TrimPrefix(string(ctx.Path()), "/status/")
	code, err := strconv.Atoi(codeStr)
	if err != nil || code < 100 || code > 599 {
		ctx.Error("Not Found", fasthttp.StatusNotFound)
		return
	}

	ctx.SetStatusCode(code)
	switch code {
	case fasthttp.StatusBadRequest:
		ctx.Response.Header.SetStatusMessage([]byte("BAD REQUEST"))
	case fasthttp.StatusForbidden:
		ctx.Response.Header.SetStatusMessage([]byte("FORBIDDEN"))
	}
}

func (h *Handler) Refresh(ctx *fasthttp.RequestCtx) {
	httpx.WriteJSON(ctx, &refreshResponse{
		Args:        httpx.QueryParams(ctx),
		Headers:     httpx.Headers(ctx),
		PostBody:    httpx.JSONBody(ctx.PostBody()),
		AccessToken: "new_access_token",
		ExpiresIn:   3600,
	})
}

// ResponseHeaders copies every query parameter verbatim into the response
// headers. Repeated parameters become repeated headers, which is how
// Set-Cookie handling gets exercised client-side.
func (h *Handler) ResponseHeaders(ctx *fasthttp.RequestCtx) {
	ctx.Response.Header.DisableNormalizing()
	ctx.QueryArgs().VisitAll(func(key, value []byte) {
		ctx.Response.Header.AddBytesKV(key, value)
	})
	ctx.SetBodyString("Headers set")
}
