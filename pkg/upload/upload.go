// Package upload implements the request-body consumers: multipart uploads and
// the deliberately slow chunked binary reader.
package upload

import (
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
	"time"

	"fauxhost/pkg/httpx"
	"fauxhost/pkg/utils/logger"

	"github.com/valyala/fasthttp"
)

const (
	// binary uploads are drained in 1 KiB chunks with a 50 ms pause after
	// each, so a client streaming N bytes observes ~50ms * ceil(N/1024) of
	// server-side read latency
	binaryChunkSize  = 1024
	binaryChunkDelay = 50 * time.Millisecond

	// bodies shorter than this are echoed back as text instead of as a length
	binaryEchoLimit = 100
)

type Handler struct {
	Log *logger.Logger
}

func NewHandler(log *logger.Logger) *Handler {
	return &Handler{Log: log}
}

// UploadFile requires a multipart field named "file" and echoes the remaining
// form fields as JSON. A missing field answers 404 "No file"; the emulated
// service repurposed 404 as its validation error and clients depend on it.
func (h *Handler) UploadFile(ctx *fasthttp.RequestCtx) {
	h.Log.Info(fmt.Sprintf("Upload: Content-Type=%s Content-Length=%d",
		ctx.Request.Header.ContentType(), ctx.Request.Header.ContentLength()))

	form, err := ctx.MultipartForm()
	if err != nil || len(form.File["file"]) == 0 {
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		ctx.SetBodyString("No file")
		return
	}

	h.Log.Info(fmt.Sprintf("Upload: filename=%s", form.File["file"][0].Filename))
	httpx.WriteJSON(ctx, formFields(form))
}

// UploadMulti accepts any number of file fields and echoes the non-file form
// fields as JSON. File contents are not reflected back.
func (h *Handler) UploadMulti(ctx *fasthttp.RequestCtx) {
	form, err := ctx.MultipartForm()
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		ctx.SetBodyString("No file")
		return
	}

	names := make([]string, 0, len(form.File))
	for name := range form.File {
		names = append(names, name)
	}
	h.Log.Info(fmt.Sprintf("Upload: files=%v", names))

	httpx.WriteJSON(ctx, formFields(form))
}

// UploadBinary drains the raw request body slowly, pausing after every chunk,
// so upload-progress client code sees a genuinely slow consumer. Bodies under
// 100 bytes are echoed back as text; larger ones answer with the decimal byte
// count.
func (h *Handler) UploadBinary(ctx *fasthttp.RequestCtx) {
	var data []byte
	chunk := make([]byte, binaryChunkSize)

	// ReadFull coalesces the short reads a streamed network body produces, so
	// the pause count stays at ceil(N/1024) no matter how the bytes arrive
	body := ctx.RequestBodyStream()
	for {
		n, err := io.ReadFull(body, chunk)
		if n > 0 {
			data = append(data, chunk[:n]...)
			time.Sleep(binaryChunkDelay)
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			h.Log.Error(fmt.Sprintf("Upload: body read failed: %v", err))
			ctx.Error("Internal Server Error", fasthttp.StatusInternalServerError)
			return
		}
	}

	h.Log.Info(fmt.Sprintf("Upload: body length=%d", len(data)))

	if len(data) < binaryEchoLimit {
		ctx.SetBody(data)
		return
	}
	ctx.SetBodyString(strconv.Itoa(len(data)))
}

// formFields flattens the non-file multipart fields, last value wins.
func formFields(form *multipart.Form) map[string]string {
	fields := map[string]string{}
	for key, values := range form.Value {
		if len(values) > 0 {
			fields[key] = values[len(values)-1]
		}
	}
	return fields
}
