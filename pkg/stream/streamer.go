// Package stream serves files under /files/ with range support and paced
// chunk delivery, so download clients can be exercised against slow and
// partial transfers.
package stream

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fauxhost/pkg/utils/logger"

	"github.com/valyala/fasthttp"
)

const (
	defaultChunkSize = 64 * 1024

	httpTimeFormat = "Mon, 02 Jan 2006 15:04:05 GMT"
)

type Streamer struct {
	root      string
	delays    map[string]time.Duration
	chunkSize int64
	log       *logger.Logger
}

// NewStreamer serves files under root. delays maps filename to the target
// total streaming duration for that file; files absent from the table are
// delivered at full speed.
func NewStreamer(root string, delays map[string]time.Duration, log *logger.Logger) *Streamer {
	if delays == nil {
		delays = map[string]time.Duration{}
	}
	return &Streamer{
		root:      root,
		delays:    delays,
		chunkSize: defaultChunkSize,
		log:       log,
	}
}

// ServeFile handles GET /files/{filename}: resolve the file, resolve the
// requested byte range, then stream it in fixed-size chunks with an
// inter-chunk delay chosen so the whole transfer takes the configured target
// duration. Pacing is inter-chunk so time-to-first-byte stays low.
func (s *Streamer) ServeFile(ctx *fasthttp.RequestCtx) {
	filename := strings.TrimPrefix(string(ctx.Path()), "/files/")

	path := filepath.Join(s.root, filename)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		ctx.SetBodyString("File not found")
		return
	}

	totalSize := info.Size()
	rng := ResolveRange(string(ctx.Request.Header.Peek(fasthttp.HeaderRange)), totalSize)
	if !rng.Satisfiable() {
		ctx.SetStatusCode(fasthttp.StatusRequestedRangeNotSatisfiable)
		ctx.SetBodyString("Requested Range Not Satisfiable")
		return
	}

	contentLength := rng.Length()
	targetDuration := s.delays[filename]
	numChunks := (contentLength + s.chunkSize - 1) / s.chunkSize

	var delayPerChunk time.Duration
	if targetDuration > 0 && numChunks > 0 {
		delayPerChunk = targetDuration / time.Duration(numChunks)
	}

	f, err := os.Open(path)
	if err != nil {
		s.log.Error(fmt.Sprintf("Unable to open %s: %v", path, err))
		ctx.Error("Internal Server Error", fasthttp.StatusInternalServerError)
		return
	}
	if _, err := f.Seek(rng.Start, io.SeekStart); err != nil {
		f.Close()
		s.log.Error(fmt.Sprintf("Unable to seek %s to %d: %v", path, rng.Start, err))
		ctx.Error("Internal Server Error", fasthttp.StatusInternalServerError)
		return
	}

	s.log.Info(fmt.Sprintf("Serving %s (range %d-%d, %d bytes) in %d chunks with %s delay/chunk",
		filename, rng.Start, rng.End, contentLength, numChunks, delayPerChunk))

	header := &ctx.Response.Header
	header.Set(fasthttp.HeaderAcceptRanges, "bytes")
	header.Set(fasthttp.HeaderETag, fmt.Sprintf("\"%d-%d\"", info.ModTime().Unix(), totalSize))
	header.Set(fasthttp.HeaderLastModified, info.ModTime().UTC().Format(httpTimeFormat))
	header.Set(fasthttp.HeaderContentDisposition, "attachment; filename="+filename)
	if strings.HasSuffix(strings.ToLower(filename), ".zip") {
		ctx.SetContentType("application/zip")
	} else {
		ctx.SetContentType("application/octet-stream")
	}

	if rng.Partial {
		ctx.SetStatusCode(fasthttp.StatusPartialContent)
		header.Set(fasthttp.HeaderContentRange,
			fmt.Sprintf("bytes %d-%d/%d", rng.Start, rng.End, totalSize))
	}

	reader := &pacedReader{
		src:       f,
		remaining: contentLength,
		chunkSize: s.chunkSize,
		delay:     delayPerChunk,
	}

	if string(ctx.QueryArgs().Peek("no_content_length")) == "true" {
		// unknown-length delivery: chunked transfer, no Content-Length
		ctx.Response.SetBodyStream(reader, -1)
		return
	}
	ctx.Response.SetBodyStream(reader, int(contentLength))
}

// pacedReader feeds the requested byte span to the response while pacing by
// delivered bytes rather than by Read call: fasthttp drains body streams
// through its own small copy buffer, so sleeping per Read would multiply the
// target duration. The file handle is released in Close, which fasthttp
// invokes on every exit path including a mid-stream client disconnect.
type pacedReader struct {
	src       io.ReadCloser
	remaining int64
	chunkSize int64
	delay     time.Duration
	pending   int64 // bytes delivered since the last pause
}

func (r *pacedReader) Read(p []byte) (int, error) {
	if r.delay > 0 && r.pending >= r.chunkSize {
		time.Sleep(r.delay)
		r.pending -= r.chunkSize
	}

	if r.remaining <= 0 {
		if r.delay > 0 && r.pending > 0 {
			// trailing partial chunk gets its pause as well
			time.Sleep(r.delay)
			r.pending = 0
		}
		return 0, io.EOF
	}

	limit := int64(len(p))
	if limit > r.remaining {
		limit = r.remaining
	}
	if r.delay > 0 {
		// never hand out bytes across a chunk boundary in one read
		if room := r.chunkSize - r.pending; limit > room {
			limit = room
		}
	}

	n, err := r.src.Read(p[:limit])
	r.remaining -= int64(n)
	r.pending += int64(n)
	if err == io.EOF && r.remaining > 0 {
		// source shorter than advertised, stop cleanly
		r.remaining = 0
	}
	return n, err
}

func (r *pacedReader) Close() error {
	return r.src.Close()
}
