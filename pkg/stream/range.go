package stream

import (
	"strconv"
	"strings"
)

// ByteRange is a resolved Range header. Partial is set whenever a Range
// header parsed, even when the resolved span covers the whole file; the
// emulated service answered 206 in that case and clients expect it.
type ByteRange struct {
	Start   int64
	End     int64
	Partial bool
}

// ResolveRange resolves header against a resource of totalSize bytes.
// Supported forms: "bytes=A-B", "bytes=A-", "bytes=-N". A malformed header is
// silently ignored and the full range returned; range validation never fails
// the request by itself.
func ResolveRange(header string, totalSize int64) ByteRange {
	full := ByteRange{Start: 0, End: totalSize - 1}
	if header == "" {
		return full
	}

	parts := strings.Split(strings.ReplaceAll(header, "bytes=", ""), "-")

	// suffix form: last N bytes
	if parts[0] == "" && len(parts) > 1 && parts[1] != "" {
		n, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return full
		}
		start := totalSize - n
		if start < 0 {
			// suffix longer than the file clamps to the file start
			start = 0
		}
		return ByteRange{Start: start, End: totalSize - 1, Partial: true}
	}

	start, end := int64(0), totalSize-1
	if parts[0] != "" {
		v, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return full
		}
		start = v
	}
	if len(parts) > 1 && parts[1] != "" {
		v, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return full
		}
		end = v
		if end > totalSize-1 {
			end = totalSize - 1
		}
	}
	return ByteRange{Start: start, End: end, Partial: true}
}

// Satisfiable reports whether the resolved span holds at least one byte.
// An unsatisfiable range must answer 416, never stream.
func (r ByteRange) Satisfiable() bool {
	return r.Start <= r.End
}

func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}
