package middleware

import (
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

// BrotliConfig tunes response compression.
type BrotliConfig struct {
	Quality   int
	MinLength int
	// ExcludedPaths are URL prefixes served as-is (already compressed media).
	ExcludedPaths []string
}

// DefaultBrotliConfig compresses rendered pages of 1 KiB and up.
var DefaultBrotliConfig = BrotliConfig{
	Quality:   brotli.DefaultCompression,
	MinLength: 1024,
}

// brotliWriter holds output back until MinLength bytes have been seen, then
// commits to either a compressed or a raw body for the rest of the response.
type brotliWriter struct {
	gin.ResponseWriter
	enc       *brotli.Writer
	quality   int
	minLength int
	pending   []byte
	decided   bool
	compress  bool
}

func (bw *brotliWriter) Write(data []byte) (int, error) {
	if bw.decided {
		if bw.compress {
			return bw.enc.Write(data)
		}
		return bw.ResponseWriter.Write(data)
	}

	bw.pending = append(bw.pending, data...)
	if len(bw.pending) < bw.minLength {
		return len(data), nil
	}
	if err := bw.commit(true); err != nil {
		return 0, err
	}
	return len(data), nil
}

func (bw *brotliWriter) WriteString(s string) (int, error) {
	return bw.Write([]byte(s))
}

// Flush forces a decision so streamed output reaches the client.
func (bw *brotliWriter) Flush() {
	if !bw.decided {
		_ = bw.commit(false)
	}
	if bw.compress {
		_ = bw.enc.Flush()
	}
	bw.ResponseWriter.Flush()
}

func (bw *brotliWriter) commit(compress bool) error {
	bw.decided = true
	bw.compress = compress && bw.compressible()

	var err error
	if bw.compress {
		h := bw.ResponseWriter.Header()
		h.Set("Content-Encoding", "br")
		h.Del("Content-Length")
		bw.enc = brotli.NewWriterLevel(bw.ResponseWriter, bw.quality)
		_, err = bw.enc.Write(bw.pending)
	} else if len(bw.pending) > 0 {
		_, err = bw.ResponseWriter.Write(bw.pending)
	}
	bw.pending = nil
	return err
}

// compressible rejects bodies a handler already encoded or typed as binary media.
func (bw *brotliWriter) compressible() bool {
	h := bw.ResponseWriter.Header()
	if h.Get("Content-Encoding") != "" {
		return false
	}
	ct := h.Get("Content-Type")
	return !strings.HasPrefix(ct, "image/") && !strings.HasPrefix(ct, "video/")
}

func (bw *brotliWriter) finish() error {
	if !bw.decided {
		return bw.commit(false)
	}
	if bw.compress {
		return bw.enc.Close()
	}
	return nil
}

// Brotli compresses responses for clients that accept "br".
func Brotli() gin.HandlerFunc {
	return BrotliWithConfig(DefaultBrotliConfig)
}

// BrotliWithConfig is Brotli with explicit settings.
func BrotliWithConfig(cfg BrotliConfig) gin.HandlerFunc {
	if cfg.Quality < brotli.BestSpeed || cfg.Quality > brotli.BestCompression {
		cfg.Quality = brotli.DefaultCompression
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = DefaultBrotliConfig.MinLength
	}

	return func(c *gin.Context) {
		if skipCompression(c, cfg.ExcludedPaths) || !acceptsBrotli(c.Request) {
			c.Next()
			return
		}

		c.Header("Vary", "Accept-Encoding")
		bw := &brotliWriter{
			ResponseWriter: c.Writer,
			quality:        cfg.Quality,
			minLength:      cfg.MinLength,
		}
		c.Writer = bw

		c.Next()

		if err := bw.finish(); err != nil {
			_ = c.Error(err)
		}
	}
}

func skipCompression(c *gin.Context, excluded []string) bool {
	if c.Request.Method == http.MethodHead {
		return true
	}
	if strings.Contains(c.GetHeader("Accept"), "text/event-stream") {
		return true
	}
	for _, prefix := range excluded {
		if strings.HasPrefix(c.Request.URL.Path, prefix) {
			return true
		}
	}
	return false
}

func acceptsBrotli(r *http.Request) bool {
	for _, enc := range strings.Split(r.Header.Get("Accept-Encoding"), ",") {
		// "br;q=0" opts out
		name, params, _ := strings.Cut(strings.TrimSpace(enc), ";")
		if !strings.EqualFold(name, "br") {
			continue
		}
		return strings.ReplaceAll(params, " ", "") != "q=0"
	}
	return false
}
