// Package transfer streams one local file to a PrivScan server and resolves
// the attempt to a single Outcome.
//
// The file is read in common.ChunkSize blocks through a pipe into the request
// body, so memory stays bounded by one chunk regardless of file size. No
// attempt is ever retried.
package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/privscan/internal/common"
	"github.com/dmitrijs2005/privscan/internal/cryptox"
	"github.com/dmitrijs2005/privscan/internal/filex"
	"github.com/dmitrijs2005/privscan/internal/logging"
)

const (
	defaultDialTimeout     = 10 * time.Second
	defaultResponseTimeout = 300 * time.Second
	discardedNote          = "response discarded"
)

// errIdle is the cancel cause of a transfer that stopped making progress.
var errIdle = fmt.Errorf("%w: no progress within the response timeout", common.ErrTimedOut)

// SaveFunc picks where a raw response payload goes. Returning false declines.
// It is called from the transfer goroutine.
type SaveFunc func(suggested string) (path string, ok bool)

// Config tunes an Uploader. Zero timeouts fall back to the defaults.
type Config struct {
	ResponseTimeout time.Duration
	DialTimeout     time.Duration
	SaveFunc        SaveFunc
	Logger          logging.Logger
}

// Uploader owns one http.Client; it is safe for concurrent transfers.
type Uploader struct {
	client    *http.Client
	transport *http.Transport
	timeout   time.Duration
	save      SaveFunc
	logger    logging.Logger
}

// NewUploader builds an Uploader with its own transport.
func NewUploader(c Config) *Uploader {
	dialTimeout := c.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = defaultDialTimeout
	}
	timeout := c.ResponseTimeout
	if timeout <= 0 {
		timeout = defaultResponseTimeout
	}

	logger := c.Logger
	if logger == nil {
		logger = logging.Nop{}
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: dialTimeout}).DialContext,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: time.Second,
		MaxIdleConnsPerHost:   2,
	}

	return &Uploader{
		client:    &http.Client{Transport: transport},
		transport: transport,
		timeout:   timeout,
		save:      c.SaveFunc,
		logger:    logger.With("module", "uploader"),
	}
}

// JoinURL joins base and endpoint with exactly one slash between them.
func JoinURL(base, endpoint string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(endpoint, "/")
}

// Validate checks r without touching the network and returns it with the
// default filename filled in.
func Validate(r Request) (Request, error) {
	if r.SourcePath == "" {
		return r, &ValidationError{Field: "source", Reason: "no file selected"}
	}

	regular, err := filex.IsRegularFile(r.SourcePath)
	if err != nil {
		return r, &ValidationError{Field: "source", Reason: "file not found", Err: err}
	}
	if !regular {
		return r, &ValidationError{Field: "source", Reason: "not a regular file"}
	}

	f, err := os.Open(r.SourcePath)
	if err != nil {
		return r, &ValidationError{Field: "source", Reason: "file not readable", Err: err}
	}
	_ = f.Close()

	if strings.TrimSpace(r.ServerBaseURL) == "" {
		return r, &ValidationError{Field: "server", Reason: "base url is empty"}
	}

	if r.Filename == "" {
		r.Filename = filepath.Base(r.SourcePath)
	}
	if err := filex.ValidateName(r.Filename); err != nil {
		return r, &ValidationError{Field: "filename", Reason: "not a plain file name", Err: err}
	}

	return r, nil
}

// Upload runs one transfer and waits for its outcome. The error is non-nil
// only for validation failures, in which case nothing was sent.
func (u *Uploader) Upload(ctx context.Context, r Request) (Outcome, error) {
	r, src, err := prepare(r)
	if err != nil {
		return Outcome{}, err
	}
	return u.transfer(ctx, r, src), nil
}

// Start validates r and locks the source synchronously, then runs the
// transfer on its own goroutine. The returned channel yields exactly one
// Outcome and is closed.
func (u *Uploader) Start(ctx context.Context, r Request) (<-chan Outcome, error) {
	r, src, err := prepare(r)
	if err != nil {
		return nil, err
	}

	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		out <- u.transfer(ctx, r, src)
	}()
	return out, nil
}

// source is an open local file held under a shared lock for one transfer.
type source struct {
	f      *os.File
	size   int64
	unlock func()
}

func (s *source) close() {
	s.unlock()
	_ = s.f.Close()
}

func prepare(r Request) (Request, *source, error) {
	r, err := Validate(r)
	if err != nil {
		return r, nil, err
	}
	src, err := openSource(r.SourcePath)
	if err != nil {
		return r, nil, err
	}
	return r, src, nil
}

func openSource(path string) (*source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ValidationError{Field: "source", Reason: "file not readable", Err: err}
	}

	unlock, err := lockShared(f)
	if err != nil {
		_ = f.Close()
		return nil, &ValidationError{Field: "source", Reason: "locked by another process", Err: err}
	}

	fi, err := f.Stat()
	if err != nil {
		unlock()
		_ = f.Close()
		return nil, &ValidationError{Field: "source", Reason: "file not readable", Err: err}
	}

	return &source{f: f, size: fi.Size(), unlock: unlock}, nil
}

// transfer owns src and releases it before returning.
func (u *Uploader) transfer(ctx context.Context, r Request, src *source) Outcome {
	defer src.close()

	url := JoinURL(r.ServerBaseURL, r.EndpointPath)
	log := u.logger.With("url", url, "filename", r.Filename)
	size := src.size

	// every chunk sent and every response read pushes the deadline out
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	idle := startIdleTimer(u.timeout, cancel)
	defer idle.pause()

	var (
		body     io.ReadCloser = http.NoBody
		pr       *io.PipeReader
		copyDone = make(chan struct{})
		digest   = cryptox.NewDigest()
	)
	if size > 0 {
		var pw *io.PipeWriter
		pr, pw = io.Pipe()
		body = pr
		go func() {
			defer close(copyDone)
			n, chunks, err := sendChunks(progressWriter{w: pw, idle: idle}, io.TeeReader(src.f, digest))
			pw.CloseWithError(err)
			log.Debug(ctx, "body streamed", "bytes", n, "chunks", chunks)
		}()
	} else {
		close(copyDone)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		if pr != nil {
			_ = pr.Close()
		}
		<-copyDone
		return transportFailure(err)
	}
	req.ContentLength = size
	req.Header.Set(common.FilenameHeaderName, r.Filename)
	req.Header.Set("Content-Type", "application/octet-stream")

	log.Info(ctx, "upload started", "bytes", size)
	started := time.Now()

	resp, err := u.client.Do(req)

	// the copier must be gone before the source is unlocked and closed
	if pr != nil {
		_ = pr.CloseWithError(io.ErrClosedPipe)
	}
	<-copyDone

	if err != nil {
		if idleExpired(ctx) || isTimeout(err) {
			return u.timedOut(ctx, log, started, err)
		}
		log.Warn(ctx, "upload failed", "error", err.Error())
		return transportFailure(err)
	}
	defer resp.Body.Close()
	resp.Body = progressReader{r: resp.Body, idle: idle}

	log.Info(ctx, "response received", "status", resp.StatusCode, "elapsed", time.Since(started).String(),
		"request_id", resp.Header.Get(common.RequestIDHeaderName))

	out := u.interpret(ctx, resp, r, digest, idle)
	idle.pause()
	if idleExpired(ctx) {
		return u.timedOut(ctx, log, started, context.Cause(ctx))
	}
	return out
}

func (u *Uploader) timedOut(ctx context.Context, log logging.Logger, started time.Time, err error) Outcome {
	u.transport.CloseIdleConnections()
	log.Warn(ctx, "upload timed out", "elapsed", time.Since(started).String())
	if errors.Is(err, common.ErrTimedOut) {
		return Outcome{Kind: TimedOut, Err: err}
	}
	return Outcome{Kind: TimedOut, Err: fmt.Errorf("%w: %w", common.ErrTimedOut, err)}
}

// interpret classifies a received response. sent is the digest of the bytes
// that went out.
func (u *Uploader) interpret(ctx context.Context, resp *http.Response, r Request, sent *cryptox.Digest, idle *idleTimer) Outcome {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := readSnippet(resp.Body)
		return Outcome{
			Kind:       ServerRejected,
			StatusCode: resp.StatusCode,
			Body:       snippet,
			Err:        fmt.Errorf("%w: %d %s", common.ErrServerRejected, resp.StatusCode, snippet),
		}
	}

	if peer := resp.Header.Get(common.DigestHeaderName); peer != "" && !sent.Matches(peer) {
		u.logger.Error(ctx, "stored artifact digest mismatch", "sent", sent.Hex(), "stored", peer)
		return transportFailure(fmt.Errorf("integrity check failed: server stored %s, sent %s", peer, sent.Hex()))
	}

	ok := Outcome{Kind: Success, StatusCode: resp.StatusCode}

	if resp.StatusCode == http.StatusNoContent || resp.ContentLength == 0 {
		return ok
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	switch {
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		var payload any
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return transportFailure(fmt.Errorf("malformed JSON response: %w", err))
		}
		ok.Payload = payload
		return ok

	case strings.HasPrefix(mediaType, "text/"):
		ok.Body = readSnippet(resp.Body)
		return ok
	}

	return u.saveRaw(ctx, resp.Body, r, ok, idle)
}

func (u *Uploader) saveRaw(ctx context.Context, body io.Reader, r Request, ok Outcome, idle *idleTimer) Outcome {
	suggested := "response_" + strings.TrimSuffix(r.Filename, filepath.Ext(r.Filename))

	var (
		path   string
		accept bool
	)
	if u.save != nil {
		// the user may take a while to answer
		idle.pause()
		path, accept = u.save(suggested)
		idle.touch()
	}
	if !accept || path == "" {
		ok.Note = discardedNote
		return ok
	}

	out, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return transportFailure(fmt.Errorf("save response: %w", err))
	}

	n, _, err := sendChunks(out, body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return transportFailure(fmt.Errorf("save response: %w", err))
	}

	u.logger.Info(ctx, "response saved", "path", path, "bytes", n)
	ok.SavedPath = path
	return ok
}

// sendChunks copies src to dst one ChunkSize block at a time.
func sendChunks(dst io.Writer, src io.Reader) (int64, int, error) {
	buf := make([]byte, common.ChunkSize)
	var (
		written int64
		chunks  int
	)

	for {
		nr, rerr := src.Read(buf)
		if nr > 0 {
			nw, werr := dst.Write(buf[:nr])
			written += int64(nw)
			chunks++
			if werr == nil && nw != nr {
				werr = io.ErrShortWrite
			}
			if werr != nil {
				return written, chunks, werr
			}
		}
		if rerr == io.EOF {
			return written, chunks, nil
		}
		if rerr != nil {
			return written, chunks, rerr
		}
	}
}

func readSnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, common.MaxSnippetBytes))
	return strings.TrimSpace(string(b))
}

// idleTimer cancels its transfer once touch has not been called for d.
type idleTimer struct {
	t *time.Timer
	d time.Duration
}

func startIdleTimer(d time.Duration, cancel context.CancelCauseFunc) *idleTimer {
	return &idleTimer{t: time.AfterFunc(d, func() { cancel(errIdle) }), d: d}
}

func (i *idleTimer) touch() { i.t.Reset(i.d) }
func (i *idleTimer) pause() { i.t.Stop() }

type progressWriter struct {
	w    io.Writer
	idle *idleTimer
}

func (p progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	if n > 0 {
		p.idle.touch()
	}
	return n, err
}

type progressReader struct {
	r    io.ReadCloser
	idle *idleTimer
}

func (p progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.idle.touch()
	}
	return n, err
}

func (p progressReader) Close() error { return p.r.Close() }

func idleExpired(ctx context.Context) bool {
	return errors.Is(context.Cause(ctx), errIdle)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func transportFailure(err error) Outcome {
	return Outcome{Kind: TransportError, Err: fmt.Errorf("%w: %w", common.ErrTransport, err)}
}
