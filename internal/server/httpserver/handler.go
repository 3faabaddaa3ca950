package httpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/privscan/internal/common"
	"github.com/dmitrijs2005/privscan/internal/cryptox"
	"github.com/dmitrijs2005/privscan/internal/filex"
	"github.com/dmitrijs2005/privscan/internal/logging"
	"github.com/dmitrijs2005/privscan/internal/server/mirror"
	"github.com/dmitrijs2005/privscan/internal/server/storage"
	"github.com/google/uuid"
)

const confirmationBody = "File received"

// UploadHandler accepts one raw file stream per request and persists it
// under the store's root. The filename comes from the X-Filename header.
//
// Per request: AwaitingFilename -> Streaming -> Finalized, or Rejected.
type UploadHandler struct {
	store    storage.Store
	mirror   mirror.Mirror
	logger   logging.Logger
	maxBytes int64
}

// NewUploadHandler returns a handler writing into store. m may be nil.
func NewUploadHandler(store storage.Store, maxBytes int64, l logging.Logger, m mirror.Mirror) *UploadHandler {
	return &UploadHandler{
		store:    store,
		mirror:   m,
		logger:   l.With("module", "upload_handler"),
		maxBytes: maxBytes,
	}
}

func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := uuid.NewString()
	w.Header().Set(common.RequestIDHeaderName, requestID)

	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeText(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	name := r.Header.Get(common.FilenameHeaderName)
	log := h.logger.With("request_id", requestID, "filename", name)
	log.Info(ctx, "upload started", "content_length", r.ContentLength)

	n, sum, err := h.receive(ctx, log, w, r, name)
	if err != nil {
		status, msg := statusFor(err)
		if status >= http.StatusInternalServerError {
			log.Error(ctx, "upload failed", "bytes", n, "error", err.Error())
		} else {
			log.Warn(ctx, "upload rejected", "bytes", n, "status", status, "error", err.Error())
		}
		writeText(w, status, msg)
		return
	}

	log.Info(ctx, "artifact stored", "bytes", n, "sha256", sum)

	if h.mirror != nil {
		if err := h.mirror.Mirror(ctx, name); err != nil {
			log.Warn(ctx, "artifact mirror failed", "error", err.Error())
		}
	}

	w.Header().Set(common.DigestHeaderName, sum)
	writeText(w, http.StatusOK, confirmationBody)
}

func (h *UploadHandler) receive(ctx context.Context, log logging.Logger, w http.ResponseWriter, r *http.Request, name string) (int64, string, error) {
	// AwaitingFilename
	if strings.TrimSpace(name) == "" {
		return 0, "", common.ErrMissingFilename
	}
	if err := filex.ValidateName(name); err != nil {
		return 0, "", err
	}
	if r.ContentLength > h.maxBytes {
		return 0, "", fmt.Errorf("%w: declared %d bytes, limit %d", common.ErrTooLarge, r.ContentLength, h.maxBytes)
	}

	// Streaming
	artifact, err := h.store.Create(name)
	if err != nil {
		return 0, "", err
	}

	body := http.MaxBytesReader(w, r.Body, h.maxBytes)
	digest := cryptox.NewDigest()
	n, err := copyChunks(io.MultiWriter(artifact, digest), body)
	if err != nil {
		if abortErr := artifact.Abort(); abortErr != nil {
			log.Error(ctx, "partial artifact not removed", "error", abortErr.Error())
		}
		return n, "", err
	}
	log.Debug(ctx, "stream drained", "bytes", n)

	// Finalized
	if err := artifact.Commit(); err != nil {
		return n, "", err
	}
	return n, digest.Hex(), nil
}

// copyChunks moves body into dst one ChunkSize block at a time.
func copyChunks(dst io.Writer, body io.Reader) (int64, error) {
	buf := make([]byte, common.ChunkSize)
	var written int64

	for {
		nr, rerr := body.Read(buf)
		if nr > 0 {
			nw, werr := dst.Write(buf[:nr])
			written += int64(nw)
			if werr == nil && nw != nr {
				werr = io.ErrShortWrite
			}
			if werr != nil {
				if !errors.Is(werr, common.ErrServerIO) {
					werr = fmt.Errorf("%w: %w", common.ErrServerIO, werr)
				}
				return written, werr
			}
		}

		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			var maxErr *http.MaxBytesError
			if errors.As(rerr, &maxErr) {
				return written, fmt.Errorf("%w: limit %d bytes", common.ErrTooLarge, maxErr.Limit)
			}
			return written, fmt.Errorf("%w: %w", common.ErrIncompleteBody, rerr)
		}
	}
}

// statusFor maps a failed state machine to its status code and a body that
// names the error class without leaking internals.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrMissingFilename):
		return http.StatusBadRequest, "missing " + common.FilenameHeaderName + " header"
	case errors.Is(err, common.ErrInvalidFilename):
		return http.StatusBadRequest, "invalid filename"
	case errors.Is(err, common.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "request body too large"
	case errors.Is(err, common.ErrIncompleteBody):
		return http.StatusBadRequest, "incomplete request body"
	default:
		return http.StatusInternalServerError, "storage error"
	}
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// Ping answers liveness checks.
func Ping(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "OK")
}

// NewRouter mounts the upload handler at endpointPath and GET /ping.
func NewRouter(endpointPath string, upload http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(endpointPath, upload)
	mux.HandleFunc("GET /ping", Ping)
	return mux
}
