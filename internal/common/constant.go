// Package common contains shared constants and sentinel errors used across
// PrivScan client and server components.
package common

// FilenameHeaderName is the HTTP header carrying the destination filename
// out of band, so the request body stays a raw byte stream.
const FilenameHeaderName = "X-Filename"

// RequestIDHeaderName is set by the server on every upload response.
const RequestIDHeaderName = "X-Request-ID"

// ChunkSize is the fixed block size used when streaming file bytes on both
// sides of the wire. Memory per transfer is bounded by a small multiple of it.
const ChunkSize = 64 * 1024

// MaxSnippetBytes bounds how much of a response body is kept for display.
const MaxSnippetBytes = 512

// DefaultEndpointPath is the upload route served by the server and targeted
// by the client unless configured otherwise.
const DefaultEndpointPath = "/scan"

// DigestHeaderName carries the hex SHA-256 of the stored artifact on a
// successful upload response.
const DigestHeaderName = "X-Content-SHA256"
