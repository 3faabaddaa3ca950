// Package cli provides the PrivScan command-line front end.
//
// It wires configuration and a transfer.Uploader, starts the upload in the
// background and keeps its own loop free to answer save prompts coming from
// the transfer goroutine. The terminal outcome is printed as one coloured
// message.
//
// Save prompts are only shown when stdin is a terminal; otherwise a raw
// response payload is discarded. See App.Run for details.
package cli
