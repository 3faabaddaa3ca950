package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/privscan/internal/client/config"
	"github.com/dmitrijs2005/privscan/internal/client/transfer"
	"github.com/dmitrijs2005/privscan/internal/logging"
	"github.com/fatih/color"
)

var (
	successColor  = color.New(color.FgGreen)
	rejectedColor = color.New(color.FgYellow)
	failureColor  = color.New(color.FgRed)
	infoColor     = color.New(color.FgCyan)
)

type saveRequest struct {
	suggested string
	reply     chan saveReply
}

type saveReply struct {
	path string
	ok   bool
}

type App struct {
	config      *config.Config
	uploader    *transfer.Uploader
	logger      logging.Logger
	reader      *bufio.Reader
	out         io.Writer
	interactive bool

	prompts chan saveRequest
	done    chan struct{}
}

// NewApp builds the CLI. Prompts read from in and everything user-facing
// goes to out; diagnostics are logged to stderr.
func NewApp(c *config.Config, in io.Reader, out io.Writer) *App {

	level := slog.LevelWarn
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	interactive := false
	if f, ok := in.(*os.File); ok {
		interactive = isTerminal(int(f.Fd()))
	}

	app := &App{
		config:      c,
		logger:      logger,
		reader:      bufio.NewReader(in),
		out:         out,
		interactive: interactive,
		prompts:     make(chan saveRequest),
		done:        make(chan struct{}),
	}

	app.uploader = transfer.NewUploader(transfer.Config{
		ResponseTimeout: c.ResponseTimeout,
		SaveFunc:        app.requestSave,
		Logger:          logger,
	})

	return app
}

// requestSave runs on the transfer goroutine and hands the question to the
// Run loop, which owns the terminal.
func (a *App) requestSave(suggested string) (string, bool) {
	req := saveRequest{suggested: suggested, reply: make(chan saveReply, 1)}

	select {
	case a.prompts <- req:
	case <-a.done:
		return "", false
	}

	select {
	case r := <-req.reply:
		return r.path, r.ok
	case <-a.done:
		return "", false
	}
}

func (a *App) answerSave(suggested string) saveReply {
	if !a.interactive {
		a.logger.Info(context.Background(), "stdin is not a terminal, discarding response payload")
		return saveReply{}
	}
	path, ok := askSavePath(a.reader, a.out, suggested)
	return saveReply{path: path, ok: ok}
}

// Run uploads the configured file and prints the outcome. It returns an
// error for anything other than a successful transfer.
func (a *App) Run(ctx context.Context) error {
	defer close(a.done)

	req := transfer.Request{
		SourcePath:    a.config.SourcePath,
		ServerBaseURL: a.config.ServerBaseURL,
		EndpointPath:  a.config.EndpointPath,
		Filename:      a.config.Filename,
	}

	outcomes, err := a.uploader.Start(ctx, req)
	if err != nil {
		failureColor.Fprintln(a.out, "Cannot upload:", err)
		return err
	}

	infoColor.Fprintf(a.out, "Uploading to %s …\n", transfer.JoinURL(req.ServerBaseURL, req.EndpointPath))

	cancelled := ctx.Done()
	for {
		select {
		case o, ok := <-outcomes:
			if !ok {
				return errors.New("transfer ended without an outcome")
			}
			a.print(o)
			if o.Kind != transfer.Success {
				return fmt.Errorf("upload %s: %w", o.Kind, o.Err)
			}
			return nil

		case p := <-a.prompts:
			p.reply <- a.answerSave(p.suggested)

		case <-cancelled:
			// the request shares ctx, so its outcome follows shortly
			a.logger.Warn(ctx, "cancelling upload")
			cancelled = nil
		}
	}
}

func (a *App) print(o transfer.Outcome) {
	c := failureColor
	switch o.Kind {
	case transfer.Success:
		c = successColor
	case transfer.ServerRejected:
		c = rejectedColor
	}
	c.Fprintln(a.out, o.Message())
}
