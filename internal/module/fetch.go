package module

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var (
	ErrNotWasm = errors.New("module: not a wasm binary")
	ErrFetch   = errors.New("module: fetch failed")
)

var wasmMagic = []byte{0x00, 'a', 's', 'm'}

// FetchOptions controls remote module downloads.
type FetchOptions struct {
	// Retries is the number of extra attempts after a transient failure.
	Retries int
	// InitialInterval is the first backoff delay.
	InitialInterval time.Duration
	// Progress shows a progress bar. Defaults to on when stderr is a
	// terminal.
	Progress *bool
	Client   *http.Client
}

// Fetch returns the module bytes from a local path or an http(s) URL.
func Fetch(ctx context.Context, source string, opts FetchOptions, log *zap.Logger) ([]byte, error) {
	var (
		body []byte
		err  error
	)
	if strings.HasPrefix(source, "https://") || strings.HasPrefix(source, "http://") {
		body, err = download(ctx, source, opts, log.Named("fetch"))
	} else {
		body, err = os.ReadFile(source)
		if err != nil {
			err = fmt.Errorf("read module: %w", err)
		}
	}
	if err != nil {
		return nil, err
	}

	if !bytes.HasPrefix(body, wasmMagic) {
		return nil, fmt.Errorf("%w: %s", ErrNotWasm, source)
	}
	return body, nil
}

func download(ctx context.Context, url string, opts FetchOptions, log *zap.Logger) ([]byte, error) {
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	progress := term.IsTerminal(int(os.Stderr.Fd()))
	if opts.Progress != nil {
		progress = *opts.Progress
	}

	eb := backoff.NewExponentialBackOff()
	if opts.InitialInterval > 0 {
		eb.InitialInterval = opts.InitialInterval
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(max(opts.Retries, 0))), ctx)

	var body []byte
	attempt := 0
	operation := func() error {
		attempt++
		b, err := get(ctx, client, url, progress)
		if err != nil {
			log.Warn("module download failed", zap.String("url", url), zap.Int("attempt", attempt), zap.Error(err))
			return err
		}
		body = b
		return nil
	}
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFetch, url, err)
	}
	log.Info("module downloaded", zap.String("url", url), zap.Int("bytes", len(body)), zap.Int("attempts", attempt))
	return body, nil
}

func get(ctx context.Context, client *http.Client, url string, progress bool) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	default:
		return nil, backoff.Permanent(fmt.Errorf("unexpected status %s", resp.Status))
	}

	var buf bytes.Buffer
	var w io.Writer = &buf
	if progress {
		bar := progressbar.DefaultBytes(resp.ContentLength, "downloading module")
		defer bar.Close()
		w = io.MultiWriter(&buf, bar)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return buf.Bytes(), nil
}
