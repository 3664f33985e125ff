// Package session provides authenticated browsing sessions against the job
// board, one backed by a headless browser and one by a plain http client.
package session

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("espritjobs/session")

var (
	ErrLoginFailed = errors.New("failed to login to your account")
	// ErrSessionLost marks errors after which the session cannot be used
	// for further navigation.
	ErrSessionLost = errors.New("browsing session lost")
)

// Page is the result of navigating to a url.
type Page struct {
	// FinalURL is the url after every redirect, client side ones included.
	FinalURL string
	HTML     []byte
}

type Session interface {
	Login(ctx context.Context) error
	Navigate(ctx context.Context, url string) (Page, error)
	Close() error
}

type Credentials struct {
	Email    string
	Password string
}

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// retry calls fn up to attempts times, sleeping pause between failures.
func retry(ctx context.Context, attempts int, pause time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		timer := time.NewTimer(pause)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(err, ctx.Err())
		case <-timer.C:
		}
	}
	return err
}
