package session

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http/cookiejar"
	"net/url"
	"time"

	"espritjobs/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

// LoginForm describes the server rendered login form used by the http
// session.
type LoginForm struct {
	Path           string `json:"path"`
	EmailField     string `json:"email_field"`
	PasswordField  string `json:"password_field"`
	TokenField     string `json:"token_field"`
	VerifyPath     string `json:"verify_path"`
	VerifySelector string `json:"verify_selector"`
}

func DefaultLoginForm() LoginForm {
	return LoginForm{
		Path:           "/login",
		EmailField:     "email",
		PasswordField:  "password",
		VerifyPath:     "/",
		VerifySelector: "#gw-parent-menu-link-jobs",
	}
}

type HTTPOptions struct {
	BaseURL          string
	Credentials      Credentials
	Form             LoginForm
	CloudflareBypass bool
	Timeout          time.Duration
	// Dump receives every http message when debug logging is on.
	Dump restyutil.InstrumentOutput
}

// HTTPSession browses with a cookie aware resty client. It only sees server
// rendered markup.
type HTTPSession struct {
	baseURL *url.URL
	opts    HTTPOptions
	http    *resty.Client
}

func NewHTTPSession(opts HTTPOptions) (*HTTPSession, error) {
	baseURL, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, err
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second * 30
	}
	if opts.Form == (LoginForm{}) {
		opts.Form = DefaultLoginForm()
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseURL)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	client.SetHeader("user-agent", userAgent)
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseURL.Hostname()))
	client.SetTimeout(opts.Timeout)

	restyutil.InstrumentClient(client, tracer, opts.Dump)

	return &HTTPSession{baseURL: baseURL, opts: opts, http: client}, nil
}

func (s *HTTPSession) getDocument(ctx context.Context, path string) (*goquery.Document, error) {
	res, err := s.http.R().SetContext(ctx).Get(path)
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, fmt.Errorf("GET %s: unexpected status %d", path, res.StatusCode())
	}
	return goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
}

func (s *HTTPSession) Login(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "http:Login")
	defer span.End()

	form := s.opts.Form
	err := retry(ctx, 3, time.Second*2, func() error {
		doc, err := s.getDocument(ctx, form.Path)
		if err != nil {
			return err
		}

		data := map[string]string{
			form.EmailField:    s.opts.Credentials.Email,
			form.PasswordField: s.opts.Credentials.Password,
		}
		if form.TokenField != "" {
			token := doc.Find(fmt.Sprintf("input[name=%s]", form.TokenField)).AttrOr("value", "")
			if token == "" {
				return fmt.Errorf("could not find login token")
			}
			data[form.TokenField] = token
		}

		res, err := s.http.R().
			SetContext(ctx).
			SetFormData(data).
			Post(form.Path)
		if err != nil {
			return err
		}
		if res.StatusCode() >= 500 {
			return fmt.Errorf("login request: unexpected status %d", res.StatusCode())
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit login form")
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	doc, err := s.getDocument(ctx, form.VerifyPath)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to request page after login")
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	if doc.Find(form.VerifySelector).Length() == 0 {
		span.SetStatus(codes.Error, ErrLoginFailed.Error())
		return ErrLoginFailed
	}

	slog.InfoContext(ctx, "logged in", "driver", "http", "email", s.opts.Credentials.Email)
	return nil
}

func (s *HTTPSession) Navigate(ctx context.Context, target string) (Page, error) {
	res, err := s.http.R().SetContext(ctx).Get(target)
	if err != nil {
		if ctx.Err() != nil {
			return Page{}, fmt.Errorf("%w: %w", ErrSessionLost, err)
		}
		return Page{}, err
	}
	if res.IsError() {
		return Page{}, fmt.Errorf("GET %s: unexpected status %d", target, res.StatusCode())
	}

	final := target
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		final = res.RawResponse.Request.URL.String()
	}
	return Page{FinalURL: final, HTML: res.Body()}, nil
}

func (s *HTTPSession) Close() error {
	s.http.GetClient().CloseIdleConnections()
	return nil
}
