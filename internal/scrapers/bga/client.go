// Package bga is a scraping client for Board Game Arena. It replays the navigation
// a browser would do (entry page, login, landing page, data endpoint) and keeps the
// request token in sync with whatever the platform rotated it to last.
package bga

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"sync"
	"time"

	"gaiaharvest/internal/components/assert"
	"gaiaharvest/internal/components/telemetry"
	"gaiaharvest/pkg/htmlutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("scrapers/bga")

const (
	DefaultBaseUrl = "https://en.boardgamearena.com"

	browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:146.0) Gecko/20100101 Firefox/146.0"
	acceptHtml       = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8"
	acceptJson       = "application/json, text/javascript, */*; q=0.01"

	loginEndpoint = "/account/auth/loginUserWithPassword.html"
)

const (
	report_client_authenticate   = "client.authenticate"
	report_client_list_matches   = "client.list-finished-matches"
	report_client_match_log      = "client.fetch-match-log"
	report_client_match_detail   = "client.fetch-match-detail"
	report_client_search_player  = "client.search-player"
	report_client_fetch_ranking  = "client.fetch-ranking"
	report_client_token_rotation = "client.token-rotation"
)

var (
	errClientClosed  = errors.New("client is closed")
	errLoginRejected = errors.New("platform rejected the login (wrong credentials or server error)")
	errNoToken       = errors.New("could not find request token in entry page")
)

type ClientOptions struct {
	// BaseUrl defaults to DefaultBaseUrl.
	BaseUrl string
	// Timeout per request, defaults to 30 seconds.
	Timeout time.Duration
	// RequestsPerSecond caps outgoing requests at the transport level, 0 disables
	// the cap. Pacing between logical calls is the collector's job.
	RequestsPerSecond float64
	BypassCloudflare  bool
	// HttpOutput receives every http message when set.
	HttpOutput telemetry.MessageOutput
}

type Client struct {
	BaseUrl *url.URL

	http *resty.Client
	tel  telemetry.API

	mutex           sync.Mutex
	session         Session
	lastCookieToken string
	referer         string
	closed          bool
}

func NewClient(opts ClientOptions, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("bga_scraper", tel)

	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)
	if opts.BypassCloudflare {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	httpClient.SetHeader("User-Agent", browserUserAgent)
	httpClient.SetHeader("Accept-Language", "en-GB,en;q=0.5")
	httpClient.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	httpClient.SetTimeout(opts.Timeout)

	if opts.RequestsPerSecond > 0 {
		// burst >= 1 just means that no requests will be dropped
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), max(1, int(opts.RequestsPerSecond)))
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tel, opts.HttpOutput)

	return &Client{
		BaseUrl: baseUrl,
		http:    httpClient,
		tel:     tel,
	}, nil
}

// Session returns a copy of the current session.
func (c *Client) Session() Session {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.session
}

// Close drops the session and every cookie, calling it more than once is fine.
func (c *Client) Close() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.session.Reset()
	c.lastCookieToken = ""
	c.referer = ""
	jar, err := cookiejar.New(nil)
	if err == nil {
		c.http.SetCookieJar(jar)
	}
	c.http.GetClient().CloseIdleConnections()
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

var bgaConfigRegex = regexp.MustCompile(`var\s+bgaConfig\s*=\s*\{[^}]*?requestToken\s*:\s*['"]([^'"]+)['"]`)

func extractRequestToken(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	for _, script := range htmlutil.InlineScripts(doc) {
		groups := bgaConfigRegex.FindStringSubmatch(script)
		if len(groups) >= 2 {
			return groups[1], nil
		}
	}
	return "", errNoToken
}

// Authenticate loads the entry page for a request token and session cookies, then
// submits the credentials. Any failure is an *AuthError.
func (c *Client) Authenticate(ctx context.Context, username, password string) (Session, error) {
	ctx, span := tracer.Start(ctx, "client:Authenticate")
	defer span.End()

	c.mutex.Lock()
	defer c.mutex.Unlock()

	authError := func(stage string, err error) (Session, error) {
		c.tel.ReportBroken(report_client_authenticate, fmt.Errorf("%s: %w", stage, err))
		return Session{}, fail(span, &AuthError{Stage: stage, Err: err})
	}

	if c.closed {
		return authError("entry page", errClientClosed)
	}
	c.session.Reset()
	c.lastCookieToken = ""

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", acceptHtml).
		Get("/")
	if err != nil {
		return authError("entry page", err)
	}
	if res.IsError() {
		return authError("entry page", fmt.Errorf("http %d", res.StatusCode()))
	}
	token, err := extractRequestToken(res.Body())
	if err != nil {
		return authError("request token", err)
	}
	c.session.AdoptToken(token)

	res, err = c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "*/*").
		SetHeader("X-Request-Token", c.session.RequestToken).
		SetHeader("Referer", c.absolute("/", url.Values{"step": {"2"}, "page": {"login"}})).
		SetHeader("Origin", c.origin()).
		SetFormData(map[string]string{
			"username":      username,
			"password":      password,
			"remember_me":   "false",
			"request_token": c.session.RequestToken,
		}).
		Post(loginEndpoint)
	if err != nil {
		return authError("credentials", err)
	}
	if res.IsError() {
		return authError("credentials", fmt.Errorf("http %d", res.StatusCode()))
	}

	var env envelope
	err = json.Unmarshal(res.Body(), &env)
	if err != nil {
		return authError("credentials", fmt.Errorf("decode response: %w", err))
	}
	var login loginResponse
	if env.Status != 1 || json.Unmarshal(env.Data, &login) != nil || !bool(login.Success) {
		return authError("credentials", errLoginRejected)
	}

	c.session.RecordUser(int64(login.UserID), login.Username)
	c.observe(nil)
	c.session.MarkAuthenticated()

	c.tel.ReportDebug("logged in", c.session.UserID, c.session.Username)
	return c.session, nil
}

func (c *Client) origin() string {
	return (&url.URL{Scheme: c.BaseUrl.Scheme, Host: c.BaseUrl.Host}).String()
}

func (c *Client) absolute(path string, query url.Values) string {
	u := c.BaseUrl.JoinPath(path)
	u.RawQuery = query.Encode()
	return u.String()
}

// observe adopts a rotated token, either embedded in an html page that was just
// loaded or set through the token cookie since the last time it was looked at.
// c.mutex must be held.
func (c *Client) observe(page []byte) {
	if page != nil {
		token, err := extractRequestToken(page)
		if err == nil && c.session.AdoptToken(token) {
			c.tel.ReportDebug(report_client_token_rotation, "page")
		}
	}

	for _, cookie := range c.http.GetClient().Jar.Cookies(c.BaseUrl) {
		if cookie.Name != tokenCookie || cookie.Value == c.lastCookieToken {
			continue
		}
		c.lastCookieToken = cookie.Value
		if c.session.AdoptToken(cookie.Value) {
			c.tel.ReportDebug(report_client_token_rotation, "cookie")
		}
	}
}

// requireSession must be called with c.mutex held.
func (c *Client) requireSession() error {
	if c.closed || !c.session.Authenticated() {
		return ErrNotAuthenticated
	}
	return nil
}

// visit loads a landing page like a browser would before it calls the data
// endpoint behind it, BGA rejects or truncates data calls without it.
func (c *Client) visit(ctx context.Context, path string, query url.Values) error {
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(query).
		SetHeader("Accept", acceptHtml).
		Get(path)
	if err != nil {
		return &TransportError{Endpoint: path, Err: err}
	}
	c.observe(res.Body())
	if res.IsError() {
		return &TransportError{Endpoint: path, StatusCode: res.StatusCode(), Body: bodySnippet(res.Body())}
	}
	c.referer = c.absolute(path, query)
	return nil
}

// getJSON calls a json endpoint and decodes its data field into out. Both the http
// status and the status field of the payload are checked.
func (c *Client) getJSON(ctx context.Context, endpoint string, query url.Values, out any) error {
	req := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(query).
		SetHeader("Accept", acceptJson).
		SetHeader("X-Request-Token", c.session.RequestToken).
		SetHeader("X-Requested-With", "XMLHttpRequest")
	if c.referer != "" {
		req.SetHeader("Referer", c.referer)
	}

	res, err := req.Get(endpoint)
	if err != nil {
		return &TransportError{Endpoint: endpoint, Err: err}
	}
	c.observe(nil)
	if res.IsError() {
		return &TransportError{Endpoint: endpoint, StatusCode: res.StatusCode(), Body: bodySnippet(res.Body())}
	}

	var env envelope
	err = json.Unmarshal(res.Body(), &env)
	if err != nil {
		return &TransportError{
			Endpoint:   endpoint,
			StatusCode: res.StatusCode(),
			Body:       bodySnippet(res.Body()),
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}
	if env.Status != 1 {
		return &PlatformError{Endpoint: endpoint, Message: env.Error, Code: int64(env.Code)}
	}
	if out == nil {
		return nil
	}
	err = json.Unmarshal(env.Data, out)
	if err != nil {
		return &TransportError{
			Endpoint:   endpoint,
			StatusCode: res.StatusCode(),
			Body:       bodySnippet(env.Data),
			Err:        fmt.Errorf("decode data: %w", err),
		}
	}
	return nil
}

func (c *Client) report(id string, err error, params ...any) {
	if IsRateLimited(err) {
		c.tel.ReportWarning(id, append([]any{err}, params...)...)
		return
	}
	c.tel.ReportBroken(id, append([]any{err}, params...)...)
}
