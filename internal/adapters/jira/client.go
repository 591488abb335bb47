/* Copyright (c) 2025 TiiMonatisa
 * SPDX-License-Identifier: BSD-3-Clause */
package jira

import (
    "bytes"
    "context"
    "crypto/tls"
    "crypto/x509"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "net/url"
    "os"
    "strconv"
    "strings"
    "time"

    "github.com/cenkalti/backoff/v4"
    "github.com/rs/zerolog"

    "github.com/TiiMonatisa/SBSA/internal/config"
)

const (
    // 429 responses are retried longer than ordinary transient failures
    // because Jira tells us exactly when to come back.
    maxRateLimitAttempts = 7
    maxTransientAttempts = 3
)

type Client struct {
    baseURL  string
    target   string
    email    string
    apiToken string
    token    string
    user     string
    pass     string
    pageSize int
    http     *http.Client
    log      zerolog.Logger

    // retryBase seeds the exponential backoff; tests shrink it.
    retryBase time.Duration
}

// apiError carries the HTTP status of a failed Jira call so callers can
// classify it without string matching.
type apiError struct {
    Status int
    Body   string
}

func (e *apiError) Error() string {
    return fmt.Sprintf("jira api status=%d body=%s", e.Status, e.Body)
}

func NewClient(cfg config.Config, log zerolog.Logger) (*Client, error) {
    transport, err := newTransport(cfg)
    if err != nil { return nil, err }
    return &Client{
        baseURL:  strings.TrimRight(cfg.BaseURL(), "/"),
        target:   cfg.Target,
        email:    cfg.CloudEmail,
        apiToken: cfg.CloudAPIToken,
        token:    cfg.DCToken,
        user:     cfg.DCUsername,
        pass:     cfg.DCPassword,
        pageSize: cfg.PageSize,
        http:      &http.Client{Timeout: cfg.HTTPTimeout, Transport: transport},
        log:       log,
        retryBase: 500 * time.Millisecond,
    }, nil
}

func newTransport(cfg config.Config) (*http.Transport, error) {
    if cfg.CABundle == "" && !cfg.InsecureSkipVerify { return http.DefaultTransport.(*http.Transport).Clone(), nil }
    tlsCfg := &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify}
    if cfg.CABundle != "" {
        pool, err := x509.SystemCertPool()
        if err != nil { pool = x509.NewCertPool() }
        pem, err := os.ReadFile(cfg.CABundle)
        if err != nil { return nil, fmt.Errorf("jira: read ca bundle: %w", err) }
        if !pool.AppendCertsFromPEM(pem) { return nil, fmt.Errorf("jira: no certificates in %s", cfg.CABundle) }
        tlsCfg.RootCAs = pool
    }
    t := http.DefaultTransport.(*http.Transport).Clone()
    t.TLSClientConfig = tlsCfg
    return t, nil
}

func (c *Client) apiURL(path string, q url.Values) string {
    if !strings.HasPrefix(path, "/") { path = "/" + path }
    u := c.baseURL + path
    if len(q) > 0 { u = u + "?" + q.Encode() }
    return u
}

func (c *Client) authorize(req *http.Request) {
    if c.target == config.TargetCloud {
        req.SetBasicAuth(c.email, c.apiToken)
        return
    }
    if c.token != "" {
        req.Header.Set("Authorization", "Bearer "+c.token)
        return
    }
    req.SetBasicAuth(c.user, c.pass)
}

// doJSON issues one logical request with retries. 429 is retried up to
// maxRateLimitAttempts honoring Retry-After; 502/503/504 and transport
// errors up to maxTransientAttempts; any other non-2xx fails immediately.
func (c *Client) doJSON(ctx context.Context, method, u string, body, out any) error {
    var payload []byte
    if body != nil {
        b, err := json.Marshal(body)
        if err != nil { return err }
        payload = b
    }
    bo := backoff.NewExponentialBackOff()
    bo.InitialInterval = c.retryBase
    bo.MaxInterval = 30 * time.Second
    rateLimited, transient := 0, 0
    for {
        var r io.Reader
        if payload != nil { r = bytes.NewReader(payload) }
        req, err := http.NewRequestWithContext(ctx, method, u, r)
        if err != nil { return err }
        req.Header.Set("Accept", "application/json")
        if payload != nil { req.Header.Set("Content-Type", "application/json") }
        c.authorize(req)

        resp, err := c.http.Do(req)
        if err != nil {
            transient++
            if transient >= maxTransientAttempts || ctx.Err() != nil { return err }
            c.log.Warn().Err(err).Str("url", u).Int("attempt", transient).Msg("jira request failed, retrying")
            if !sleep(ctx, bo.NextBackOff()) { return ctx.Err() }
            continue
        }
        b, _ := io.ReadAll(resp.Body)
        resp.Body.Close()

        switch {
        case resp.StatusCode >= 200 && resp.StatusCode < 300:
            if out == nil || len(bytes.TrimSpace(b)) == 0 { return nil }
            return json.Unmarshal(b, out)
        case resp.StatusCode == http.StatusTooManyRequests:
            rateLimited++
            if rateLimited >= maxRateLimitAttempts { return &apiError{Status: resp.StatusCode, Body: trimBody(b)} }
            wait := retryAfter(resp.Header.Get("Retry-After"))
            if wait <= 0 { wait = bo.NextBackOff() }
            c.log.Warn().Str("url", u).Dur("wait", wait).Int("attempt", rateLimited).Msg("jira rate limited")
            if !sleep(ctx, wait) { return ctx.Err() }
        case resp.StatusCode == http.StatusBadGateway ||
            resp.StatusCode == http.StatusServiceUnavailable ||
            resp.StatusCode == http.StatusGatewayTimeout:
            transient++
            if transient >= maxTransientAttempts { return &apiError{Status: resp.StatusCode, Body: trimBody(b)} }
            c.log.Warn().Str("url", u).Int("status", resp.StatusCode).Int("attempt", transient).Msg("jira transient failure, retrying")
            if !sleep(ctx, bo.NextBackOff()) { return ctx.Err() }
        default:
            return &apiError{Status: resp.StatusCode, Body: trimBody(b)}
        }
    }
}

func retryAfter(h string) time.Duration {
    h = strings.TrimSpace(h)
    if h == "" { return 0 }
    if secs, err := strconv.Atoi(h); err == nil && secs >= 0 { return time.Duration(secs) * time.Second }
    if t, err := http.ParseTime(h); err == nil { return time.Until(t) }
    return 0
}

func sleep(ctx context.Context, d time.Duration) bool {
    if d <= 0 { return ctx.Err() == nil }
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func trimBody(b []byte) string {
    s := strings.TrimSpace(string(b))
    if len(s) > 512 { s = s[:512] }
    return s
}

func statusOf(err error) int {
    var ae *apiError
    if errors.As(err, &ae) { return ae.Status }
    return 0
}
