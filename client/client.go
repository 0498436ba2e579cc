package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/weird"
)

const (
	defaultTimeout       = 10 * time.Second
	defaultVerifyTimeout = 10 * time.Second
	defaultUserAgent     = "weird/1.0"
)

var tracer = otel.Tracer("client")

// Options configures outbound HTTP. Proxy settings are explicit; the
// process environment is consulted only when ProxyFromEnvironment is set.
type Options struct {
	UserAgent            string
	Timeout              time.Duration
	VerifyTimeout        time.Duration
	ProxyURL             string
	ProxyFromEnvironment bool
	AuthServer           string
}

type Client struct {
	client        *http.Client
	transport     http.RoundTripper
	cache         *cache.Cache
	userAgent     string
	verifyTimeout time.Duration
	authServer    string
}

func New(opts Options) (*Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil

	if opts.ProxyURL != "" {
		proxy, err := url.Parse(opts.ProxyURL)
		if err != nil {
			return nil, errors.Wrap(err, "invalid proxy url")
		}
		transport.Proxy = http.ProxyURL(proxy)
	} else if opts.ProxyFromEnvironment {
		transport.Proxy = http.ProxyFromEnvironment
	}

	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.VerifyTimeout == 0 {
		opts.VerifyTimeout = defaultVerifyTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}

	c := &Client{
		transport:     transport,
		cache:         cache.New(1*time.Minute, 5*time.Minute),
		userAgent:     opts.UserAgent,
		verifyTimeout: opts.VerifyTimeout,
		authServer:    strings.TrimSuffix(opts.AuthServer, "/"),
	}
	c.client = &http.Client{
		Timeout:   opts.Timeout,
		Transport: c,
	}
	return c, nil
}

func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.userAgent)
	return c.transport.RoundTrip(req)
}

// VerifyChallenge asks domain to echo the challenge of userID. Only a 200
// response counts as success.
func (c *Client) VerifyChallenge(ctx context.Context, domain, challenge, userID string) error {
	ctx, span := tracer.Start(ctx, "Client.VerifyChallenge")
	defer span.End()
	span.SetAttributes(attribute.String("domain", domain))

	ctx, cancel := context.WithTimeout(ctx, c.verifyTimeout)
	defer cancel()

	target := "http://" + domain + "/dns-challenge/" + url.PathEscape(challenge) + "/" + url.PathEscape(userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create request: %v", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to perform request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		span.RecordError(err)
		return err
	}
	return nil
}

func (c *Client) authRequest(ctx context.Context, path string, cookies []*http.Cookie, response any) error {
	if c.authServer == "" {
		return fmt.Errorf("auth server not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.authServer+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to perform request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	err = json.NewDecoder(resp.Body).Decode(response)
	if err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}
	return nil
}

func (c *Client) GetSessionInfo(ctx context.Context, cookies []*http.Cookie) (weird.SessionInfo, error) {
	ctx, span := tracer.Start(ctx, "Client.GetSessionInfo")
	defer span.End()

	var info weird.SessionInfo
	err := c.authRequest(ctx, "/auth/v1/oidc/sessioninfo", cookies, &info)
	if err != nil {
		span.RecordError(err)
		return weird.SessionInfo{}, errors.Wrap(err, "failed to get session info")
	}
	return info, nil
}

// GetUserInfo fetches the account of userID. Results are cached briefly
// per user.
func (c *Client) GetUserInfo(ctx context.Context, userID string, cookies []*http.Cookie) (weird.UserInfo, error) {
	ctx, span := tracer.Start(ctx, "Client.GetUserInfo")
	defer span.End()

	cacheKey := "user:" + userID
	if x, found := c.cache.Get(cacheKey); found {
		return x.(weird.UserInfo), nil
	}

	var user weird.UserInfo
	err := c.authRequest(ctx, "/auth/v1/users/"+url.PathEscape(userID), cookies, &user)
	if err != nil {
		span.RecordError(err)
		return weird.UserInfo{}, errors.Wrap(err, "failed to get user info")
	}

	c.cache.Set(cacheKey, user, cache.DefaultExpiration)
	return user, nil
}
