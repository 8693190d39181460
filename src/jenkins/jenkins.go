// Package jenkins talks to the declarative pipeline linter built into a
// running Jenkins server. The server does the actual parsing and validation;
// this is a thin client around one POST per Jenkinsfile and the plain-text
// response it gets back.
package jenkins

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/thought-machine/jflint/src/cli/logging"
	"github.com/thought-machine/jflint/src/config"
)

var log = logging.Log

// DefaultTimeout bounds each request to the server when nothing else is configured.
const DefaultTimeout = 30 * time.Second

// validatePath is the server path of the declarative pipeline linter.
const validatePath = "pipeline-model-converter/validateJenkinsfile"

// crumbPath is the server path that serves CSRF crumbs, with an xpath that
// flattens the response to a single name:value line.
const crumbPath = "crumbIssuer/api/xml"

// A ConnError is returned when the Jenkins server cannot be reached at all,
// including when the request runs into the configured timeout.
type ConnError struct {
	URL string
	Err error
}

// Error implements the error interface.
func (err *ConnError) Error() string {
	return fmt.Sprintf("Failed to contact Jenkins at %s: %s", err.URL, err.Err)
}

// Unwrap makes the underlying cause available to errors.Is / errors.As.
func (err *ConnError) Unwrap() error {
	return err.Err
}

// A Client issues lint requests against a single Jenkins server.
// It is read-only after construction and safe for concurrent use.
type Client struct {
	client             *retryablehttp.Client
	url                string
	username, password string
	crumbField, crumb  string
}

// NewClient sets up a client for the given profile. It contacts the server
// once to fetch a CSRF crumb for the later lint requests; servers with CSRF
// protection disabled answer that with a 404 and no crumb is sent afterwards.
func NewClient(profile *config.Profile, timeout time.Duration, insecure bool) (*Client, error) {
	client := retryablehttp.NewClient()
	client.RetryMax = 0
	client.Logger = nil
	// One attempt per request, the timeout is the only bound. The default
	// policy would also swallow error-status responses, and we need those:
	// Jenkins answers lint requests with the status telling us a lot.
	client.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		return false, err
	}
	client.HTTPClient.Timeout = timeout
	if insecure {
		client.HTTPClient.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	c := &Client{
		client:   client,
		url:      strings.TrimRight(string(profile.URL), "/"),
		username: profile.Username,
		password: profile.Password,
	}
	if err := c.fetchCrumb(); err != nil {
		return nil, err
	}
	return c, nil
}

// Lint validates the given Jenkinsfile content against the server.
// Findings the server reports come back inside the Result; only a failure to
// communicate at all is an error.
func (c *Client) Lint(file string, content []byte) (*Result, error) {
	resp, err := c.do(http.MethodPost, c.url+"/"+validatePath, content)
	if err != nil {
		return nil, &ConnError{URL: c.url, Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnError{URL: c.url, Err: err}
	}
	log.Debug("Jenkins response for %s (status %d): %s", file, resp.StatusCode, body)
	return newResult(file, resp.StatusCode, string(body)), nil
}

func (c *Client) fetchCrumb() error {
	crumbURL := c.url + "/" + crumbPath + "?xpath=" + url.QueryEscape(`concat(//crumbRequestField,":",//crumb)`)
	resp, err := c.do(http.MethodGet, crumbURL, nil)
	if err != nil {
		return &ConnError{URL: c.url, Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ConnError{URL: c.url, Err: err}
	}
	if resp.StatusCode == http.StatusNotFound {
		log.Debug("No crumb issuer at %s, continuing without a crumb", c.url)
		return nil
	}
	field, value, found := strings.Cut(strings.TrimSpace(string(body)), ":")
	if resp.StatusCode != http.StatusOK || !found || !strings.EqualFold(field, "Jenkins-Crumb") {
		return fmt.Errorf("Unable to retrieve crumb from %s; crumb issuer is probably blocked", c.url)
	}
	c.crumbField = strings.TrimSpace(field)
	c.crumb = strings.TrimSpace(value)
	log.Debug("Fetched CSRF crumb %s from %s", c.crumbField, c.url)
	return nil
}

func (c *Client) do(method, url string, body []byte) (*http.Response, error) {
	req, err := retryablehttp.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	if c.crumbField != "" {
		req.Header.Set(c.crumbField, c.crumb)
	}
	return c.client.Do(req)
}
