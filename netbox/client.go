// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package netbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/nbmirror/model"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

// Errors that can be returned by this package.  Most are returned wrapped, so use
// errors.Is() to check for them.
var (
	ErrAddressEmpty         = errors.New("netbox address is required")
	ErrNilMeasures          = errors.New("measures cannot be nil")
	ErrNotFound             = errors.New("netbox object not found")
	ErrFailedAuthentication = errors.New("failed to authenticate with netbox")
	ErrBadRequest           = errors.New("netbox rejected the request as invalid")
)

var (
	errNonSuccessResponse = errors.New("netbox responded with a non-success status code")
	errNewRequestFailure  = errors.New("failed creating an HTTP request")
	errDoRequestFailure   = errors.New("http client failed while sending request")
	errReadingBodyFailure = errors.New("failed while reading http response body")
	errJSONUnmarshal      = errors.New("failed unmarshaling JSON response payload")
)

const (
	apiPath           = "/api"
	changesPath       = "core/object-changes"
	errWrappedFmt     = "%w: %s"
	errStatusCodeFmt  = "%w: received status %v"
	defaultPageSize   = 1000
	defaultTimeout    = 30 * time.Second
	timeAfterParam    = "time_after"
	limitParam        = "limit"
	authorizationType = "Token"
)

// ChangesPath is the path of the remote change log.
var ChangesPath = model.ParsePath("core.object_changes")

// ClientConfig contains config data for the client that will be used to
// make requests to NetBox.
type ClientConfig struct {
	// Address is the NetBox URL without the api suffix (i.e. https://netbox.example.com)
	Address string

	// Token is the API token sent with every request.
	// (Optional) If not provided, requests are anonymous.
	Token string

	// PageSize is the limit used when listing collections.
	// (Optional) Defaults to 1000.
	PageSize int

	// Timeout bounds each HTTP request.
	// (Optional) Defaults to 30 seconds.
	Timeout time.Duration

	// HTTPClient refers to the client that will be used to send requests.
	// (Optional) Defaults to a client with Timeout.
	HTTPClient *http.Client `json:"-"`

	// Logger to be used by the client.
	// (Optional). By default a no op logger will be used.
	Logger *zap.Logger `json:"-"`
}

// Client fetches collections, objects and change events from NetBox.
type Client struct {
	client    *http.Client
	baseURL   string
	token     string
	pageSize  int
	logger    *zap.Logger
	getLogger func(context.Context) *zap.Logger
	measures  *Measures
}

type response struct {
	Body []byte
	Code int
}

// page is one page of a NetBox list response.
type page struct {
	Count   int               `json:"count"`
	Next    *string           `json:"next"`
	Results []json.RawMessage `json:"results"`
}

// NewClient creates a new Client that can be used to make requests to NetBox.
// getLogger may be nil, in which case the logger carried by the request context
// is used, falling back to config.Logger.
func NewClient(config ClientConfig, measures *Measures, getLogger func(context.Context) *zap.Logger) (*Client, error) {
	err := validateConfig(&config)
	if err != nil {
		return nil, err
	}
	if measures == nil {
		return nil, ErrNilMeasures
	}

	c := &Client{
		client:    config.HTTPClient,
		baseURL:   strings.TrimSuffix(config.Address, "/") + apiPath,
		token:     config.Token,
		pageSize:  config.PageSize,
		logger:    config.Logger,
		getLogger: getLogger,
		measures:  measures,
	}
	if c.getLogger == nil {
		c.getLogger = func(ctx context.Context) *zap.Logger {
			return sallust.GetDefault(ctx, c.logger)
		}
	}
	return c, nil
}

// URL returns the collection URL of path, i.e. dcim.device_types becomes
// <address>/api/dcim/device-types/
func (c *Client) URL(path model.Path) string {
	segments := path.Segments()
	for i, s := range segments {
		segments[i] = strings.ReplaceAll(s, "_", "-")
	}
	return c.baseURL + "/" + strings.Join(segments, "/") + "/"
}

// FetchAll returns every object of the collection at path, following pagination.
func (c *Client) FetchAll(ctx context.Context, path model.Path) ([]model.Object, error) {
	return c.list(ctx, path, url.Values{})
}

// FetchByID returns one object of the collection at path.  ErrNotFound is
// returned when the remote has no such object.
func (c *Client) FetchByID(ctx context.Context, path model.Path, id int64) (model.Object, error) {
	resp, err := c.sendRequest(ctx, c.URL(path)+strconv.FormatInt(id, 10)+"/")
	if err != nil {
		c.count(GetType, err)
		return nil, err
	}

	if resp.Code != http.StatusOK {
		err = fmt.Errorf(errStatusCodeFmt, translateNonSuccessStatusCode(resp.Code), resp.Code)
		c.count(GetType, err)
		if resp.Code != http.StatusNotFound {
			c.log(ctx).Error("NetBox responded with a non-successful status code for a FetchByID request",
				zap.Stringer("path", path), zap.Int64("id", id), zap.Int("code", resp.Code))
		}
		return nil, err
	}

	o, err := model.DecodeObject(resp.Body)
	if err != nil {
		err = fmt.Errorf("FetchByID: %w: %s", errJSONUnmarshal, err.Error())
	}
	c.count(GetType, err)
	return o, err
}

// FetchChangeEvent returns one entry of the change log.
func (c *Client) FetchChangeEvent(ctx context.Context, id int64) (model.Object, error) {
	return c.FetchByID(ctx, ChangesPath, id)
}

// FetchChangeEventsSince returns the change log entries recorded after t.
func (c *Client) FetchChangeEventsSince(ctx context.Context, t time.Time) ([]model.Object, error) {
	q := url.Values{}
	q.Set(timeAfterParam, t.UTC().Format(time.RFC3339))
	return c.list(ctx, ChangesPath, q)
}

func (c *Client) list(ctx context.Context, path model.Path, q url.Values) ([]model.Object, error) {
	q.Set(limitParam, strconv.Itoa(c.pageSize))
	next := c.URL(path) + "?" + q.Encode()

	var objects []model.Object
	for len(next) > 0 {
		p, err := c.fetchPage(ctx, next)
		c.count(ListType, err)
		if err != nil {
			c.log(ctx).Error("failed to list NetBox collection", zap.Stringer("path", path), zap.Error(err))
			return nil, err
		}

		if objects == nil {
			objects = make([]model.Object, 0, p.Count)
		}
		for _, raw := range p.Results {
			o, err := model.DecodeObject(raw)
			if err != nil {
				return nil, fmt.Errorf("list %s: %w: %s", path, errJSONUnmarshal, err.Error())
			}
			objects = append(objects, o)
		}

		next = ""
		if p.Next != nil {
			next = *p.Next
		}
	}

	c.log(ctx).Debug("listed NetBox collection", zap.Stringer("path", path), zap.Int("count", len(objects)))
	return objects, nil
}

func (c *Client) fetchPage(ctx context.Context, u string) (page, error) {
	resp, err := c.sendRequest(ctx, u)
	if err != nil {
		return page{}, err
	}
	if resp.Code != http.StatusOK {
		return page{}, fmt.Errorf(errStatusCodeFmt, translateNonSuccessStatusCode(resp.Code), resp.Code)
	}

	var p page
	if err := json.Unmarshal(resp.Body, &p); err != nil {
		return page{}, fmt.Errorf(errWrappedFmt, errJSONUnmarshal, err.Error())
	}
	return p, nil
}

func (c *Client) sendRequest(ctx context.Context, u string) (response, error) {
	r, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return response{}, fmt.Errorf(errWrappedFmt, errNewRequestFailure, err.Error())
	}
	r.Header.Set("Accept", "application/json")
	if len(c.token) > 0 {
		r.Header.Set("Authorization", authorizationType+" "+c.token)
	}

	resp, err := c.client.Do(r)
	if err != nil {
		return response{}, fmt.Errorf(errWrappedFmt, errDoRequestFailure, err.Error())
	}
	defer resp.Body.Close()

	var nbResp = response{
		Code: resp.StatusCode,
	}
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nbResp, fmt.Errorf(errWrappedFmt, errReadingBodyFailure, err.Error())
	}
	nbResp.Body = bodyBytes
	return nbResp, nil
}

func (c *Client) log(ctx context.Context) *zap.Logger {
	if l := c.getLogger(ctx); l != nil {
		return l
	}
	return c.logger
}

func (c *Client) count(requestType string, err error) {
	outcome := SuccessOutcome
	switch {
	case errors.Is(err, ErrNotFound):
		outcome = NotFoundOutcome
	case err != nil:
		outcome = FailureOutcome
	}
	c.measures.Requests.With(prometheus.Labels{
		TypeLabel:    requestType,
		OutcomeLabel: outcome,
	}).Inc()
}

// translateNonSuccessStatusCode returns as specific error
// for known NetBox status codes.
func translateNonSuccessStatusCode(code int) error {
	switch code {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrFailedAuthentication
	default:
		return errNonSuccessResponse
	}
}

func validateConfig(config *ClientConfig) error {
	if config.Address == "" {
		return ErrAddressEmpty
	}

	if config.PageSize <= 0 {
		config.PageSize = defaultPageSize
	}

	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}

	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: config.Timeout}
	}

	if config.Logger == nil {
		config.Logger = sallust.Default()
	}
	return nil
}
