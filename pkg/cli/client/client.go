/* Copyright 2025 Shelfsync Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package client provides interfaces for interacting with the Shelfsync server
// and the data structures for responses
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shelfsync/shelfsync/pkg/cli/context"
	"github.com/shelfsync/shelfsync/pkg/cli/log"
	"golang.org/x/time/rate"
)

// ErrContentTypeMismatch is an error for a response that is not JSON
var ErrContentTypeMismatch = errors.New("content type mismatch")

// HTTPError represents an HTTP error response from the server
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf(`response %d "%s"`, e.StatusCode, e.Message)
}

// IsBadRequest returns true if the server rejected the payload
func (e *HTTPError) IsBadRequest() bool {
	return e.StatusCode == http.StatusBadRequest
}

var contentTypeApplicationJSON = "application/json"

const (
	// clientRateLimitPerSecond is the max requests per second the client will make
	clientRateLimitPerSecond = 5
	// clientRateLimitBurst is the burst capacity for rate limiting
	clientRateLimitBurst = 10
)

// rateLimitedTransport wraps an http.RoundTripper with rate limiting
type rateLimitedTransport struct {
	transport http.RoundTripper
	limiter   *rate.Limiter
}

func (t *rateLimitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.transport.RoundTrip(req)
}

// NewRateLimitedHTTPClient creates an HTTP client with rate limiting
func NewRateLimitedHTTPClient() *http.Client {
	interval := time.Second / time.Duration(clientRateLimitPerSecond)

	transport := &rateLimitedTransport{
		transport: http.DefaultTransport,
		limiter:   rate.NewLimiter(rate.Every(interval), clientRateLimitBurst),
	}
	return &http.Client{
		Transport: transport,
		Timeout:   time.Minute,
	}
}

func getHTTPClient(ctx context.Ctx) *http.Client {
	if ctx.HTTPClient != nil {
		return ctx.HTTPClient
	}

	return &http.Client{}
}

func getReq(ctx context.Ctx, method, path string, body []byte) (*http.Request, error) {
	endpoint := fmt.Sprintf("%s%s", strings.TrimRight(ctx.Endpoint, "/"), path)
	req, err := http.NewRequest(method, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "constructing http request")
	}

	req.Header.Set("Content-Type", contentTypeApplicationJSON)
	req.Header.Set("CLI-Version", ctx.Version)

	return req, nil
}

// errorBody is the body the server sends with an error status
type errorBody struct {
	Error string `json:"error"`
}

// checkRespErr returns an HTTPError carrying the server's message if the
// response has an error status
func checkRespErr(res *http.Response) error {
	if res.StatusCode < 400 {
		return nil
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrapf(err, "server responded with %d but client could not read the response body", res.StatusCode)
	}

	message := strings.TrimRight(string(body), "\n")

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error != "" {
		message = eb.Error
	}

	return &HTTPError{
		StatusCode: res.StatusCode,
		Message:    message,
	}
}

func checkContentType(res *http.Response) error {
	got := res.Header.Get("Content-Type")
	if got != contentTypeApplicationJSON {
		return errors.Wrapf(ErrContentTypeMismatch, "got: '%s' want: '%s'. Did you configure your endpoint correctly?", got, contentTypeApplicationJSON)
	}

	return nil
}

// doReq does a http request to the given path in the api endpoint and
// decodes the JSON response into dst
func doReq(ctx context.Ctx, method, path string, body []byte, dst interface{}) error {
	req, err := getReq(ctx, method, path, body)
	if err != nil {
		return errors.Wrap(err, "getting request")
	}

	log.Debug("HTTP %s %s\n", method, path)

	hc := getHTTPClient(ctx)
	res, err := hc.Do(req)
	if err != nil {
		return errors.Wrap(err, "making http request")
	}
	defer res.Body.Close()

	log.Debug("HTTP %d %s\n", res.StatusCode, res.Status)

	if err = checkRespErr(res); err != nil {
		return errors.Wrap(err, "server responded with an error")
	}

	if err = checkContentType(res); err != nil {
		return errors.Wrap(err, "unexpected Content-Type")
	}

	if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
		return errors.Wrap(err, "decoding the response body")
	}

	return nil
}

// ImportResponse is the summary the server returns for an import
type ImportResponse struct {
	DeviceID    string `json:"device_id"`
	Books       int    `json:"books"`
	NewBooks    int64  `json:"new_books"`
	Stats       int    `json:"stats"`
	Annotations int    `json:"annotations"`
	Deleted     int64  `json:"deleted"`
}

// Import uploads an export payload
func Import(ctx context.Ctx, payload []byte) (ImportResponse, error) {
	var ret ImportResponse
	if err := doReq(ctx, http.MethodPost, "/plugin/import", payload, &ret); err != nil {
		return ret, errors.Wrap(err, "importing")
	}

	return ret, nil
}

// DeviceParams is the payload for registering a device
type DeviceParams struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Version string `json:"version"`
}

// DeviceResponse is a device as the server presents it
type DeviceResponse struct {
	ID            string     `json:"id"`
	Model         string     `json:"model"`
	PluginVersion string     `json:"plugin_version"`
	LastSyncAt    *time.Time `json:"last_sync_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// RegisterDevice registers a device with the server
func RegisterDevice(ctx context.Ctx, p DeviceParams) (DeviceResponse, error) {
	var ret DeviceResponse

	b, err := json.Marshal(p)
	if err != nil {
		return ret, errors.Wrap(err, "marshaling payload")
	}

	if err := doReq(ctx, http.MethodPost, "/plugin/device", b, &ret); err != nil {
		return ret, errors.Wrap(err, "registering device")
	}

	return ret, nil
}

// BookDeviceResponse is the reading statistics of a book on one device
type BookDeviceResponse struct {
	DeviceID       string `json:"device_id"`
	LastOpen       int64  `json:"last_open"`
	Pages          int    `json:"pages"`
	Notes          int    `json:"notes"`
	Highlights     int    `json:"highlights"`
	TotalReadTime  int64  `json:"total_read_time"`
	TotalReadPages int    `json:"total_read_pages"`
}

// BookResponse is a book as the server presents it
type BookResponse struct {
	ID             int                  `json:"id"`
	MD5            string               `json:"md5"`
	Title          string               `json:"title"`
	Authors        string               `json:"authors"`
	ReferencePages *int                 `json:"reference_pages"`
	Devices        []BookDeviceResponse `json:"devices"`
}

// GetBooks fetches every book with its per-device statistics
func GetBooks(ctx context.Ctx) ([]BookResponse, error) {
	var ret []BookResponse
	if err := doReq(ctx, http.MethodGet, "/books", nil, &ret); err != nil {
		return nil, errors.Wrap(err, "getting books")
	}

	return ret, nil
}
