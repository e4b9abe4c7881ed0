/*
Copyright The Helm Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

/*Package steam implements a client for the ISteamRemoteStorage endpoints
of the Steam Web API.

The client covers the two batched lookups the downloader needs: collection
details (the children referenced by a Workshop collection) and published
file details (title, download URL and update time of a plugin). Both calls
are form-encoded POST batches, matching the public API.
*/
package steam

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/gothickitty93/steam-workshop-downloader/internal/version"
)

// DefaultAPIHost is the public host of the Steam Web API.
const DefaultAPIHost = "https://api.steampowered.com"

// DefaultTimeout bounds each catalog request. Lookups are small JSON
// responses; anything slower than this is treated as unreachable.
const DefaultTimeout = 10 * time.Second

// ErrHostnameNotProvided indicates the url is missing a hostname
var ErrHostnameNotProvided = errors.New("no hostname provided")

// RemoteError indicates the Steam Web API rejected a request.
type RemoteError struct {
	StatusCode int
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	return fmt.Sprintf("server returned %d error", e.StatusCode)
}

// Client represents a client capable of communicating with the Steam Web API.
type Client struct {

	// The base URL for requests
	BaseURL string

	// The internal logger to use
	Log func(string, ...interface{})

	client *http.Client
}

// New creates a new client
func New(u string) (*Client, error) {

	// Validate we have a URL
	if err := validate(u); err != nil {
		return nil, err
	}

	return &Client{
		BaseURL: u,
		Log:     nopLogger,
		client:  &http.Client{Timeout: DefaultTimeout},
	}, nil
}

var nopLogger = func(_ string, _ ...interface{}) {}

// Validate if the base URL for the API is valid.
func validate(u string) error {

	// Check if it is parsable
	p, err := url.Parse(u)
	if err != nil {
		return err
	}

	// Check that a host is attached
	if p.Hostname() == "" {
		return ErrHostnameNotProvided
	}

	return nil
}

// post issues one batched form-encoded request against the given API path
// and decodes the JSON body into v.
func (c *Client) post(apiPath string, form url.Values, v interface{}) error {
	p, err := url.Parse(c.BaseURL)
	if err != nil {
		return err
	}
	p.Path = path.Join(p.Path, apiPath)

	c.Log("POST %s", p.String())

	req, err := http.NewRequest(http.MethodPost, p.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", version.GetUserAgent())

	res, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "cannot reach the Steam Web API")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return &RemoteError{StatusCode: res.StatusCode}
	}

	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return errors.Wrap(err, "cannot decode the Steam Web API response")
	}
	return nil
}

// batchForm builds the publishedfileids[i] form layout the remote storage
// endpoints expect, with the batch size under countKey.
func batchForm(countKey string, ids []string) url.Values {
	form := url.Values{}
	form.Set(countKey, strconv.Itoa(len(ids)))
	for i, id := range ids {
		form.Set(fmt.Sprintf("publishedfileids[%d]", i), id)
	}
	return form
}
