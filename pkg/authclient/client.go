// Package authclient is the typed client for the authentication service.
// Every call validates its form before hitting the wire, decodes service
// errors into APIError values, and checks 2xx bodies against the expected
// schema, surfacing mismatches as SchemaError values.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client against the service base URL. A nil httpClient
// falls back to a default with a 30 second timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		panic("authclient.NewClient: empty base URL")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// do performs one API call. An empty accessToken sends no Authorization
// header, a nil out discards the response body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, accessToken string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("authclient: encode request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("authclient: build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("authclient: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("authclient: %s %s: %w", method, path, decodeAPIError(resp))
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("authclient: %s %s: %w", method, path, &SchemaError{cause: err})
	}

	if err = validateResponse(out); err != nil {
		return fmt.Errorf("authclient: %s %s: %w", method, path, &SchemaError{cause: err})
	}

	return nil
}

// validateResponse checks a decoded payload against the schema tags of
// its type. Slices are checked element by element.
func validateResponse(out any) error {
	value := reflect.ValueOf(out)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil
		}

		value = value.Elem()
	}

	switch value.Kind() {
	case reflect.Struct:
		return validate.Struct(value.Interface())
	case reflect.Slice:
		for i := range value.Len() {
			elem := value.Index(i)
			if elem.Kind() != reflect.Struct {
				continue
			}

			if err := validate.Struct(elem.Interface()); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
	}

	return nil
}

func validateForm(form any) error {
	if err := validate.Struct(form); err != nil {
		return fmt.Errorf("authclient: invalid form: %w", err)
	}

	return nil
}
