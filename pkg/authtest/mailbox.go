// Package authtest carries end to end helpers for the authentication
// workflows: a Mailpit mailbox client to intercept verification mails, and
// the usual register dance against a live service.
package authtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"net/url"
	"strconv"
	"time"
)

const (
	pollInterval   = 100 * time.Millisecond
	defaultTimeout = 5 * time.Second
)

// Mailbox drives a Mailpit instance over its REST API.
type Mailbox struct {
	apiURL string
	http   *http.Client
}

func NewMailbox(apiURL string, httpClient *http.Client) *Mailbox {
	if apiURL == "" {
		panic("authtest.NewMailbox: empty api url")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	return &Mailbox{apiURL: apiURL, http: httpClient}
}

type searchResult struct {
	Messages []struct {
		ID        string `json:"ID"`
		MessageID string `json:"MessageID"`
	} `json:"messages"`
}

// Search returns the IDs of messages matching a Mailpit search query, e.g.
// `to:"user@example.com" subject:"Registration Request."`.
func (m *Mailbox) Search(ctx context.Context, query string, limit int) ([]string, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		m.apiURL+"/api/v1/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("authtest.Mailbox.Search: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := m.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("authtest.Mailbox.Search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("authtest.Mailbox.Search: unexpected status %d", resp.StatusCode)
	}

	var result searchResult
	if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("authtest.Mailbox.Search: %w", err)
	}

	ids := make([]string, 0, len(result.Messages))
	for _, msg := range result.Messages {
		ids = append(ids, msg.ID)
	}

	return ids, nil
}

// FetchRaw downloads the full MIME source of one message.
func (m *Mailbox) FetchRaw(ctx context.Context, id string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		m.apiURL+"/api/v1/message/"+id+"/raw", nil)
	if err != nil {
		return "", fmt.Errorf("authtest.Mailbox.FetchRaw: %w", err)
	}

	resp, err := m.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("authtest.Mailbox.FetchRaw: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("authtest.Mailbox.FetchRaw: unexpected status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("authtest.Mailbox.FetchRaw: %w", err)
	}

	return string(raw), nil
}

// Delete removes the given messages, or every message when called without
// IDs.
func (m *Mailbox) Delete(ctx context.Context, ids ...string) error {
	body, err := json.Marshal(map[string]any{"IDs": ids})
	if err != nil {
		return fmt.Errorf("authtest.Mailbox.Delete: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		m.apiURL+"/api/v1/messages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("authtest.Mailbox.Delete: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.http.Do(req)
	if err != nil {
		return fmt.Errorf("authtest.Mailbox.Delete: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("authtest.Mailbox.Delete: unexpected status %d", resp.StatusCode)
	}

	return nil
}

// WaitForMail polls until exactly one message matches the query, then
// fetches it, deletes it from the mailbox and returns its parsed form.
// Mails are delivered asynchronously, the first polls usually miss.
func (m *Mailbox) WaitForMail(ctx context.Context, query string) (*mail.Message, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
	}

	var id string
	for id == "" {
		ids, err := m.Search(ctx, query, 1)
		if err != nil {
			return nil, fmt.Errorf("authtest.Mailbox.WaitForMail: %w", err)
		}
		if len(ids) == 1 {
			id = ids[0]
			break
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("authtest.Mailbox.WaitForMail: no message matched %q: %w", query, ctx.Err())
		case <-time.After(pollInterval):
		}
	}

	raw, err := m.FetchRaw(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("authtest.Mailbox.WaitForMail: %w", err)
	}

	if err = m.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("authtest.Mailbox.WaitForMail: %w", err)
	}

	msg, err := mail.ReadMessage(bytes.NewReader([]byte(raw)))
	if err != nil {
		return nil, fmt.Errorf("authtest.Mailbox.WaitForMail: parse message: %w", err)
	}

	return msg, nil
}
