package authtest

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// MailLink is the verification link carried by a short code mail.
type MailLink struct {
	URL       *url.URL
	ShortCode string
	Target    string
}

// ExtractLink pulls the verification link out of a mail body. Short code
// mails carry exactly one anchor, anything else fails.
func ExtractLink(body io.Reader) (MailLink, error) {
	hrefs, err := anchorHrefs(body)
	if err != nil {
		return MailLink{}, fmt.Errorf("authtest.ExtractLink: %w", err)
	}
	if len(hrefs) != 1 {
		return MailLink{}, fmt.Errorf("authtest.ExtractLink: expected one anchor, got %d", len(hrefs))
	}

	parsed, err := url.Parse(strings.TrimSpace(hrefs[0]))
	if err != nil {
		return MailLink{}, fmt.Errorf("authtest.ExtractLink: %w", err)
	}

	link := MailLink{
		URL:       parsed,
		ShortCode: parsed.Query().Get("shortCode"),
		Target:    parsed.Query().Get("target"),
	}
	if link.ShortCode == "" || link.Target == "" {
		return MailLink{}, fmt.Errorf("authtest.ExtractLink: missing shortCode or target in %q", hrefs[0])
	}

	return link, nil
}

func anchorHrefs(body io.Reader) ([]string, error) {
	root, err := html.Parse(body)
	if err != nil {
		return nil, err
	}

	var hrefs []string
	for node := range root.Descendants() {
		if node.Type != html.ElementNode || node.Data != "a" {
			continue
		}
		for _, attr := range node.Attr {
			if attr.Key == "href" {
				hrefs = append(hrefs, attr.Val)
			}
		}
	}

	return hrefs, nil
}
