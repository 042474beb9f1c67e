package kanachu

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"github.com/travigo/busboard/pkg/ctdf"
	"golang.org/x/net/html/charset"
)

const DefaultBaseURL = "http://real.kanachu.jp/pc/displayapproachinfo"

// The approach pages are served as Shift_JIS without a reliable meta tag
const pageCharset = "shift_jis"

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: timeout},
		UserAgent:  "busboard/1.0",
	}
}

// Fetch downloads and decodes the approach page between two stop codes.
func (c *Client) Fetch(ctx context.Context, fromStopCode string, toStopCode string) (*goquery.Document, error) {
	requestURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid approach info url: %w", err)
	}
	query := requestURL.Query()
	query.Set("fNO", fromStopCode)
	query.Set("tNO", toStopCode)
	requestURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build approach info request: %w", err)
	}
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to request approach info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("failed to request approach info: %s", resp.Status)
	}

	body, err := charset.NewReaderLabel(pageCharset, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode approach info: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse approach info: %w", err)
	}

	return doc, nil
}

// GetApproachInfo fetches and extracts the bus blocks for a single route query.
func (c *Client) GetApproachInfo(ctx context.Context, route ctdf.RouteQuery) ([]ctdf.BusStatusRecord, error) {
	doc, err := c.Fetch(ctx, route.FromStopCode, route.ToStopCode)
	if err != nil {
		return nil, err
	}

	records, err := ParseApproachInfo(doc.Selection)
	if err != nil {
		return nil, fmt.Errorf("route %s: %w", route.Key, err)
	}

	for i := range records {
		records[i].RouteKey = route.Key
		records[i].OriginStopName = route.OriginStopName
	}

	log.Debug().
		Str("route", route.Key).
		Int("buses", len(records)).
		Msg("Fetched approach info")

	return records, nil
}
