// Package webshop resolves retailer names to their web-shop homepages with
// Google Programmable Search.
package webshop

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ai-supply-planner/internal/llm"
	"ai-supply-planner/internal/shared"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const agentName = "WebShopSearch"

// Options configures a SearchLocator.
type Options struct {
	APIKey   string
	EngineID string
	// Country restricts results, e.g. "countryHR". Empty means no restriction.
	Country string
	// ClientOptions are appended after the API key, mainly for tests.
	ClientOptions []option.ClientOption
}

// SearchLocator asks the search engine for every shop and keeps the host of
// the first hit.
type SearchLocator struct {
	svc      *customsearch.Service
	engineID string
	country  string
}

func NewSearchLocator(ctx context.Context, opts Options) (*SearchLocator, error) {
	if strings.TrimSpace(opts.APIKey) == "" || strings.TrimSpace(opts.EngineID) == "" {
		return nil, errors.New("custom search api key and engine id are required")
	}
	clientOpts := append([]option.ClientOption{option.WithAPIKey(opts.APIKey)}, opts.ClientOptions...)
	svc, err := customsearch.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating custom search client: %w", err)
	}
	return &SearchLocator{svc: svc, engineID: opts.EngineID, country: opts.Country}, nil
}

// LocateShops queries shops one after another. A shop without results maps
// to "". The first failed query aborts the lookup.
func (l *SearchLocator) LocateShops(ctx context.Context, shops []string) (map[string]string, shared.AgentMeta, error) {
	start := time.Now()
	meta := shared.AgentMeta{AgentName: agentName}
	out := make(map[string]string, len(shops))

	for _, shop := range shops {
		query := shop + " web shop"
		meta.SearchQueries = append(meta.SearchQueries, query)

		call := l.svc.Cse.List().Q(query).Cx(l.engineID).Num(1).Context(ctx)
		if l.country != "" {
			call = call.Cr(l.country)
		}
		res, err := call.Do()
		if err != nil {
			meta.Latency = time.Since(start)
			return nil, meta, classify(shop, err)
		}

		out[shop] = ""
		if len(res.Items) > 0 {
			out[shop] = Homepage(res.Items[0].Link)
		}
	}

	meta.Latency = time.Since(start)
	return out, meta, nil
}

// Homepage reduces a result link to scheme://host/. Invalid links yield "".
func Homepage(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil || u.Host == "" {
		return ""
	}
	scheme := u.Scheme
	if scheme == "" {
		scheme = "https"
	}
	return scheme + "://" + strings.ToLower(u.Host) + "/"
}

func classify(shop string, err error) error {
	wrapped := fmt.Errorf("searching for %q: %w", shop, err)
	out := &llm.Error{Kind: llm.KindTransport, Agent: agentName, Err: wrapped}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr != nil {
		out.InvalidArgument = apiErr.Code == http.StatusBadRequest
	}
	return out
}
