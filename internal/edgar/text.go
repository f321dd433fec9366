// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package edgar

import (
	"context"
	"fmt"
	"net/http"

	"github.com/wgold/splitmon/internal/httputil"
	"github.com/wgold/splitmon/internal/store"
	"github.com/wgold/splitmon/pkg/types"
)

// FilingText returns the sanitized full text for a filing, serving from
// the store when cached and fetching the Archives .txt document otherwise.
// The sanitized form is what gets cached: it is an order of magnitude
// smaller and still carries the header accession token the store's
// identity check needs.
func FilingText(ctx context.Context, client *http.Client, st *store.Store, f types.Filing, userAgent string) (string, error) {
	if cached, ok, err := st.FilingText(ctx, f.Accession); err != nil {
		return "", err
	} else if ok {
		return cached, nil
	}

	body, err := httputil.GetBody(ctx, client, f.TextURL, userAgent)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", f.TextURL, err)
	}

	text := SanitizeHTML(string(body))
	if err := st.SetFilingText(ctx, f.Accession, text); err != nil {
		return "", err
	}
	return text, nil
}

// NewTextFetcher binds FilingText to a client and store, in the shape the
// gating pipeline consumes.
func NewTextFetcher(client *http.Client, st *store.Store, userAgent string) func(context.Context, types.Filing) (string, error) {
	return func(ctx context.Context, f types.Filing) (string, error) {
		return FilingText(ctx, client, st, f, userAgent)
	}
}
