// Package bootstrap backfills the search index from the write side.
//
// On startup with an empty index the full auction set is fetched over the
// auction service's HTTP API and bulk indexed before live consumption
// starts. Because live projection upserts full snapshots, the race between
// backfill and live events is harmless: whichever applies last wins with a
// complete document.
package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gavelworks/gavel-stack/common/events"
	"github.com/gavelworks/gavel-stack/common/logging"
	"github.com/gavelworks/gavel-stack/search/internal/metrics"
	"github.com/gavelworks/gavel-stack/search/internal/models"
	"github.com/gavelworks/gavel-stack/search/internal/storage"
)

type Bootstrapper struct {
	store      storage.Store
	auctionURL string
	httpClient *http.Client
	log        *logging.Logger
}

func New(store storage.Store, auctionURL string, log *logging.Logger) *Bootstrapper {
	return &Bootstrapper{
		store:      store,
		auctionURL: auctionURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

// Run backfills the index when it is empty, otherwise does nothing and lets
// live consumption catch up.
func (b *Bootstrapper) Run(ctx context.Context) error {
	count, err := b.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("count index documents: %w", err)
	}
	if count > 0 {
		b.log.InfoContext(ctx, "index already populated, skipping backfill",
			"documents", count)
		return nil
	}

	snaps, err := b.fetchAuctions(ctx)
	if err != nil {
		return err
	}

	items := make([]*models.SearchItem, 0, len(snaps))
	for _, snap := range snaps {
		items = append(items, models.FromSnapshot(snap))
	}

	if err := b.store.BulkUpsert(ctx, items); err != nil {
		return fmt.Errorf("bulk index backfill: %w", err)
	}

	metrics.BootstrapDocuments.Set(float64(len(items)))
	b.log.InfoContext(ctx, "backfilled search index", "documents", len(items))
	return nil
}

func (b *Bootstrapper) fetchAuctions(ctx context.Context) ([]*events.AuctionSnapshot, error) {
	url := b.auctionURL + "/auctions"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build backfill request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch auctions from %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auction service returned %s", resp.Status)
	}

	var snaps []*events.AuctionSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snaps); err != nil {
		return nil, fmt.Errorf("decode auctions response: %w", err)
	}

	return snaps, nil
}
