// Package storage provides the OpenSearch projection store for the search
// service.
package storage

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/gavelworks/gavel-stack/search/internal/models"
)

var ErrItemNotFound = errors.New("search item not found")

// Store is the projection store contract. The projector and the query
// service depend on this, not on OpenSearch directly.
type Store interface {
	Get(ctx context.Context, id string) (*models.SearchItem, error)
	Upsert(ctx context.Context, item *models.SearchItem) error
	Tombstone(ctx context.Context, id string) error
	Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResponse, error)
	Count(ctx context.Context) (int, error)
	BulkUpsert(ctx context.Context, items []*models.SearchItem) error
}

type Config struct {
	URL      string
	Username string
	Password string
	Insecure bool
	Index    string
}

// OpenSearchStore stores projected auction documents in a single index,
// keyed by auction id so repeated upserts of the same snapshot are no-ops.
type OpenSearchStore struct {
	client *opensearch.Client
	index  string
}

func NewOpenSearchStore(cfg Config) (*OpenSearchStore, error) {
	httpClient := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: cfg.Insecure,
			},
		},
	}

	osCfg := opensearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: httpClient.Transport,
	}

	client, err := opensearch.NewClient(osCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create opensearch client: %w", err)
	}

	// Test connection
	info, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to ping opensearch: %w", err)
	}
	defer info.Body.Close()

	if info.IsError() {
		return nil, fmt.Errorf("opensearch returned error: %s", info.Status())
	}

	return &OpenSearchStore{
		client: client,
		index:  cfg.Index,
	}, nil
}

// indexMapping puts full-text analysis on the fields users actually search
// and keeps everything else exact.
const indexMapping = `{
	"mappings": {
		"properties": {
			"id":            {"type": "keyword"},
			"seller":        {"type": "keyword"},
			"reserve_price": {"type": "integer"},
			"auction_end":   {"type": "date"},
			"status":        {"type": "keyword"},
			"make":          {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
			"model":         {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
			"year":          {"type": "integer"},
			"color":         {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
			"mileage":       {"type": "integer"},
			"created_at":    {"type": "date"},
			"updated_at":    {"type": "date"},
			"deleted":       {"type": "boolean"}
		}
	}
}`

// EnsureIndex creates the projection index with its mapping if it does not
// exist yet.
func (s *OpenSearchStore) EnsureIndex(ctx context.Context) error {
	exists, err := s.client.Indices.Exists([]string{s.index},
		s.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check index %s: %w", s.index, err)
	}
	defer exists.Body.Close()

	if exists.StatusCode == http.StatusOK {
		return nil
	}

	res, err := s.client.Indices.Create(s.index,
		s.client.Indices.Create.WithContext(ctx),
		s.client.Indices.Create.WithBody(strings.NewReader(indexMapping)))
	if err != nil {
		return fmt.Errorf("failed to create index %s: %w", s.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("opensearch error creating index: %s - %s", res.Status(), string(body))
	}

	return nil
}

func (s *OpenSearchStore) Get(ctx context.Context, id string) (*models.SearchItem, error) {
	res, err := opensearchapi.GetRequest{
		Index:      s.index,
		DocumentID: id,
	}.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s: %w", id, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, ErrItemNotFound
	}
	if res.IsError() {
		return nil, fmt.Errorf("opensearch error: %s", res.Status())
	}

	var doc struct {
		Source models.SearchItem `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode document %s: %w", id, err)
	}

	return &doc.Source, nil
}

// Upsert writes the full document keyed by its id. Writing the same
// snapshot twice converges on the same document.
func (s *OpenSearchStore) Upsert(ctx context.Context, item *models.SearchItem) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to marshal document %s: %w", item.ID, err)
	}

	res, err := opensearchapi.IndexRequest{
		Index:      s.index,
		DocumentID: item.ID,
		Body:       bytes.NewReader(data),
	}.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("failed to index document %s: %w", item.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("opensearch error indexing %s: %s - %s", item.ID, res.Status(), string(body))
	}

	return nil
}

// Tombstone marks the document deleted, creating a bare tombstone when no
// document exists yet so a late-arriving update cannot resurrect it.
func (s *OpenSearchStore) Tombstone(ctx context.Context, id string) error {
	body := strings.NewReader(`{"doc": {"id": "` + id + `", "deleted": true}, "doc_as_upsert": true}`)

	res, err := opensearchapi.UpdateRequest{
		Index:      s.index,
		DocumentID: id,
		Body:       body,
	}.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("failed to tombstone document %s: %w", id, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		respBody, _ := io.ReadAll(res.Body)
		return fmt.Errorf("opensearch error tombstoning %s: %s - %s", id, res.Status(), string(respBody))
	}

	return nil
}

func (s *OpenSearchStore) Search(ctx context.Context, req *models.SearchRequest) (*models.SearchResponse, error) {
	from := (req.Page - 1) * req.Limit
	if from < 0 {
		from = 0
	}

	searchBody := map[string]interface{}{
		"query": buildQuery(req),
		"from":  from,
		"size":  req.Limit,
		"sort":  buildSort(req.OrderBy),
	}

	bodyBytes, err := json.Marshal(searchBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search body: %w", err)
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(bodyBytes)),
		s.client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("opensearch error: %s - %s", res.Status(), string(body))
	}

	var searchResult struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.SearchItem `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&searchResult); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	results := make([]*models.SearchItem, 0, len(searchResult.Hits.Hits))
	for _, hit := range searchResult.Hits.Hits {
		item := hit.Source
		results = append(results, &item)
	}

	total := searchResult.Hits.Total.Value
	totalPages := (total + req.Limit - 1) / req.Limit
	if totalPages < 1 {
		totalPages = 1
	}

	return &models.SearchResponse{
		Results: results,
		Pagination: models.Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// Count returns the number of living documents.
func (s *OpenSearchStore) Count(ctx context.Context) (int, error) {
	body := strings.NewReader(`{"query": {"bool": {"must_not": [{"term": {"deleted": true}}]}}}`)

	res, err := s.client.Count(
		s.client.Count.WithContext(ctx),
		s.client.Count.WithIndex(s.index),
		s.client.Count.WithBody(body),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("opensearch error: %s", res.Status())
	}

	var countResult struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&countResult); err != nil {
		return 0, fmt.Errorf("failed to decode count response: %w", err)
	}

	return countResult.Count, nil
}

// BulkUpsert indexes a batch of documents in one request.
func (s *OpenSearchStore) BulkUpsert(ctx context.Context, items []*models.SearchItem) error {
	if len(items) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, item := range items {
		meta := fmt.Sprintf(`{"index": {"_index": %q, "_id": %q}}`, s.index, item.ID)
		buf.WriteString(meta)
		buf.WriteByte('\n')

		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to marshal document %s: %w", item.ID, err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}

	res, err := s.client.Bulk(bytes.NewReader(buf.Bytes()),
		s.client.Bulk.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to bulk index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("opensearch bulk error: %s - %s", res.Status(), string(body))
	}

	var bulkResult struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulkResult); err != nil {
		return fmt.Errorf("failed to decode bulk response: %w", err)
	}
	if bulkResult.Errors {
		return fmt.Errorf("bulk index reported item failures")
	}

	return nil
}

func buildQuery(req *models.SearchRequest) map[string]interface{} {
	// Tombstoned documents never leave the index but never match either.
	mustNot := []map[string]interface{}{
		{"term": map[string]interface{}{"deleted": true}},
	}

	var must []map[string]interface{}
	if req.Query != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  req.Query,
				"fields": []string{"make", "model", "color"},
			},
		})
	}
	if req.Seller != "" {
		must = append(must, map[string]interface{}{
			"term": map[string]string{"seller": req.Seller},
		})
	}

	boolQuery := map[string]interface{}{
		"must_not": mustNot,
	}
	if len(must) > 0 {
		boolQuery["must"] = must
	}

	return map[string]interface{}{"bool": boolQuery}
}

func buildSort(orderBy string) []map[string]interface{} {
	switch orderBy {
	case "new":
		return []map[string]interface{}{
			{"created_at": map[string]string{"order": "desc"}},
		}
	default:
		return []map[string]interface{}{
			{"make.keyword": map[string]string{"order": "asc"}},
			{"id": map[string]string{"order": "asc"}},
		}
	}
}
