package catalog

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"resource-workers/internal/common/errors"

	"github.com/elastic/go-elasticsearch/v8"
)

// ElasticsearchSource assembles a guide from an index holding one document per
// resource. The index carries no weights or categories, so the guide it
// produces uses the defaults for both.
type ElasticsearchSource struct {
	client *elasticsearch.Client
	index  string
	size   int
}

func NewElasticsearchSource(client *elasticsearch.Client, index string, size int) *ElasticsearchSource {
	if size <= 0 {
		size = 1000
	}
	return &ElasticsearchSource{client: client, index: index, size: size}
}

func (s *ElasticsearchSource) Name() string {
	return "elasticsearch"
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string          `json:"_id"`
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *ElasticsearchSource) Fetch(ctx context.Context) ([]byte, error) {
	query := `{"query": {"match_all": {}}, "sort": ["_doc"]}`

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(strings.NewReader(query)),
		s.client.Search.WithSize(s.size),
	)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return nil, errors.NewSearchTimeoutError("load_catalog")
		}
		return nil, errors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, errors.NewIndexNotFoundError(s.index)
	}
	if res.IsError() {
		return nil, errors.NewSearchQueryFailedError("load_catalog", fmt.Errorf("status %s", res.Status()))
	}

	var body searchResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, errors.NewSearchQueryFailedError("load_catalog", err)
	}

	resources := make([]json.RawMessage, 0, len(body.Hits.Hits))
	for _, hit := range body.Hits.Hits {
		if len(hit.Source) == 0 {
			continue
		}
		resources = append(resources, withDocumentID(hit.Source, hit.ID))
	}

	return json.Marshal(map[string]interface{}{
		"version":   "index:" + s.index,
		"resources": resources,
	})
}

// withDocumentID fills a missing basic_info.id from the document _id. Sources
// that are not objects are returned unchanged and left to schema validation.
func withDocumentID(source json.RawMessage, id string) json.RawMessage {
	if id == "" {
		return source
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(source, &doc); err != nil || doc == nil {
		return source
	}
	var info map[string]json.RawMessage
	if raw, ok := doc["basic_info"]; ok {
		if err := json.Unmarshal(raw, &info); err != nil {
			return source
		}
	}
	if existing, ok := info["id"]; ok && string(existing) != "null" {
		return source
	}
	if info == nil {
		info = make(map[string]json.RawMessage, 1)
	}

	idJSON, err := json.Marshal(id)
	if err != nil {
		return source
	}
	info["id"] = idJSON
	if doc["basic_info"], err = json.Marshal(info); err != nil {
		return source
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return source
	}
	return out
}
