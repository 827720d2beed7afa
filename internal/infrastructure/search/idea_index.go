package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/faizi-7/graveyard-back/internal/domain/entity"
)

// IdeaIndex mirrors ideas into an Elasticsearch index for full-text search.
type IdeaIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewIdeaIndex(es *elasticsearch.Client, index string) *IdeaIndex {
	return &IdeaIndex{es: es, index: index}
}

type ideaDoc struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	Creator     string    `json:"creator"`
	Votes       int       `json:"votes"`
	Implemented bool      `json:"implemented"`
	CreatedAt   time.Time `json:"created_at"`
}

func (x *IdeaIndex) Index(ctx context.Context, v entity.IdeaView) error {
	doc := ideaDoc{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		Tags:        v.Tags,
		Creator:     v.Creator.Username,
		Votes:       v.Votes,
		Implemented: v.Implemented,
		CreatedAt:   v.CreatedAt,
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.index, DocumentID: v.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

// Delete removes the document. A missing document is not an error.
func (x *IdeaIndex) Delete(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: x.index, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("es delete: %s", res.Status())
	}
	return nil
}

// Search performs a multi_match on title, description and tags and returns
// matching ids by relevance.
func (x *IdeaIndex) Search(ctx context.Context, q string, size int) ([]string, error) {
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^2", "description", "tags"},
			},
		},
		"_source": false,
		"size":    size,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := x.es.Search(x.es.Search.WithContext(c), x.es.Search.WithIndex(x.index), x.es.Search.WithBody(bytes.NewReader(b)))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}
