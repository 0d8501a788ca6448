package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

type Config struct {
	Addresses []string
	Username  string
	Password  string
}

type Client struct {
	es *elasticsearch.Client
}

type SearchResult struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []Hit `json:"hits"`
	} `json:"hits"`
}

type Hit struct {
	ID     string          `json:"_id"`
	Score  float64         `json:"_score"`
	Source json.RawMessage `json:"_source"`
}

func NewClient(cfg *Config) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, err
	}

	res, err := es.Info()
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch info: %s", res.Status())
	}
	return &Client{es: es}, nil
}

// CreateIndex creates index with mapping. An existing index is not an error.
func (c *Client) CreateIndex(ctx context.Context, index, mapping string) error {
	res, err := esapi.IndicesCreateRequest{
		Index: index,
		Body:  strings.NewReader(mapping),
	}.Do(ctx, c.es)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusBadRequest {
		return responseError("create index", res)
	}
	return nil
}

func (c *Client) Index(ctx context.Context, index, id string, doc interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	res, err := esapi.IndexRequest{
		Index:      index,
		DocumentID: id,
		Body:       bytes.NewReader(body),
		Refresh:    "false",
	}.Do(ctx, c.es)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index", res)
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, index, id string) error {
	res, err := esapi.DeleteRequest{Index: index, DocumentID: id}.Do(ctx, c.es)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("delete", res)
	}
	return nil
}

func (c *Client) Search(ctx context.Context, index string, query map[string]interface{}) (*SearchResult, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(index),
		c.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("search", res)
	}

	var out SearchResult
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func responseError(op string, res *esapi.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
	return fmt.Errorf("elasticsearch %s: %s: %s", op, res.Status(), msg)
}
