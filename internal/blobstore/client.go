package blobstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pmarinho/classxp/internal/models"
)

// Client talks to an external HTTP key-value blob service holding the record
// document. The service exposes GET (read, initializing an empty document on
// first contact) and POST (wholesale overwrite); errors come back as 500 with
// a {message, error} body.
type Client struct {
	baseURL string
	key     string
	http    *http.Client
}

func NewClient(baseURL, key string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

var _ Persister = (*Client)(nil)

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) newRequest(ctx context.Context, method string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/blob/"+DocumentKey, body)
	if err != nil {
		return nil, err
	}
	if c.key != "" {
		req.Header.Set("Authorization", "Bearer "+c.key)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func remoteError(op string, res *http.Response) error {
	var eb errorBody
	_ = json.NewDecoder(io.LimitReader(res.Body, 4096)).Decode(&eb)
	if eb.Message != "" {
		return fmt.Errorf("blob store %s: %s (%s)", op, eb.Message, eb.Error)
	}
	return fmt.Errorf("blob store %s: unexpected status %d", op, res.StatusCode)
}

// Load fetches the current record document.
func (c *Client) Load(ctx context.Context) (*models.Document, error) {
	req, err := c.newRequest(ctx, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("blob store get: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, remoteError("get", res)
	}
	var doc models.Document
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("blob store get: decode: %w", err)
	}
	return &doc, nil
}

// Save overwrites the record document wholesale.
func (c *Client) Save(ctx context.Context, doc *models.Document) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, bytes.NewReader(b))
	if err != nil {
		return err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("blob store post: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return remoteError("post", res)
	}
	return nil
}

// LoadOrEmpty loads the persisted document, falling back to an empty one when
// the store is unreachable. Read failures are logged, never fatal: the app
// must come up and render reports even without history.
func LoadOrEmpty(ctx context.Context, p Persister) *models.Document {
	doc, err := p.Load(ctx)
	if err != nil {
		log.Printf("blobstore: load failed, starting from empty document: %v", err)
		return models.EmptyDocument()
	}
	return doc
}
