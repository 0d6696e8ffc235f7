package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// vectorStoreFile is one entry in a vector store file listing.
type vectorStoreFile struct {
	ID string `json:"id"`
}

// vectorStoreFileList is a paginated vector store file listing.
type vectorStoreFileList struct {
	Data    []vectorStoreFile `json:"data"`
	HasMore bool              `json:"has_more"`
}

// AttachToIndex makes an uploaded file searchable in the vector store.
func (c *Client) AttachToIndex(ctx context.Context, remoteFileID string) error {
	payload, err := json.Marshal(map[string]string{"file_id": remoteFileID})
	if err != nil {
		return fmt.Errorf("marshalling attach payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.vectorStoreURL(""), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building attach request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(betaHeader, betaValue)

	return c.do(ctx, req, nil)
}

// DetachFromIndex removes a file from the vector store.
func (c *Client) DetachFromIndex(ctx context.Context, remoteFileID string) error {
	req, err := http.NewRequest(http.MethodDelete, c.vectorStoreURL("/"+remoteFileID), nil)
	if err != nil {
		return fmt.Errorf("building detach request: %w", err)
	}
	req.Header.Set(betaHeader, betaValue)

	return c.do(ctx, req, nil)
}

// ListIndexFiles returns every remote file ID attached to the vector
// store, following cursor pagination.
func (c *Client) ListIndexFiles(ctx context.Context) ([]string, error) {
	var ids []string
	after := ""

	for {
		endpoint := c.vectorStoreURL("")
		if after != "" {
			endpoint += "?after=" + url.QueryEscape(after)
		}

		req, err := http.NewRequest(http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("building list request: %w", err)
		}
		req.Header.Set(betaHeader, betaValue)

		var page vectorStoreFileList
		if err := c.do(ctx, req, &page); err != nil {
			return nil, err
		}

		for _, f := range page.Data {
			ids = append(ids, f.ID)
		}

		if !page.HasMore || len(page.Data) == 0 {
			return ids, nil
		}
		after = page.Data[len(page.Data)-1].ID
	}
}

func (c *Client) vectorStoreURL(suffix string) string {
	return c.baseURL + "/vector_stores/" + c.vectorStoreID + "/files" + suffix
}
