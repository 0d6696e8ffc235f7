package openai

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/knowledgeops/kbsync/internal/core/domain"
)

// uploadPurpose marks uploaded files for assistant retrieval.
const uploadPurpose = "assistants"

// fileResponse is the file object returned by the files endpoint.
type fileResponse struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	Purpose  string `json:"purpose"`
}

// Upload stores the document content as a markdown file and returns the
// remote file ID.
func (c *Client) Upload(ctx context.Context, doc domain.Document) (string, error) {
	if doc.ID == "" {
		return "", domain.ErrInvalidInput
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("purpose", uploadPurpose); err != nil {
		return "", fmt.Errorf("writing purpose field: %w", err)
	}

	part, err := writer.CreateFormFile("file", doc.ID+".md")
	if err != nil {
		return "", fmt.Errorf("creating file part: %w", err)
	}
	if _, err := strings.NewReader(doc.Content).WriteTo(part); err != nil {
		return "", fmt.Errorf("writing file content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalising multipart body: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/files", &body)
	if err != nil {
		return "", fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var file fileResponse
	if err := c.do(ctx, req, &file); err != nil {
		return "", err
	}
	return file.ID, nil
}

// Delete removes a remote file entirely.
func (c *Client) Delete(ctx context.Context, remoteFileID string) error {
	req, err := http.NewRequest(http.MethodDelete, c.baseURL+"/files/"+remoteFileID, nil)
	if err != nil {
		return fmt.Errorf("building delete request: %w", err)
	}
	return c.do(ctx, req, nil)
}
