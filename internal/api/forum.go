package api

import (
	"context"
	"net/http"
	"time"
)

// Thread is one Dreamshub forum thread
type Thread struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Replies    int       `json:"replies"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateThreadRequest represents the thread creation body
type CreateThreadRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// ListThreads returns the Dreamshub thread list
func (c *Client) ListThreads(ctx context.Context) ([]Thread, error) {
	var threads []Thread
	if err := c.do(ctx, http.MethodGet, "/dreamshub/threads", nil, &threads); err != nil {
		return nil, err
	}
	return threads, nil
}

// CreateThread posts a new Dreamshub thread
func (c *Client) CreateThread(ctx context.Context, title, body string) (*Thread, error) {
	var thread Thread
	err := c.do(ctx, http.MethodPost, "/dreamshub/threads", CreateThreadRequest{
		Title: title,
		Body:  body,
	}, &thread)
	if err != nil {
		return nil, err
	}
	return &thread, nil
}
