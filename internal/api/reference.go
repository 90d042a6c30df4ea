package api

import (
	"context"
	"fmt"
	"net/http"
)

// Region is one entry of the administrative reference lists: a numeric
// code used for dependent queries and the human-readable name used for
// submission and display.
type Region struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// RecommendationReceipt is the backend's acknowledgement of a stored
// recommendation record.
type RecommendationReceipt struct {
	ID string `json:"id"`
}

// Provinces returns the province reference list
func (c *Client) Provinces(ctx context.Context) ([]Region, error) {
	var regions []Region
	if err := c.do(ctx, http.MethodGet, "/region/provinces", nil, &regions); err != nil {
		return nil, err
	}
	return regions, nil
}

// Cities returns the cities of one province, keyed by province code
func (c *Client) Cities(ctx context.Context, provinceCode string) ([]Region, error) {
	var regions []Region
	path := fmt.Sprintf("/region/provinces/%s/cities", provinceCode)
	if err := c.do(ctx, http.MethodGet, path, nil, &regions); err != nil {
		return nil, err
	}
	return regions, nil
}

// SubmitRecommendation sends the accumulated wizard draft to the backend
// and returns the authoritative record id it echoes.
func (c *Client) SubmitRecommendation(ctx context.Context, draft map[string]any) (*RecommendationReceipt, error) {
	var receipt RecommendationReceipt
	if err := c.do(ctx, http.MethodPost, "/scholarship/recommendations", draft, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}
