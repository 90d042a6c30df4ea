package api

import (
	"context"
	"fmt"
	"net/http"
)

// Course is one learning-management course
type Course struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Materials   []Material `json:"materials,omitempty"`
}

// Material is one viewable course item
type Material struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	VideoURL string `json:"video_url"`
	Duration int    `json:"duration_minutes"`
}

// Courses returns the courses available to the current user
func (c *Client) Courses(ctx context.Context) ([]Course, error) {
	var courses []Course
	if err := c.do(ctx, http.MethodGet, "/lms/courses", nil, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// Course returns one course with its materials
func (c *Client) Course(ctx context.Context, id string) (*Course, error) {
	var course Course
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/lms/courses/%s", id), nil, &course); err != nil {
		return nil, err
	}
	return &course, nil
}
