// Package api defines the payload shapes exchanged with the external HTTP
// layer. Payloads expose UUIDs only; numeric ids stay inside the storage
// core.
package api

import (
	"time"

	"github.com/google/uuid"

	"memory-server/internal/models"
)

// User is the outward shape of a user record.
type User struct {
	UUID      uuid.UUID `json:"uuid"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser converts a domain user into its payload shape.
func NewUser(user models.User) User {
	return User{
		UUID:      user.UUID,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// Story is the outward shape of a story aggregate: the story row together
// with its content items.
type Story struct {
	UUID      uuid.UUID `json:"uuid"`
	Title     string    `json:"title"`
	Content   []Content `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewStory composes a story payload from the domain story and its content.
func NewStory(story models.Story, content []models.Content) Story {
	items := make([]Content, 0, len(content))
	for _, c := range content {
		items = append(items, NewContent(c))
	}
	return Story{
		UUID:      story.UUID,
		Title:     story.Title,
		Content:   items,
		CreatedAt: story.CreatedAt,
		UpdatedAt: story.UpdatedAt,
	}
}

// Content is the outward shape of one content item.
type Content struct {
	UUID      uuid.UUID             `json:"uuid"`
	Kind      models.ContentKind    `json:"kind"`
	Details   models.ContentDetails `json:"details"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// NewContent converts a domain content item into its payload shape.
func NewContent(content models.Content) Content {
	return Content{
		UUID:      content.UUID,
		Kind:      content.Details.Kind,
		Details:   content.Details,
		CreatedAt: content.CreatedAt,
		UpdatedAt: content.UpdatedAt,
	}
}

// Prompt is the outward shape of a writing prompt.
type Prompt struct {
	UUID        uuid.UUID `json:"uuid"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewPrompt converts a domain prompt into its payload shape.
func NewPrompt(prompt models.Prompt) Prompt {
	return Prompt{
		UUID:        prompt.UUID,
		Name:        prompt.Name,
		Description: prompt.Description,
		CreatedAt:   prompt.CreatedAt,
		UpdatedAt:   prompt.UpdatedAt,
	}
}

// CreateStoryRequest creates a story with an optional initial content set.
type CreateStoryRequest struct {
	Title   string                  `json:"title"`
	Content []models.ContentDetails `json:"content"`
}

// UpdateStoryRequest is a partial story update; nil fields are untouched.
type UpdateStoryRequest struct {
	Title   *string `json:"title,omitempty"`
	Deleted *bool   `json:"deleted,omitempty"`
}

// UpdateContentRequest replaces one content item's details wholesale.
type UpdateContentRequest struct {
	UUID    uuid.UUID             `json:"uuid"`
	Details models.ContentDetails `json:"details"`
}
