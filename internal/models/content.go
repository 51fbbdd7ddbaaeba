package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ContentKind discriminates the variants of a content item's details.
type ContentKind string

const (
	ContentKindText  ContentKind = "text"
	ContentKindImage ContentKind = "image"
)

// Content represents one block of a story. StoryID references the owning
// story and never changes. Details is replaced wholesale on update.
type Content struct {
	ID        int64          `db:"id" json:"id"`
	StoryID   int64          `db:"story_id" json:"story_id"`
	UUID      uuid.UUID      `db:"uuid" json:"uuid"`
	Details   ContentDetails `db:"details" json:"details"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}

func (c *Content) EntityID() int64       { return c.ID }
func (c *Content) SetEntityID(id int64)  { c.ID = id }
func (c *Content) EntityUUID() uuid.UUID { return c.UUID }

// TextContent is a text block: a titled body of prose.
type TextContent struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// ImageContent is an image block: a source reference plus a description.
type ImageContent struct {
	Src         string `json:"src"`
	Description string `json:"description"`
}

// ContentDetails is the polymorphic payload of a content item. Exactly one
// variant pointer is set, matching Kind.
//
// The wire encoding is tagged: the variant's fields are serialized alongside
// a "kind" discriminator, e.g. {"kind":"text","title":"...","body":"..."}.
// Both storage backends read and write this same encoding.
type ContentDetails struct {
	Kind  ContentKind
	Text  *TextContent
	Image *ImageContent
}

// NewTextDetails builds a text details value.
func NewTextDetails(title, body string) ContentDetails {
	return ContentDetails{Kind: ContentKindText, Text: &TextContent{Title: title, Body: body}}
}

// NewImageDetails builds an image details value.
func NewImageDetails(src, description string) ContentDetails {
	return ContentDetails{Kind: ContentKindImage, Image: &ImageContent{Src: src, Description: description}}
}

// Validate reports whether the details value carries the variant its Kind
// promises.
func (d ContentDetails) Validate() error {
	switch d.Kind {
	case ContentKindText:
		if d.Text == nil {
			return fmt.Errorf("%w: text details missing payload", ErrInvalidRecord)
		}
	case ContentKindImage:
		if d.Image == nil {
			return fmt.Errorf("%w: image details missing payload", ErrInvalidRecord)
		}
	default:
		return fmt.Errorf("%w: unknown content kind %q", ErrInvalidRecord, string(d.Kind))
	}
	return nil
}

func (d ContentDetails) MarshalJSON() ([]byte, error) {
	switch d.Kind {
	case ContentKindText:
		if d.Text == nil {
			return nil, fmt.Errorf("%w: text details missing payload", ErrInvalidRecord)
		}
		return json.Marshal(struct {
			Kind ContentKind `json:"kind"`
			TextContent
		}{d.Kind, *d.Text})
	case ContentKindImage:
		if d.Image == nil {
			return nil, fmt.Errorf("%w: image details missing payload", ErrInvalidRecord)
		}
		return json.Marshal(struct {
			Kind ContentKind `json:"kind"`
			ImageContent
		}{d.Kind, *d.Image})
	default:
		return nil, fmt.Errorf("%w: unknown content kind %q", ErrInvalidRecord, string(d.Kind))
	}
}

func (d *ContentDetails) UnmarshalJSON(data []byte) error {
	var tag struct {
		Kind ContentKind `json:"kind"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return fmt.Errorf("%w: decode content details: %v", ErrInvalidRecord, err)
	}

	switch tag.Kind {
	case ContentKindText:
		var text TextContent
		if err := json.Unmarshal(data, &text); err != nil {
			return fmt.Errorf("%w: decode text details: %v", ErrInvalidRecord, err)
		}
		*d = ContentDetails{Kind: ContentKindText, Text: &text}
	case ContentKindImage:
		var image ImageContent
		if err := json.Unmarshal(data, &image); err != nil {
			return fmt.Errorf("%w: decode image details: %v", ErrInvalidRecord, err)
		}
		*d = ContentDetails{Kind: ContentKindImage, Image: &image}
	default:
		return fmt.Errorf("%w: unknown content kind %q", ErrInvalidRecord, string(tag.Kind))
	}
	return nil
}
