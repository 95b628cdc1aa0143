package workshop

import (
	_ "embed"
	"fmt"

	"github.com/xraph/herald/event"
)

// itemSchema requires the fields the composers read unconditionally.
//
//go:embed item.schema.json
var itemSchema []byte

// Item is a published workshop item as sent by the producer.
type Item struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Preview     Preview `json:"preview"`
	Time        Times   `json:"time"`
	Creator     Creator `json:"creator"`
}

// Preview references the item's preview image.
type Preview struct {
	URL string `json:"url"`
}

// Times are unix seconds.
type Times struct {
	Created int64 `json:"created"`
	Updated int64 `json:"updated,omitempty"`
}

// Creator is the publishing user.
type Creator struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// itemOf returns the workshop item carried by evt.
func itemOf(evt *event.Event) (*Item, error) {
	item, ok := evt.Data.(*Item)
	if !ok || item == nil {
		return nil, fmt.Errorf("workshop: event %s carries %T, not *workshop.Item", evt.ID, evt.Data)
	}
	return item, nil
}
