package workshop

import (
	"fmt"
	"strings"
	"time"

	"github.com/xraph/herald/destination"
	"github.com/xraph/herald/message"
)

// Embed colors.
const (
	ColorCreated = 0x00dbbe
	ColorUpdated = 0x004dba
)

const (
	descriptionLimit = 180
	threadNameLimit  = 100
	footerDateLayout = "Mon Jan 02 2006 15:04:05 GMT"
)

// Default link bases.
const (
	DefaultItemURL    = "https://steamcommunity.com/sharedfiles/filedetails/?id="
	DefaultCreatorURL = "https://steamcommunity.com/profiles/%s/myworkshopfiles/"
	discordPostURL    = "https://discord.com/channels/%s/%s/%s"
)

// Composer builds workshop messages. Its methods are pure: the same item
// always yields an identical message.
type Composer struct {
	// ItemURL is the item page base; the item id is appended.
	ItemURL string `json:"item_url" yaml:"item_url"`

	// DownloadURL is the download base; the item id is appended.
	DownloadURL string `json:"download_url" yaml:"download_url"`

	// CreatorURL is a format string taking the creator id.
	CreatorURL string `json:"creator_url" yaml:"creator_url"`

	// GuildID is needed to link back to the announcement. Without it the
	// thread post carries no "View post" link.
	GuildID string `json:"guild_id" yaml:"guild_id"`
}

// DefaultComposer returns a composer using the public workshop URLs.
func DefaultComposer() Composer {
	return Composer{
		ItemURL:    DefaultItemURL,
		CreatorURL: DefaultCreatorURL,
	}
}

// Created is the announcement for a new item.
func (c Composer) Created(item *Item) *message.Message {
	return c.base(item, ColorCreated)
}

// Updated is the notice posted into an item's thread.
func (c Composer) Updated(item *Item) *message.Message {
	return c.base(item, ColorUpdated)
}

// Thread opens the item's forum thread, linking back to the announcement
// identified by ack.
func (c Composer) Thread(item *Item, ack destination.Ack) *message.Message {
	msg := c.Created(item).WithThreadName(threadName(item))
	if u := c.PostURL(ack.ChannelID, ack.MessageID); u != "" {
		msg = msg.WithLink(message.Link{Label: "View post", URL: u})
	}
	return msg
}

// Backfill opens a thread for an item whose creation was never announced.
func (c Composer) Backfill(item *Item) *message.Message {
	return c.Created(item).WithThreadName(threadName(item))
}

// MoreByCreator is the small follow-up posted inside a new thread.
func (c Composer) MoreByCreator(item *Item) *message.Message {
	name := item.Creator.Name
	if name == "" {
		name = "this creator"
	}
	e := message.Embed{
		Title: "More by " + name,
		Color: ColorCreated,
	}
	if item.Creator.ID != "" && c.CreatorURL != "" {
		e.URL = fmt.Sprintf(c.CreatorURL, item.Creator.ID)
	}
	return &message.Message{Embeds: []message.Embed{e}}
}

// PostURL links to a posted message, or returns "" without a guild.
func (c Composer) PostURL(channelID, messageID string) string {
	if c.GuildID == "" || channelID == "" || messageID == "" {
		return ""
	}
	return fmt.Sprintf(discordPostURL, c.GuildID, channelID, messageID)
}

// FooterDate renders a unix timestamp the way announcements show it.
func FooterDate(unix int64) string {
	return time.Unix(unix, 0).UTC().Format(footerDateLayout)
}

func (c Composer) base(item *Item, color int) *message.Message {
	page := c.ItemURL + item.ID
	return &message.Message{
		Embeds: []message.Embed{{
			Title:       item.Title,
			URL:         page,
			Description: message.Truncate(item.Description, descriptionLimit),
			Color:       color,
			Footer:      "Published on: " + FooterDate(item.Time.Created),
			ImageURL:    item.Preview.URL,
		}},
		Links: []message.Link{
			{Label: "View", URL: page},
			{Label: "Download", URL: c.DownloadURL + item.ID},
		},
	}
}

func threadName(item *Item) string {
	name := strings.TrimSpace(item.Title)
	if name == "" {
		name = item.ID
	}
	return message.Truncate(name, threadNameLimit)
}
