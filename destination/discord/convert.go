package discord

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/xraph/herald/destination"
	"github.com/xraph/herald/message"
)

// maxRowButtons is Discord's limit of components per action row.
const maxRowButtons = 5

// ToWebhookParams converts a message into webhook execution parameters.
// Links become link buttons, packed into action rows in order.
func ToWebhookParams(msg *message.Message) *discordgo.WebhookParams {
	p := &discordgo.WebhookParams{}
	if msg == nil {
		return p
	}
	p.Content = msg.Content
	p.ThreadName = msg.ThreadName

	for _, e := range msg.Embeds {
		p.Embeds = append(p.Embeds, toEmbed(e))
	}

	var row []discordgo.MessageComponent
	for _, l := range msg.Links {
		row = append(row, discordgo.Button{
			Label: l.Label,
			Style: discordgo.LinkButton,
			URL:   l.URL,
		})
		if len(row) == maxRowButtons {
			p.Components = append(p.Components, discordgo.ActionsRow{Components: row})
			row = nil
		}
	}
	if len(row) > 0 {
		p.Components = append(p.Components, discordgo.ActionsRow{Components: row})
	}
	return p
}

func toEmbed(e message.Embed) *discordgo.MessageEmbed {
	me := &discordgo.MessageEmbed{
		Title:       e.Title,
		URL:         e.URL,
		Description: e.Description,
		Color:       e.Color,
	}
	if e.Footer != "" {
		me.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
	}
	if e.ImageURL != "" {
		me.Image = &discordgo.MessageEmbedImage{URL: e.ImageURL}
	}
	return me
}

// ParseWebhookURL parses a webhook URL of the form
// https://discord.com/api/webhooks/<id>/<token>[?thread_id=<id>].
func ParseWebhookURL(raw string) (destination.Target, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return destination.Target{}, fmt.Errorf("discord: parse webhook url: %w", err)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] != "webhooks" {
			continue
		}
		t := destination.Target{
			WebhookID: parts[i+1],
			Token:     parts[i+2],
			ThreadID:  u.Query().Get("thread_id"),
		}
		if !t.IsZero() {
			return t, nil
		}
	}
	return destination.Target{}, fmt.Errorf("discord: %q is not a webhook url", raw)
}
