package github

import (
	"fmt"
	"strings"

	"github.com/xraph/herald/event"
	"github.com/xraph/herald/message"
	"github.com/xraph/herald/rule"
)

// Embed colors.
const (
	ColorPush    = 0x7289da
	ColorOpened  = 0x2cbe4e
	ColorClosed  = 0xcb2431
	ColorMerged  = 0x6f42c1
	ColorRelease = 0x0366d6
	ColorDefault = 0x24292e
)

func (s *Source) buildRules() []*rule.Rule {
	rules := []*rule.Rule{
		s.newRule("push", s.composePush),
		s.newRule("issues.*", s.composeIssue),
		s.newRule("pull_request.*", s.composePullRequest),
		s.newRule("release.*", s.composeRelease),
		s.newRule("star.*", s.composeStar),
	}
	if s.cfg.DefaultEvents {
		rules = append(rules, s.newRule("*", s.composeDefault))
	}
	return rules
}

func (s *Source) newRule(name string, fn func(*event.Event, *Payload) *message.Message) *rule.Rule {
	return &rule.Rule{
		Name:   name,
		Target: s.cfg.Webhook,
		Compose: func(evt *event.Event) (*message.Message, error) {
			p, err := payloadOf(evt)
			if err != nil {
				return nil, err
			}
			return fn(evt, p), nil
		},
	}
}

func (s *Source) composePush(_ *event.Event, p *Payload) *message.Message {
	branch := strings.TrimPrefix(p.Ref, "refs/heads/")
	noun := "commits"
	if len(p.Commits) == 1 {
		noun = "commit"
	}

	var b strings.Builder
	for _, c := range p.Commits {
		short := c.ID
		if len(short) > 7 {
			short = short[:7]
		}
		title, _, _ := strings.Cut(c.Message, "\n")
		fmt.Fprintf(&b, "[`%s`](%s) %s - %s\n", short, c.URL, title, c.Author.Name)
	}

	return s.embed(p, message.Embed{
		Title:       fmt.Sprintf("[%s:%s] %d new %s", p.Repository.FullName, branch, len(p.Commits), noun),
		URL:         p.Compare,
		Description: strings.TrimSuffix(b.String(), "\n"),
		Color:       ColorPush,
	})
}

func (s *Source) composeIssue(_ *event.Event, p *Payload) *message.Message {
	if p.Issue == nil {
		return s.composeDefault(nil, p)
	}
	return s.embed(p, message.Embed{
		Title:       fmt.Sprintf("[%s] Issue %s: #%d %s", p.Repository.FullName, p.Action, p.Issue.Number, p.Issue.Title),
		URL:         p.Issue.HTMLURL,
		Description: p.Issue.Body,
		Color:       actionColor(p.Action, false),
	})
}

func (s *Source) composePullRequest(_ *event.Event, p *Payload) *message.Message {
	if p.PullRequest == nil {
		return s.composeDefault(nil, p)
	}
	action := p.Action
	if action == "closed" && p.PullRequest.Merged {
		action = "merged"
	}
	return s.embed(p, message.Embed{
		Title:       fmt.Sprintf("[%s] Pull request %s: #%d %s", p.Repository.FullName, action, p.PullRequest.Number, p.PullRequest.Title),
		URL:         p.PullRequest.HTMLURL,
		Description: p.PullRequest.Body,
		Color:       actionColor(p.Action, p.PullRequest.Merged),
	})
}

func (s *Source) composeRelease(_ *event.Event, p *Payload) *message.Message {
	if p.Release == nil {
		return s.composeDefault(nil, p)
	}
	name := p.Release.Name
	if name == "" {
		name = p.Release.TagName
	}
	return s.embed(p, message.Embed{
		Title:       fmt.Sprintf("[%s] Release %s: %s", p.Repository.FullName, p.Action, name),
		URL:         p.Release.HTMLURL,
		Description: p.Release.Body,
		Color:       ColorRelease,
	})
}

func (s *Source) composeStar(_ *event.Event, p *Payload) *message.Message {
	verb := "starred"
	if p.Action == "deleted" {
		verb = "unstarred"
	}
	return s.embed(p, message.Embed{
		Title: fmt.Sprintf("[%s] %s %s the repository (%d stars)", p.Repository.FullName, p.Sender.Login, verb, p.Repository.StargazersCount),
		URL:   p.Repository.HTMLURL,
		Color: ColorDefault,
	})
}

func (s *Source) composeDefault(evt *event.Event, p *Payload) *message.Message {
	kind := p.Action
	if evt != nil {
		kind = evt.Kind
	}
	return s.embed(p, message.Embed{
		Title: fmt.Sprintf("[%s] %s", p.Repository.FullName, kind),
		URL:   p.Repository.HTMLURL,
		Color: ColorDefault,
	})
}

// embed applies the shared author footer and body limit.
func (s *Source) embed(p *Payload, e message.Embed) *message.Message {
	e.Description = message.Truncate(e.Description, s.cfg.BodyLimit)
	if p.Sender.Login != "" {
		e.Footer = p.Sender.Login
	}
	return &message.Message{Embeds: []message.Embed{e}}
}

func actionColor(action string, merged bool) int {
	switch {
	case merged:
		return ColorMerged
	case action == "opened" || action == "reopened":
		return ColorOpened
	case action == "closed":
		return ColorClosed
	default:
		return ColorDefault
	}
}
