package github

import (
	_ "embed"
	"fmt"

	"github.com/xraph/herald/event"
)

//go:embed payload.schema.json
var payloadSchema []byte

// Payload holds the parts of a GitHub webhook delivery that messages use.
// Fields absent from a given event type stay zero.
type Payload struct {
	Action     string     `json:"action"`
	Repository Repository `json:"repository"`
	Sender     User       `json:"sender"`

	// push
	Ref     string   `json:"ref"`
	Compare string   `json:"compare"`
	Commits []Commit `json:"commits"`

	Issue       *Issue   `json:"issue,omitempty"`
	PullRequest *Issue   `json:"pull_request,omitempty"`
	Release     *Release `json:"release,omitempty"`
}

type Repository struct {
	FullName        string `json:"full_name"`
	HTMLURL         string `json:"html_url"`
	StargazersCount int    `json:"stargazers_count"`
}

type User struct {
	Login     string `json:"login"`
	HTMLURL   string `json:"html_url"`
	AvatarURL string `json:"avatar_url"`
}

type Commit struct {
	ID      string       `json:"id"`
	Message string       `json:"message"`
	URL     string       `json:"url"`
	Author  CommitAuthor `json:"author"`
}

type CommitAuthor struct {
	Name string `json:"name"`
}

// Issue is shared by issues and pull requests.
type Issue struct {
	Number  int    `json:"number"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	HTMLURL string `json:"html_url"`
	Merged  bool   `json:"merged"`
}

type Release struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	Body    string `json:"body"`
	HTMLURL string `json:"html_url"`
}

func payloadOf(evt *event.Event) (*Payload, error) {
	p, ok := evt.Data.(*Payload)
	if !ok || p == nil {
		return nil, fmt.Errorf("github: event %s carries %T, not *github.Payload", evt.ID, evt.Data)
	}
	return p, nil
}
