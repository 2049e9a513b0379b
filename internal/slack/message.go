// Package slack renders deploy summaries as Block Kit payloads and posts
// them to recipients through chat.postMessage.
package slack

import (
	"fmt"
	"strings"
)

// Block is one element of a Block Kit message.
type Block struct {
	Type     string `json:"type"`
	Text     *Text  `json:"text,omitempty"`
	Elements []Text `json:"elements,omitempty"`
}

// Text is a typed text object inside a block.
type Text struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// CommitRef is one deployed commit, already reduced to the fields a
// notification line needs.
type CommitRef struct {
	Title        string
	URL          string
	ShortSHA     string
	AuthorLogin  string
	RelativeTime string
}

// MessageParams feeds one rendered notification for one author.
type MessageParams struct {
	AppName    string
	Commits    []CommitRef
	Release    string
	CompareURL string
}

// Escape sanitizes free-form text for mrkdwn. Commit titles and author
// logins come from the source-control host and must never break the markup.
// https://api.slack.com/reference/surfaces/formatting#escaping
func Escape(text string) string {
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")

	return text
}

// NewMessage renders the notification payload for one author: an intro
// naming the deployed app, the author's commit lines in fetched order, and a
// footer linking the compare view and release dashboards.
func NewMessage(params MessageParams) []Block {
	lines := make([]string, 0, len(params.Commits))
	for _, commit := range params.Commits {
		lines = append(lines, fmt.Sprintf(
			"<%s|%s> `%s`\n%s committed %s",
			commit.URL,
			Escape(commit.Title),
			commit.ShortSHA,
			Escape(commit.AuthorLogin),
			commit.RelativeTime,
		))
	}

	intro := fmt.Sprintf(
		"Your changes have been released to <https://dashboard.heroku.com/apps/%s|`%s`> on Heroku.",
		params.AppName, params.AppName,
	)

	footer := fmt.Sprintf(
		"<%s|Compare diff> | <https://dashboard.heroku.com/apps/%s/activity/releases/%s|Release log> | <https://dashboard.heroku.com/apps/%s|Release activity> | %s",
		params.CompareURL, params.AppName, params.Release, params.AppName, params.Release,
	)

	return []Block{
		{Type: "section", Text: &Text{Type: "mrkdwn", Text: intro}},
		{Type: "divider"},
		{Type: "section", Text: &Text{Type: "mrkdwn", Text: strings.Join(lines, "\n")}},
		{Type: "divider"},
		{Type: "context", Elements: []Text{{Type: "mrkdwn", Text: footer}}},
	}
}
