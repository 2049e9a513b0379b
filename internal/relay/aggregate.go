package relay

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/chdsbd/eve/internal/github"
	"github.com/chdsbd/eve/internal/slack"
)

// shortShaLen is the display length for commit shas.
const shortShaLen = 7

// AuthorBucket groups one author's deployed commits, in the order they
// appeared in the fetched comparison.
type AuthorBucket struct {
	AuthorID int64
	Login    string
	Commits  []slack.CommitRef
}

// Aggregate walks a comparison in fetched order and buckets commits by
// author, deriving the display fields each notification line needs. Buckets
// keep first-seen author order so output is deterministic for a fixed input
// and a fixed now.
func Aggregate(cmp github.Comparison, now time.Time) ([]AuthorBucket, error) {
	var buckets []AuthorBucket
	index := make(map[int64]int)

	for _, commit := range cmp.Commits {
		if len(commit.SHA) < shortShaLen {
			return nil, &MalformedShaError{SHA: commit.SHA}
		}

		authored, err := time.Parse(time.RFC3339, commit.Commit.Author.Date)
		if err != nil {
			return nil, &TimestampParseError{Raw: commit.Commit.Author.Date}
		}

		ref := slack.CommitRef{
			Title:        commitTitle(commit.Commit.Message),
			URL:          commit.HTMLURL,
			ShortSHA:     commit.SHA[:shortShaLen],
			AuthorLogin:  commit.Author.Login,
			RelativeTime: humanize.RelTime(authored, now, "ago", "from now"),
		}

		pos, ok := index[commit.Author.ID]
		if !ok {
			pos = len(buckets)
			index[commit.Author.ID] = pos
			buckets = append(buckets, AuthorBucket{
				AuthorID: commit.Author.ID,
				Login:    commit.Author.Login,
			})
		}

		buckets[pos].Commits = append(buckets[pos].Commits, ref)
	}

	return buckets, nil
}

// commitTitle is the text before the first newline of a commit message, or
// the whole message when there is none.
func commitTitle(message string) string {
	title, _, _ := strings.Cut(message, "\n")
	return title
}
