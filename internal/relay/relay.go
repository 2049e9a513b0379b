// Package relay runs the deploy-notification pipeline: authenticate as the
// GitHub App installation, fetch the deployed commit range, bucket commits
// per author and deliver one Slack summary to each mapped author.
package relay

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/chdsbd/eve/internal/github"
	"github.com/chdsbd/eve/internal/slack"
)

// UserDirectory maps GitHub author ids to Slack recipient ids. Authors
// without an entry are skipped, never failed.
type UserDirectory map[int64]string

// Config carries the read-only credentials and directory for a pipeline
// run. It is built once at startup and passed in by value; the pipeline
// never mutates it, so concurrent runs can share it.
type Config struct {
	GitHubAppID         string
	GitHubAppPrivateKey string
	GitHubInstallID     string
	Users               UserDirectory
	SlackToken          string
	DispatchConcurrency int
}

// Event is one validated deploy notification to fan out.
type Event struct {
	AppName string
	Org     string
	Repo    string
	BaseRef string
	HeadRef string
	Release string
}

// Pipeline holds the remote API clients. Now is injectable so tests can pin
// relative-time phrases.
type Pipeline struct {
	GitHub *github.Client
	Slack  *slack.Client
	Now    func() time.Time
}

// NewPipeline wires a pipeline around the given API clients.
func NewPipeline(gh *github.Client, sl *slack.Client) *Pipeline {
	return &Pipeline{
		GitHub: gh,
		Slack:  sl,
		Now:    time.Now,
	}
}

// Run executes one deploy event end to end. Every step before the author
// loop aborts the run on its first error; within the loop delivery is best
// effort, attempting every mapped author and joining failures into one
// aggregate error.
func (p *Pipeline) Run(ctx context.Context, cfg Config, ev Event) error {
	assertion, err := github.SignAppToken(cfg.GitHubAppPrivateKey, cfg.GitHubAppID, p.Now())
	if err != nil {
		return &PipelineError{Step: "sign", Err: err}
	}

	token, err := p.GitHub.CreateInstallationToken(ctx, assertion, cfg.GitHubInstallID)
	if err != nil {
		return &PipelineError{Step: "authenticate", Err: err}
	}

	cmp, err := p.GitHub.Compare(ctx, token.Token, ev.Org, ev.Repo, ev.BaseRef, ev.HeadRef)
	if err != nil {
		return &PipelineError{Step: "fetch", Err: err}
	}

	buckets, err := Aggregate(cmp, p.Now())
	if err != nil {
		return &PipelineError{Step: "aggregate", Err: err}
	}

	if err := p.dispatch(ctx, cfg, ev, cmp.HTMLURL, buckets); err != nil {
		return &PipelineError{Step: "dispatch", Err: err}
	}

	return nil
}

// dispatch fans the rendered notifications out to Slack, bounded by the
// configured concurrency. Author iterations are independent; errs is indexed
// per bucket so no two goroutines write the same element.
func (p *Pipeline) dispatch(ctx context.Context, cfg Config, ev Event, compareURL string, buckets []AuthorBucket) error {
	limit := cfg.DispatchConcurrency
	if limit < 1 {
		limit = 1
	}

	sem := make(chan struct{}, limit)
	errs := make([]error, len(buckets))

	var wg sync.WaitGroup
	for i, bucket := range buckets {
		channel, ok := cfg.Users[bucket.AuthorID]
		if !ok {
			continue
		}

		wg.Add(1)
		sem <- struct{}{}

		go func(i int, bucket AuthorBucket, channel string) {
			defer wg.Done()
			defer func() { <-sem }()

			blocks := slack.NewMessage(slack.MessageParams{
				AppName:    ev.AppName,
				Commits:    bucket.Commits,
				Release:    ev.Release,
				CompareURL: compareURL,
			})

			if err := p.Slack.PostMessage(ctx, cfg.SlackToken, channel, blocks); err != nil {
				log.Printf("failed to notify %s (github id %d): %v", bucket.Login, bucket.AuthorID, err)
				errs[i] = fmt.Errorf("author %d: %w", bucket.AuthorID, err)
			}
		}(i, bucket, channel)
	}

	wg.Wait()

	return errors.Join(errs...)
}
