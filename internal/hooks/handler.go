package hooks

import (
	"context"
	"crypto/hmac"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/chdsbd/eve/internal/errmsg"
	"github.com/chdsbd/eve/internal/github"
	"github.com/chdsbd/eve/internal/heroku"
	"github.com/chdsbd/eve/internal/relay"
	"github.com/chdsbd/eve/internal/utils"

	"github.com/gofiber/fiber/v3"
)

// releaseUpdateAction is the only webhook action that marks a finished
// deploy; everything else is acknowledged and dropped.
const releaseUpdateAction = "update"

// Handler holds the read-only wiring for the deploy hook endpoints.
type Handler struct {
	Secret string
	Org    string
	Repo   string

	Heroku   *heroku.Client
	Pipeline *relay.Pipeline
	Config   relay.Config
}

// webhookReleaseEvent models just the fields we rely on from a Heroku
// release webhook.
type webhookReleaseEvent struct {
	Action string                  `json:"action"`
	Data   webhookReleaseEventData `json:"data"`
}

type webhookReleaseEventData struct {
	App     webhookReleaseApp       `json:"app"`
	Slug    webhookReleaseEventSlug `json:"slug"`
	Version int64                   `json:"version"`
}

type webhookReleaseApp struct {
	Name string `json:"name"`
}

type webhookReleaseEventSlug struct {
	ID     string `json:"id"`
	Commit string `json:"commit"`
}

// webhookHandler validates a Heroku release webhook, resolves the deployed
// commit range and fans the notifications out.
func (h *Handler) webhookHandler(c fiber.Ctx) error {
	if se := h.checkSecret(c); se != errmsg.EmptyStatusError {
		return utils.StatusError(c, se)
	}

	var event webhookReleaseEvent
	if err := json.Unmarshal(c.Body(), &event); err != nil {
		return utils.StatusError(c, errmsg.HookInvalidPayload)
	}

	// Heroku sends create/update pairs per release; only the update marks
	// the deploy as finished.
	if event.Action != releaseUpdateAction {
		return c.SendStatus(fiber.StatusNoContent)
	}

	app := strings.TrimSpace(event.Data.App.Name)
	head := strings.TrimSpace(event.Data.Slug.Commit)
	if app == "" || head == "" || event.Data.Version < 1 {
		return utils.StatusError(c, errmsg.HookInvalidPayload)
	}

	ctx := context.Background()

	// The webhook only carries the new slug; the base of the deployed range
	// is the commit of the previous release's slug.
	base, err := h.resolveBaseRevision(ctx, app, event.Data.Version-1)
	if err != nil {
		return utils.StatusError(c, errmsg.BaseRevisionLookupFailed(err))
	}

	ev := relay.Event{
		AppName: app,
		Org:     h.Org,
		Repo:    h.Repo,
		BaseRef: base,
		HeadRef: head,
		Release: fmt.Sprintf("v%d", event.Data.Version),
	}

	if err := h.Pipeline.Run(ctx, h.Config, ev); err != nil {
		return utils.StatusError(c, pipelineStatusError(err))
	}

	return c.SendStatus(fiber.StatusAccepted)
}

// deployHookHandler handles the classic form-encoded deploy hook, which
// names both ends of the revision range directly.
func (h *Handler) deployHookHandler(c fiber.Ctx) error {
	if se := h.checkSecret(c); se != errmsg.EmptyStatusError {
		return utils.StatusError(c, se)
	}

	app := strings.TrimSpace(c.FormValue("app"))
	head := strings.TrimSpace(c.FormValue("head_long"))
	base := strings.TrimSpace(c.FormValue("prev_head"))
	release := strings.TrimSpace(c.FormValue("release"))

	if app == "" || head == "" || base == "" || release == "" {
		return utils.StatusError(c, errmsg.HookInvalidPayload)
	}

	ev := relay.Event{
		AppName: app,
		Org:     h.Org,
		Repo:    h.Repo,
		BaseRef: base,
		HeadRef: head,
		Release: release,
	}

	if err := h.Pipeline.Run(context.Background(), h.Config, ev); err != nil {
		return utils.StatusError(c, pipelineStatusError(err))
	}

	return c.SendStatus(fiber.StatusAccepted)
}

// pipelineStatusError maps a pipeline failure to its HTTP surface. A signing
// failure means our own key material is unusable, which is a server
// misconfiguration rather than an upstream fault.
func pipelineStatusError(err error) errmsg.StatusError {
	var signingErr *github.SigningError
	if errors.As(err, &signingErr) {
		return errmsg.InternalServerError(err)
	}

	return errmsg.NotifyFailed(err)
}

// checkSecret compares the auth_token query parameter against the shared
// secret in constant time.
func (h *Handler) checkSecret(c fiber.Ctx) errmsg.StatusError {
	if strings.TrimSpace(h.Secret) == "" {
		return errmsg.HookSecretNotConfigured
	}

	token := c.Query("auth_token")
	if !hmac.Equal([]byte(token), []byte(h.Secret)) {
		return errmsg.HookInvalidSecret
	}

	return errmsg.EmptyStatusError
}

// resolveBaseRevision maps a release version to the commit its slug was
// built from.
func (h *Handler) resolveBaseRevision(ctx context.Context, app string, version int64) (string, error) {
	release, err := h.Heroku.GetRelease(ctx, app, version)
	if err != nil {
		return "", err
	}

	slug, err := h.Heroku.GetSlug(ctx, app, release.Slug.ID)
	if err != nil {
		return "", err
	}

	return slug.Commit, nil
}
