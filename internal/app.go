package internal

import (
	"github.com/chdsbd/eve/internal/env"
	"github.com/chdsbd/eve/internal/github"
	"github.com/chdsbd/eve/internal/heroku"
	"github.com/chdsbd/eve/internal/hooks"
	"github.com/chdsbd/eve/internal/httpx"
	"github.com/chdsbd/eve/internal/relay"
	"github.com/chdsbd/eve/internal/slack"

	"github.com/gofiber/fiber/v3"
)

func SetupApp(envRoot string, appVersion string) *fiber.App {
	app := fiber.New()

	env.Init(envRoot, appVersion)

	httpClient := httpx.NewClient(env.HTTP_TIMEOUT)

	pipeline := relay.NewPipeline(
		github.NewClient(httpClient),
		slack.NewClient(httpClient),
	)

	cfg := relay.Config{
		GitHubAppID:         env.GITHUB_APP_ID,
		GitHubAppPrivateKey: env.GITHUB_APP_PRIVATE_KEY,
		GitHubInstallID:     env.GITHUB_APP_INSTALL_ID,
		Users:               env.GITHUB_SLACK_USER_IDS,
		SlackToken:          env.SLACK_OAUTH_TOKEN,
		DispatchConcurrency: env.DISPATCH_CONCURRENCY,
	}

	handler := &hooks.Handler{
		Secret:   env.SECRET,
		Org:      env.GITHUB_ORG_NAME,
		Repo:     env.GITHUB_REPO_NAME,
		Heroku:   heroku.NewClient(env.HEROKU_TOKEN, httpClient),
		Pipeline: pipeline,
		Config:   cfg,
	}

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Heroku Deploy Notifier")
	})

	app.Get("/ping", func(c fiber.Ctx) error {
		return c.SendString("PONG")
	})

	app.Get("/version", func(c fiber.Ctx) error {
		return c.SendString("v" + env.VERSION)
	})

	hooks.Routes(app, handler)

	return app
}
