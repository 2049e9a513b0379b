package env

import (
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// actual environment variables
var SECRET string
var GITHUB_APP_ID string
var GITHUB_APP_PRIVATE_KEY string
var GITHUB_APP_INSTALL_ID string
var GITHUB_ORG_NAME string
var GITHUB_REPO_NAME string
var HEROKU_TOKEN string
var SLACK_OAUTH_TOKEN string
var GITHUB_SLACK_USER_IDS map[int64]string
var HTTP_TIMEOUT time.Duration
var DISPATCH_CONCURRENCY int
var PREFORK bool

// this is required
var VERSION string

// requiredVars must all be present for the relay to do anything useful; a
// process booted without them would reject every webhook at runtime.
var requiredVars = []string{
	"SECRET",
	"GITHUB_APP_ID",
	"GITHUB_APP_PRIVATE_KEY",
	"GITHUB_APP_INSTALL_ID",
	"GITHUB_ORG_NAME",
	"GITHUB_REPO_NAME",
	"HEROKU_TOKEN",
	"SLACK_OAUTH_TOKEN",
}

func Init(envRoot string, appVersion string) {
	loadEnv(envRoot)
	loadVersion(appVersion)

	if missing := MissingVars(os.Getenv); len(missing) > 0 {
		log.Fatalf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	PREFORK, _ = strconv.ParseBool(os.Getenv("PREFORK"))
	SECRET = strings.TrimSpace(os.Getenv("SECRET"))
	GITHUB_APP_ID = strings.TrimSpace(os.Getenv("GITHUB_APP_ID"))
	GITHUB_APP_PRIVATE_KEY = os.Getenv("GITHUB_APP_PRIVATE_KEY")
	GITHUB_APP_INSTALL_ID = strings.TrimSpace(os.Getenv("GITHUB_APP_INSTALL_ID"))
	GITHUB_ORG_NAME = strings.TrimSpace(os.Getenv("GITHUB_ORG_NAME"))
	GITHUB_REPO_NAME = strings.TrimSpace(os.Getenv("GITHUB_REPO_NAME"))
	HEROKU_TOKEN = strings.TrimSpace(os.Getenv("HEROKU_TOKEN"))
	SLACK_OAUTH_TOKEN = strings.TrimSpace(os.Getenv("SLACK_OAUTH_TOKEN"))

	users, err := ParseUserIDs(os.Getenv("GITHUB_SLACK_USER_IDS"))
	if err != nil {
		log.Fatalf("failed to parse GITHUB_SLACK_USER_IDS: %v", err)
	}
	GITHUB_SLACK_USER_IDS = users

	HTTP_TIMEOUT = 10 * time.Second
	if raw := strings.TrimSpace(os.Getenv("HTTP_TIMEOUT_SECONDS")); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs < 1 {
			log.Fatalf("invalid HTTP_TIMEOUT_SECONDS %q", raw)
		}
		HTTP_TIMEOUT = time.Duration(secs) * time.Second
	}

	DISPATCH_CONCURRENCY = 4
	if raw := strings.TrimSpace(os.Getenv("DISPATCH_CONCURRENCY")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			log.Fatalf("invalid DISPATCH_CONCURRENCY %q", raw)
		}
		DISPATCH_CONCURRENCY = n
	}
}

// MissingVars reports which required variables the lookup leaves empty.
func MissingVars(lookup func(string) string) []string {
	var missing []string
	for _, name := range requiredVars {
		if strings.TrimSpace(lookup(name)) == "" {
			missing = append(missing, name)
		}
	}

	return missing
}

// ParseUserIDs reads whitespace-separated github-id=slack-id pairs, e.g.
// "1929960=UAXQFKA3C 7340772=UAYMB3CNS".
func ParseUserIDs(s string) (map[int64]string, error) {
	users := make(map[int64]string)

	for _, mapping := range strings.Fields(s) {
		githubID, slackID, found := strings.Cut(mapping, "=")
		if !found {
			return nil, fmt.Errorf("invalid KEY=value: no `=` found in %q", mapping)
		}

		id, err := strconv.ParseInt(githubID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("could not parse GitHub ID from %q", githubID)
		}

		if slackID == "" {
			return nil, fmt.Errorf("missing Slack ID in %q", mapping)
		}

		users[id] = slackID
	}

	return users, nil
}

func loadEnv(envRoot string) {
	if envRoot == "" {
		envRoot = repoRoot()
	}

	path := path.Join(envRoot, ".env")
	if err := godotenv.Overload(path); err != nil {
		// The process environment alone is a valid configuration source.
		log.Printf("no env file loaded from %s: %v", path, err)
	}
}

func loadVersion(appVersion string) {
	if appVersion == "" {
		data, err := os.ReadFile(filepath.Join(repoRoot(), "VERSION"))
		if err != nil {
			log.Fatalf("failed to read version file from repo root: %v", err)
		}

		trimmed := strings.TrimSpace(string(data))
		if trimmed != "" {
			VERSION = trimmed
		} else {
			VERSION = "unknown"
		}
	} else {
		VERSION = appVersion
	}
}

func repoRoot() string {
	_, b, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(b), "../..")
}
