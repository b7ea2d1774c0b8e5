package input

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// DefaultWebURL is the web host of github.com repositories
const DefaultWebURL = "https://github.com"

// RepoRef identifies a GitHub repository
type RepoRef struct {
	Owner string
	Name  string
	// WebURL is the scheme and host serving the repository pages.
	// Empty means github.com.
	WebURL string
}

// String returns owner/name
func (ref RepoRef) String() string {
	return ref.Owner + "/" + ref.Name
}

// URL returns the canonical web URL of the repository
func (ref RepoRef) URL() string {
	host := ref.WebURL
	if host == "" {
		host = DefaultWebURL
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(host, "/"), ref.Owner, ref.Name)
}

// WebURLFromAPI returns the web host matching a GitHub API base URL.
// api.github.com maps to github.com; an Enterprise API such as
// https://ghe.example.com/api/v3/ maps to https://ghe.example.com.
func WebURLFromAPI(apiURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(apiURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid GitHub API URL %q: expected an absolute URL", apiURL)
	}
	if strings.EqualFold(u.Host, "api.github.com") {
		return DefaultWebURL, nil
	}
	return u.Scheme + "://" + u.Host, nil
}

var (
	// githubRepoRegex matches https://github.com/{owner}/{repo} with optional trailing path
	githubRepoRegex = regexp.MustCompile(`^https://github\.com/([^/]+)/([^/]+)`)
	// shortRepoRegex matches {owner}/{repo}
	shortRepoRegex = regexp.MustCompile(`^([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+)$`)
)

// ParseRepoRef accepts "owner/repo" or a github.com repository URL.
// Query strings, fragments, trailing paths and a ".git" suffix are ignored.
func ParseRepoRef(raw string) (RepoRef, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return RepoRef{}, fmt.Errorf("repository is empty")
	}

	if strings.HasPrefix(raw, "https://") {
		parsedURL, err := url.Parse(raw)
		if err != nil {
			return RepoRef{}, fmt.Errorf("invalid URL format: %s", raw)
		}
		parsedURL.RawQuery = ""
		parsedURL.Fragment = ""

		matches := githubRepoRegex.FindStringSubmatch(parsedURL.String())
		if matches == nil {
			return RepoRef{}, fmt.Errorf("invalid GitHub repository URL format: %s", raw)
		}
		return RepoRef{Owner: matches[1], Name: strings.TrimSuffix(matches[2], ".git")}, nil
	}

	matches := shortRepoRegex.FindStringSubmatch(raw)
	if matches == nil {
		return RepoRef{}, fmt.Errorf("invalid repository %q: expected owner/repo", raw)
	}
	return RepoRef{Owner: matches[1], Name: strings.TrimSuffix(matches[2], ".git")}, nil
}
