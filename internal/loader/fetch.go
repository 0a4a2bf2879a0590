package loader

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"

	"github.com/TritiumXs/gn/internal/msg"
)

var importShortcuts = map[string]string{
	"gh:": "https://github.com/",
	"gl:": "https://gitlab.com/",
	"bb:": "https://bitbucket.org/",
	"sr:": "https://sr.ht/",
	"cb:": "https://codeberg.org/",
}

const gitPrefix = "git:"

var errIllegalImport = errors.New("empty or illegal import string")

// isRemoteImport reports whether the spec names a git remote rather than a
// local path.
func isRemoteImport(spec string) bool {
	if strings.HasPrefix(spec, gitPrefix) {
		return true
	}
	for shortcut := range importShortcuts {
		if strings.HasPrefix(spec, shortcut) {
			return true
		}
	}
	return false
}

// fetchImport materializes a remote import into toWhere and returns the
// local path. Plain paths pass through.
func fetchImport(spec string, toWhere string) (string, error) {
	if spec == "" {
		return "", errIllegalImport
	}

	// git:https://example.com/some/lib.git
	if strings.HasPrefix(spec, gitPrefix) {
		return cloneGitRepo(spec[len(gitPrefix):], toWhere)
	}

	// shortcut prefix, e.g. gh:someone/libfoo
	for shortcut, url := range importShortcuts {
		if strings.HasPrefix(spec, shortcut) {
			return cloneGitRepo(url+spec[len(shortcut):], toWhere)
		}
	}

	// otherwise a local path
	return spec, nil
}

type gitURL struct {
	cleanURL    string
	branch      string
	commitOrTag string
}

// someone/something@master#0.1.0
// someone/something@feature-branch#12345abc
// someone/something#12345abc
func parseGitURL(rawURL string) (res gitURL) {
	parts := strings.SplitN(rawURL, "#", 2)
	baseURL := parts[0]
	if len(parts) == 2 {
		res.commitOrTag = parts[1]
	}

	parts = strings.SplitN(baseURL, "@", 2)
	res.cleanURL = parts[0]
	if len(parts) == 2 {
		res.branch = parts[1]
	}

	if !strings.HasSuffix(res.cleanURL, ".git") {
		res.cleanURL += ".git"
	}
	return
}

// cloneGitRepo clones a git remote into the specified directory.
func cloneGitRepo(url, toWhere string) (string, error) {
	parsedURL := parseGitURL(url)

	cloneOptions := &git.CloneOptions{
		URL:               parsedURL.cleanURL,
		Progress:          &msg.IndentWriter{Indent: "  ", W: os.Stderr},
		RecurseSubmodules: git.DefaultSubmoduleRecursionDepth,
	}

	if parsedURL.commitOrTag == "" {
		cloneOptions.Depth = 1 // shallow clone of the latest commit is enough
	}
	if parsedURL.branch != "" {
		cloneOptions.ReferenceName = plumbing.NewBranchReferenceName(parsedURL.branch)
		cloneOptions.SingleBranch = true
	}

	repo, err := git.PlainClone(toWhere, cloneOptions)
	if err != nil {
		return toWhere, err
	}

	if parsedURL.commitOrTag != "" {
		w, err := repo.Worktree()
		if err != nil {
			return toWhere, fmt.Errorf("could not get worktree: %w", err)
		}
		revision := parsedURL.commitOrTag
		hash, err := repo.ResolveRevision(plumbing.Revision(revision))
		if err != nil {
			return toWhere, fmt.Errorf("could not resolve revision `%s`: %w", revision, err)
		}
		if err := w.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
			return toWhere, fmt.Errorf("failed to checkout `%s`: %w", revision, err)
		}
	}

	return toWhere, nil
}
