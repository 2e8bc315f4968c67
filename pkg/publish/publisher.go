// Package publish materializes in-memory file sets into a local git
// working tree and force-pushes the resulting commit to a remote
// repository. It exists so that callers can publish generated project
// files without their own git tooling.
package publish

import (
	"context"
	"net/url"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/dsimansk/syndesis-rest/pkg/log"
)

// DefaultRemote is the remote name registered for freshly initialized
// repositories.
const DefaultRemote = "origin"

// Publisher publishes file sets as commits on remote git repositories.
//
// Every operation stages its work in a uniquely named directory under
// the staging root, so concurrent calls do not contend on local state.
// Pushes are forced: last writer wins and no conflict detection is
// performed, so concurrent publishes targeting the same remote ref can
// silently discard each other.
type Publisher struct {
	stagingRoot string
}

// NewPublisher returns a Publisher that stages working directories
// under stagingRoot. An empty stagingRoot uses the system temp
// directory.
func NewPublisher(stagingRoot string) *Publisher {
	return &Publisher{stagingRoot: stagingRoot}
}

// CreateFiles initializes an empty repository, writes the requested
// files into it, commits them with the requested author identity and
// force-pushes the commit to the remote. Any prior history on the
// remote ref is overwritten.
func (p *Publisher) CreateFiles(ctx context.Context, req Request) (*Result, error) {
	if err := validateRemoteURL(req.RemoteURL); err != nil {
		return nil, err
	}

	workDir, cleanup, err := p.stageDir(req.RepoName)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	repo, err := git.PlainInit(workDir, false)
	if err != nil {
		return nil, wrapErr(KindInit, err)
	}

	if err := writeFiles(workDir, req.Files); err != nil {
		return nil, err
	}

	if _, err := repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: DefaultRemote,
		URLs: []string{req.RemoteURL},
	}); err != nil {
		return nil, wrapErr(KindRemote, err)
	}

	return commitAndPush(ctx, repo, req)
}

// UpdateFiles clones the existing remote repository, overwrites the
// requested paths and force-pushes the resulting commit. Cloned paths
// not named in the request are carried along unchanged, so this is a
// merge-by-overwrite rather than a full replace.
func (p *Publisher) UpdateFiles(ctx context.Context, req Request) (*Result, error) {
	if err := validateRemoteURL(req.RemoteURL); err != nil {
		return nil, err
	}

	workDir, cleanup, err := p.stageDir(req.RepoName)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	repo, err := git.PlainCloneContext(ctx, workDir, false, &git.CloneOptions{
		URL:        req.RemoteURL,
		Auth:       req.Credentials.transportAuth(),
		RemoteName: DefaultRemote,
	})
	if err != nil {
		return nil, wrapErr(KindClone, err)
	}

	if err := writeFiles(workDir, req.Files); err != nil {
		return nil, err
	}

	return commitAndPush(ctx, repo, req)
}

// stageDir allocates the working directory for one operation. The
// returned cleanup runs on every exit path; removal failures are
// logged, not fatal.
func (p *Publisher) stageDir(repoName string) (string, func(), error) {
	if p.stagingRoot != "" {
		if err := os.MkdirAll(p.stagingRoot, 0o755); err != nil {
			return "", nil, wrapErr(KindStaging, err)
		}
	}

	workDir, err := os.MkdirTemp(p.stagingRoot, tempPattern(repoName))
	if err != nil {
		return "", nil, wrapErr(KindStaging, err)
	}
	log.Debug("created working directory", "dir", workDir)

	cleanup := func() {
		if err := os.RemoveAll(workDir); err != nil {
			log.Warn("could not delete working directory", "dir", workDir, "error", err)
		}
	}
	return workDir, cleanup, nil
}

// tempPattern turns the repository name into an os.MkdirTemp pattern.
// Separators and the pattern wildcard are stripped so the name cannot
// nest or widen the temp directory.
func tempPattern(repoName string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '*':
			return '-'
		}
		return r
	}, repoName)
	if name == "" {
		name = "publish"
	}
	return name + "-*"
}

// validateRemoteURL rejects remotes this publisher cannot push to.
// SSH remotes are unsupported; the transport stack here is HTTP(S).
func validateRemoteURL(remote string) error {
	if strings.TrimSpace(remote) == "" {
		return errorf(KindRemote, "remote url is empty")
	}
	if strings.HasPrefix(remote, "ssh://") || strings.HasPrefix(remote, "git@") {
		return errorf(KindRemote, "ssh remote %q is not supported, use an http(s) url", remote)
	}
	// go-git falls back to a local file endpoint for anything that does
	// not carry a recognizable scheme, which would let a broken url like
	// "://host/repo" through as a path. Screen those before handing the
	// remote to the endpoint parser.
	if strings.Contains(remote, "://") {
		if _, err := url.Parse(remote); err != nil {
			return errorf(KindRemote, "malformed remote url %q: %w", remote, err)
		}
	}
	if _, err := transport.NewEndpoint(remote); err != nil {
		return errorf(KindRemote, "malformed remote url %q: %w", remote, err)
	}
	return nil
}
