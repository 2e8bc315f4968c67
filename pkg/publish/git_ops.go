package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/dsimansk/syndesis-rest/pkg/log"
)

// commitAndPush stages everything under the working tree, creates one
// commit with the requested author identity and force-pushes it to the
// remote. There is no retry and no pre-push check of the remote ref
// state.
func commitAndPush(ctx context.Context, repo *git.Repository, req Request) (*Result, error) {
	worktree, err := repo.Worktree()
	if err != nil {
		return nil, wrapErr(KindCommit, err)
	}

	if _, err := worktree.Add("."); err != nil {
		return nil, wrapErr(KindCommit, err)
	}
	log.Debug("staged all files")

	// An update whose files match the clone still commits: the push
	// must always produce a fresh history tip.
	hash, err := worktree.Commit(req.Message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  req.Author.SignatureName(),
			Email: req.Author.Email,
			When:  time.Now(),
		},
		AllowEmptyCommits: true,
	})
	if err != nil {
		return nil, wrapErr(KindCommit, err)
	}
	log.Info("created commit", "commit", hash.String())

	head, err := repo.Head()
	if err != nil {
		return nil, wrapErr(KindPush, err)
	}

	var progress bytes.Buffer
	err = repo.PushContext(ctx, &git.PushOptions{
		RemoteName: DefaultRemote,
		RefSpecs: []gitconfig.RefSpec{
			gitconfig.RefSpec(fmt.Sprintf("+%s:%s", head.Name(), head.Name())),
		},
		Auth:     req.Credentials.transportAuth(),
		Force:    true,
		Progress: &progress,
	})
	if err != nil {
		// The remote already holding this exact commit is a successful
		// publish, not a failure.
		if !errors.Is(err, git.NoErrAlreadyUpToDate) {
			return nil, wrapErr(KindPush, err)
		}
		log.Debug("remote already up to date", "commit", hash.String())
	}

	if messages := strings.TrimSpace(progress.String()); messages != "" {
		log.Warn("push reported messages", "messages", messages)
	}

	return &Result{CommitID: hash.String(), PushOutput: progress.String()}, nil
}

// transportAuth converts the credentials into go-git transport auth.
// Nil is returned when no credentials were supplied, which lets pushes
// to unauthenticated remotes work. A token without a username uses the
// generic token auth convention.
func (c Credentials) transportAuth() transport.AuthMethod {
	if c.Username == "" && c.Password == "" {
		return nil
	}
	username := c.Username
	if username == "" {
		username = "x-access-token"
	}
	return &http.BasicAuth{Username: username, Password: c.Password}
}
