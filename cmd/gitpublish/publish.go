package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dsimansk/syndesis-rest/pkg/config"
	"github.com/dsimansk/syndesis-rest/pkg/github"
	"github.com/dsimansk/syndesis-rest/pkg/pathutil"
	"github.com/dsimansk/syndesis-rest/pkg/publish"
)

var (
	fromDir     string
	repoName    string
	message     string
	authorName  string
	authorEmail string
	authorLogin string
	username    string
	password    string
)

var createCmd = &cobra.Command{
	Use:   "create <remote-url>",
	Short: "Initialize a repository from a directory and force-push it",
	Long: `Create reads every file under the source directory, initializes an
empty repository containing them, and force-pushes the commit to the
remote. Any prior history on the remote ref is overwritten.

Examples:
  gitpublish create https://github.com/org/demo.git --from ./generated \
    --message "initial import" --author-name Jane --author-email jane@example.com`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPublish(cmd.Context(), args[0], false)
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <remote-url>",
	Short: "Overwrite files in an existing repository and force-push",
	Long: `Update clones the existing remote repository, overwrites the paths
found under the source directory, and force-pushes the resulting
commit. Remote files not present in the source directory are retained.

Examples:
  gitpublish update https://github.com/org/demo.git --from ./generated \
    --message "refresh" --author-login jdoe`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPublish(cmd.Context(), args[0], true)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{createCmd, updateCmd} {
		cmd.Flags().StringVar(&fromDir, "from", ".",
			"Directory whose contents are published")
		cmd.Flags().StringVar(&repoName, "name", "",
			"Repository name, used to label the working directory (default: source directory name)")
		cmd.Flags().StringVarP(&message, "message", "m", "",
			"Commit message")
		cmd.Flags().StringVar(&authorName, "author-name", "",
			"Commit author name")
		cmd.Flags().StringVar(&authorEmail, "author-email", "",
			"Commit author email")
		cmd.Flags().StringVar(&authorLogin, "author-login", "",
			"GitHub login to resolve missing author fields from")
		cmd.Flags().StringVar(&username, "username", "",
			"Username for the remote (omit when pushing with a token)")
		cmd.Flags().StringVar(&password, "password", "",
			"Password or token for the remote (default: $"+config.TokenEnv+")")
	}
}

func runPublish(ctx context.Context, remoteURL string, update bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if !cfg.Git.Enabled {
		return fmt.Errorf("git publishing is disabled (set %s=true or git.enabled in the config file)", config.EnabledEnv)
	}

	sourceDir, err := filepath.Abs(fromDir)
	if err != nil {
		return fmt.Errorf("failed to resolve source directory: %w", err)
	}
	if info, err := os.Stat(sourceDir); err != nil {
		return fmt.Errorf("source directory does not exist: %s", sourceDir)
	} else if !info.IsDir() {
		return fmt.Errorf("source is not a directory: %s", sourceDir)
	}

	if root := cfg.Git.LocalRepoPath; root != "" {
		if pathutil.IsFilesystemRoot(root) {
			return fmt.Errorf("refusing to stage under the filesystem root %s", root)
		}
		if pathutil.PathOverlaps(root, sourceDir) {
			return fmt.Errorf("staging root %s overlaps the source directory %s", root, sourceDir)
		}
	}

	files, err := collectFiles(sourceDir)
	if err != nil {
		return err
	}

	author, err := resolveAuthor(ctx, cfg)
	if err != nil {
		return err
	}

	creds := publish.Credentials{Username: username, Password: password}
	if creds.Password == "" {
		creds.Password = os.Getenv(config.TokenEnv)
	}

	name := repoName
	if name == "" {
		name = filepath.Base(sourceDir)
	}

	req := publish.Request{
		RemoteURL:   remoteURL,
		RepoName:    name,
		Author:      author,
		Message:     message,
		Files:       files,
		Credentials: creds,
	}

	publisher := publish.NewPublisher(cfg.Git.LocalRepoPath)
	var result *publish.Result
	if update {
		result, err = publisher.UpdateFiles(ctx, req)
	} else {
		result, err = publisher.CreateFiles(ctx, req)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Pushed commit %s to %s (%d files)\n", result.CommitID, remoteURL, len(files))
	if output := strings.TrimSpace(result.PushOutput); output != "" {
		fmt.Printf("Remote messages:\n%s\n", output)
	}
	return nil
}

// collectFiles reads every regular file under sourceDir into the file
// set, keyed by slash-separated relative path. A .git directory at any
// level is skipped so publishing a checkout does not leak its history.
func collectFiles(sourceDir string) (map[string][]byte, error) {
	files := make(map[string][]byte)

	err := filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(sourceDir, path)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		files[filepath.ToSlash(rel)] = content
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect files from %s: %w", sourceDir, err)
	}
	return files, nil
}

// resolveAuthor builds the commit author from flags, configuration and
// an optional GitHub lookup. Flags win over configuration; the GitHub
// account fills whatever is still missing when a login is given.
func resolveAuthor(ctx context.Context, cfg config.Config) (publish.Author, error) {
	author := publish.Author{
		Name:  authorName,
		Email: authorEmail,
		Login: authorLogin,
	}
	if author.Name == "" {
		author.Name = cfg.Git.AuthorName
	}
	if author.Email == "" {
		author.Email = cfg.Git.AuthorEmail
	}

	if author.Login != "" && (author.Name == "" || author.Email == "") {
		client, err := github.NewClient(os.Getenv(config.TokenEnv))
		if err != nil {
			return publish.Author{}, err
		}
		resolved, err := client.ResolveAuthor(ctx, author.Login)
		if err != nil {
			return publish.Author{}, err
		}
		if author.Name == "" {
			author.Name = resolved.Name
		}
		if author.Email == "" {
			author.Email = resolved.Email
		}
	}

	if author.SignatureName() == "" {
		return publish.Author{}, fmt.Errorf("an author is required: set --author-name, --author-login, or %s", config.AuthorNameEnv)
	}
	if author.Email == "" {
		return publish.Author{}, fmt.Errorf("an author email is required: set --author-email, --author-login, or %s", config.AuthorEmailEnv)
	}
	return author, nil
}
