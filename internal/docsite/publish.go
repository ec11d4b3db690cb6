package docsite

import (
	"errors"
	"fmt"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
)

// ErrNothingToPublish is returned when the output tree has no changes since
// the last published commit.
var ErrNothingToPublish = errors.New("nothing to publish")

// Publish commits the rendered site and pushes it to the configured remote.
// The output directory is turned into a git repository on first use.
func Publish(cfg *Config, build *Build) error {
	if cfg.Publish.URL == "" {
		return errors.New("publish url not configured")
	}
	repo, err := openOrInit(cfg)
	if err != nil {
		return err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}
	if err := wt.AddGlob("."); err != nil {
		return fmt.Errorf("stage site files: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return fmt.Errorf("read worktree status: %w", err)
	}
	if status.IsClean() {
		return ErrNothingToPublish
	}

	sig := &object.Signature{
		Name:  cfg.Publish.AuthorName,
		Email: cfg.Publish.AuthorEmail,
		When:  time.Now(),
	}
	msg := fmt.Sprintf("docs build %s (%d pages)", build.ID, len(build.Pages))
	if _, err := wt.Commit(msg, &git.CommitOptions{Author: sig}); err != nil {
		return fmt.Errorf("commit site: %w", err)
	}

	branch := plumbing.NewBranchReferenceName(cfg.Publish.Branch)
	err = repo.Push(&git.PushOptions{
		RemoteName: "origin",
		Auth:       publishAuth(cfg),
		RefSpecs: []config.RefSpec{
			config.RefSpec(fmt.Sprintf("%s:%s", branch, branch)),
		},
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("push site: %w", err)
	}
	return nil
}

func openOrInit(cfg *Config) (*git.Repository, error) {
	repo, err := git.PlainOpen(cfg.Output)
	if err == nil {
		return repo, nil
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("open site repository: %w", err)
	}
	repo, err = git.PlainInit(cfg.Output, false)
	if err != nil {
		return nil, fmt.Errorf("init site repository: %w", err)
	}
	_, err = repo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{cfg.Publish.URL},
	})
	if err != nil {
		return nil, fmt.Errorf("configure remote: %w", err)
	}
	head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(cfg.Publish.Branch))
	if err := repo.Storer.SetReference(head); err != nil {
		return nil, fmt.Errorf("set publish branch: %w", err)
	}
	return repo, nil
}

func publishAuth(cfg *Config) transport.AuthMethod {
	if cfg.Publish.Token == "" {
		return nil
	}
	// go-git requires a non-empty username with token auth.
	return &githttp.BasicAuth{Username: "token", Password: cfg.Publish.Token}
}
