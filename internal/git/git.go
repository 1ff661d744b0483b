// Package git provides the release guard: an interface-based wrapper over
// go-git that checks the source tree is in a publishable state before any
// artifact is produced.
package git

import (
	"context"
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Release guard errors.
var (
	ErrNotARepo       = errors.New("not a git repository")
	ErrDirtyWorktree  = errors.New("worktree has uncommitted changes")
	ErrTagMissing     = errors.New("release tag not found")
	ErrTagNotAtHead   = errors.New("release tag does not point at HEAD")
	ErrHeadUnresolved = errors.New("cannot resolve HEAD")
)

// Guard is the interface for release source-tree checks.
// Following Go best practices: accept interfaces, return structs.
type Guard interface {
	// IsRepo reports whether the source tree is a git repository.
	IsRepo(ctx context.Context) (bool, error)

	// HeadCommit returns the full hash of HEAD.
	HeadCommit(ctx context.Context) (string, error)

	// CheckRelease verifies a clean worktree and a v<version> tag at
	// HEAD. A non-repository source tree passes (CI tarball exports).
	CheckRelease(ctx context.Context, version string) error
}

// Client implements the Guard interface.
type Client struct {
	repoPath string
}

// NewClient creates a release guard for the given source tree.
func NewClient(repoPath string) *Client {
	return &Client{repoPath: repoPath}
}

// IsRepo reports whether the source tree is a git repository.
func (c *Client) IsRepo(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, err := gogit.PlainOpen(c.repoPath)
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return false, nil
		}
		return false, fmt.Errorf("open repository: %w", err)
	}
	return true, nil
}

// HeadCommit returns the full hash of HEAD.
func (c *Client) HeadCommit(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	repo, err := gogit.PlainOpen(c.repoPath)
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return "", ErrNotARepo
		}
		return "", fmt.Errorf("open repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHeadUnresolved, err)
	}
	return head.Hash().String(), nil
}

// CheckRelease verifies the source tree is publishable for a version:
// clean worktree and a v<version> tag (lightweight or annotated) pointing
// at HEAD. Trees that are not git repositories pass the check.
func (c *Client) CheckRelease(ctx context.Context, version string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	repo, err := gogit.PlainOpen(c.repoPath)
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil
		}
		return fmt.Errorf("open repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("get worktree: %w", err)
	}
	status, err := worktree.Status()
	if err != nil {
		return fmt.Errorf("worktree status: %w", err)
	}
	if !status.IsClean() {
		return ErrDirtyWorktree
	}

	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHeadUnresolved, err)
	}

	tagName := "v" + version
	tagRef, err := repo.Tag(tagName)
	if err != nil {
		if errors.Is(err, gogit.ErrTagNotFound) {
			return fmt.Errorf("%w: %s", ErrTagMissing, tagName)
		}
		return fmt.Errorf("resolve tag %s: %w", tagName, err)
	}

	tagCommit, err := resolveTagCommit(repo, tagRef)
	if err != nil {
		return fmt.Errorf("resolve tag %s: %w", tagName, err)
	}

	if tagCommit != head.Hash() {
		return fmt.Errorf("%w: %s is at %s, HEAD is %s",
			ErrTagNotAtHead, tagName, tagCommit, head.Hash())
	}

	return nil
}

// resolveTagCommit returns the commit a tag reference ultimately points
// at, peeling annotated tag objects.
func resolveTagCommit(repo *gogit.Repository, ref *plumbing.Reference) (plumbing.Hash, error) {
	tagObj, err := repo.TagObject(ref.Hash())
	switch {
	case err == nil:
		// Annotated tag; the target is the commit.
		return tagObj.Target, nil
	case errors.Is(err, plumbing.ErrObjectNotFound):
		// Lightweight tag; the reference is the commit.
		return ref.Hash(), nil
	default:
		return plumbing.ZeroHash, err
	}
}
