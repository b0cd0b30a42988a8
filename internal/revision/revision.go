// Package revision reads the git revision of the working tree, used to label
// deployed views.
package revision

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// LabelKey is the view label carrying the deployed revision
const LabelKey = "deployed_revision"

const shortLength = 7

// ErrNoRepository is returned when dir is not inside a git working tree
var ErrNoRepository = errors.New("not a git repository")

// Short returns the abbreviated HEAD commit of the repository containing dir
func Short(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return "", ErrNoRepository
	}
	if err != nil {
		return "", fmt.Errorf("failed to open repository: %w", err)
	}

	ref, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return "", fmt.Errorf("repository has no commits: %w", err)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD reference: %w", err)
	}

	return ref.Hash().String()[:shortLength], nil
}

// Labels returns the label set for a deployment from dir. Outside a git
// working tree no labels are returned.
func Labels(dir string) (map[string]string, error) {
	sha, err := Short(dir)
	if errors.Is(err, ErrNoRepository) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return map[string]string{LabelKey: sha}, nil
}
