package github

import (
	"regexp"

	perrors "github.com/matzehuels/podfeed/pkg/errors"
)

// Regex patterns for GitHub resource validation.
var (
	// GitHub usernames/orgs: 1-39 alphanumeric or hyphen, not starting with hyphen
	validOwner = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,38}$`)
	// GitHub repo names: 1-100 alphanumeric, hyphen, underscore, or dot
	validRepo = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,100}$`)
)

// ValidateOwner validates a GitHub username or organization name.
func ValidateOwner(owner string) error {
	if owner == "" {
		return perrors.New(perrors.ErrCodeInvalidInput, "github owner is required")
	}
	if !validOwner.MatchString(owner) {
		return perrors.New(perrors.ErrCodeInvalidInput, "invalid github owner %q", owner)
	}
	return nil
}

// ValidateRepo validates a GitHub repository name.
func ValidateRepo(repo string) error {
	if repo == "" {
		return perrors.New(perrors.ErrCodeInvalidInput, "github repo is required")
	}
	if !validRepo.MatchString(repo) {
		return perrors.New(perrors.ErrCodeInvalidInput, "invalid github repo %q", repo)
	}
	return nil
}

// ValidateRepoRef validates both owner and repo parameters.
func ValidateRepoRef(owner, repo string) error {
	if err := ValidateOwner(owner); err != nil {
		return err
	}
	if err := ValidateRepo(repo); err != nil {
		return err
	}
	if repo == "." || repo == ".." {
		return perrors.New(perrors.ErrCodeInvalidInput, "invalid github repo %q", repo)
	}
	return nil
}
