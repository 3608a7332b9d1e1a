// Package github provides an HTTP client for the GitHub API.
//
// # Overview
//
// This package fetches repository popularity metrics from GitHub
// (https://api.github.com). Feed items show the stargazer and fork counts of
// pods whose source lives on GitHub.
//
// # Usage
//
//	client := github.NewClient(backend, token, 24*time.Hour)
//
//	owner, repo, ok := github.ExtractURL(sourceURL, homepage)
//	if !ok {
//	    return // not hosted on GitHub
//	}
//	metrics, err := client.FetchRepo(ctx, owner, repo, false)
//	if err != nil {
//	    return err
//	}
//	fmt.Println("Stars:", metrics.Stars, "Forks:", metrics.Forks)
//
// # Authentication
//
// A GitHub personal access token is optional but recommended to avoid rate
// limits. Without a token, the client is limited to 60 requests/hour.
// With a token, the limit is 5000 requests/hour. Exhausted limits surface as
// [errors.RateLimitedError].
//
// [errors.RateLimitedError]: github.com/matzehuels/podfeed/pkg/errors.RateLimitedError
package github
