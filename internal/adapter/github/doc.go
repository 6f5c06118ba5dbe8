// Package github implements the GitHub REST API adapter used to fetch
// pull request diffs and file contents and to post review comments.
package github
