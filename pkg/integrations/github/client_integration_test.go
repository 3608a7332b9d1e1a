//go:build integration

package github

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/matzehuels/podfeed/pkg/cache"
)

func TestFetchRepo_Integration(t *testing.T) {
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		t.Skip("GITHUB_TOKEN not set, skipping integration test")
	}

	client := NewClient(cache.NewNullCache(), token, time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tests := []struct {
		name    string
		owner   string
		repo    string
		wantErr bool
	}{
		{"AFNetworking", "AFNetworking", "AFNetworking", false},
		{"nonexistent", "nonexistent-owner-12345", "nonexistent-repo", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := client.FetchRepo(ctx, tt.owner, tt.repo, true)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FetchRepo(%q, %q) error = %v, wantErr %v", tt.owner, tt.repo, err, tt.wantErr)
			}
			if err == nil && m.Stars == 0 {
				t.Errorf("FetchRepo(%q, %q) returned zero stars", tt.owner, tt.repo)
			}
		})
	}
}
