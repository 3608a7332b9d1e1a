// Package pipeline runs the complete feed generation for podfeed.
//
// The pipeline has two stages:
//
//  1. Load: read the latest podspecs from a Specs checkout and the creation
//     dates from a [history.Store]
//  2. Build: rank the pods and render the RSS document with [feed.Builder]
//
// Both the CLI and the HTTP server use [Runner], so a feed written to disk
// and a feed served over HTTP are always produced the same way.
//
// # Usage
//
//	runner := pipeline.NewRunner(statsProvider, nil, logger)
//	result, err := runner.Run(ctx, pipeline.Options{
//	    SpecsDir: "~/.cocoapods/repos/master/Specs",
//	    Dates:    store,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.Stdout.WriteString(result.XML)
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	perrors "github.com/matzehuels/podfeed/pkg/errors"
	"github.com/matzehuels/podfeed/pkg/feed"
	"github.com/matzehuels/podfeed/pkg/history"
	"github.com/matzehuels/podfeed/pkg/pod"
)

// Options configures a pipeline run.
type Options struct {
	// SpecsDir is the Specs repository checkout to read.
	SpecsDir string

	// Dates provides the creation date of every pod. The runner does not
	// close it.
	Dates history.Store

	// Limit is the number of feed items (feed.DefaultLimit when zero).
	Limit int

	// Channel overrides the feed's channel metadata.
	Channel feed.Channel

	// Logger overrides the runner's logger for this run.
	Logger *log.Logger
}

// Validate checks the options and fills defaults.
func (o *Options) Validate() error {
	if err := perrors.ValidateDir(o.SpecsDir); err != nil {
		return perrors.Wrap(perrors.ErrCodeInvalidInput, err, "specs directory")
	}
	if o.Dates == nil {
		return perrors.New(perrors.ErrCodeInvalidInput, "no creation date store configured")
	}
	if o.Limit < 0 {
		return perrors.New(perrors.ErrCodeInvalidInput, "limit must not be negative, got %d", o.Limit)
	}
	if o.Limit == 0 {
		o.Limit = feed.DefaultLimit
	}
	return nil
}

// Inputs are the loaded pipeline inputs.
type Inputs struct {
	Pods  []pod.Summary
	Dates history.Index
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// XML is the RSS document.
	XML string

	// Items are the pods in the feed, newest first.
	Items []pod.Summary

	// Stats contains timing and size information.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	PodCount  int
	DateCount int
	ItemCount int
	LoadTime  time.Duration
	BuildTime time.Duration
}
