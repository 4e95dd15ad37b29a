package walkthrough

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vanderheijden86/codewalk/pkg/debug"
)

// Candidate is a playable walkthrough found by Discover.
type Candidate struct {
	Path  string
	Title string
	Steps int
}

// Discover parses every Markdown file directly inside dir and returns the
// ones that are playable walkthroughs, sorted by path. Files that fail to
// parse or have fatal lint problems are skipped.
func Discover(ctx context.Context, dir string) ([]Candidate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".md") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}

	results := make([]*Candidate, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(16)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := Load(path)
			if err != nil {
				debug.Log("discover: skip %s: %v", path, err)
				return nil
			}
			if HasFatal(doc.Lint()) {
				debug.Log("discover: skip %s: not playable", path)
				return nil
			}
			title := doc.Title()
			if title == "" {
				title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			}
			results[i] = &Candidate{Path: path, Title: title, Steps: doc.Len()}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Candidate
	for _, c := range results {
		if c != nil {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}
