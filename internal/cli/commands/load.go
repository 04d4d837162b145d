package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapuast/pkg/cst"
	"github.com/leapstack-labs/leapuast/pkg/frontend/kotlin"
	"github.com/leapstack-labs/leapuast/pkg/uast"
)

// source is a parsed and converted file.
type source struct {
	Path string
	Root *cst.Element
	File *uast.File
}

// loadSources parses files concurrently and registers them with the
// command's semantic engine. Files the parser rejects as too large or not
// UTF-8 are skipped with a warning; other failures abort the load. The
// result keeps the order of files.
func (c *CommandContext) loadSources(ctx context.Context, files []string) ([]*source, error) {
	out := make([]*source, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(c.Cfg.Workers, 1))

	for i, path := range files {
		g.Go(func() error {
			src, err := c.loadSource(ctx, path)
			if errors.Is(err, kotlin.ErrFileTooLarge) || errors.Is(err, kotlin.ErrInvalidContent) {
				c.Logger.Warn("skipping source", slog.String("file", path), slog.String("error", err.Error()))
				return nil
			}
			if err != nil {
				return err
			}
			out[i] = src
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	loaded := out[:0]
	for _, src := range out {
		if src != nil {
			c.Engine.AddFile(src.Root)
			loaded = append(loaded, src)
		}
	}
	c.Logger.Debug("sources loaded", slog.Int("files", len(loaded)))
	return loaded, nil
}

func (c *CommandContext) loadSource(ctx context.Context, path string) (*source, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	root, err := c.Parser.Parse(ctx, content, path)
	if err != nil {
		return nil, err
	}
	file, ok := uast.Convert(root, nil).(*uast.File)
	if !ok {
		return nil, fmt.Errorf("%s: root does not convert to a file", path)
	}
	return &source{Path: path, Root: root, File: file}, nil
}

// loadOne parses a single file for position-based commands.
func (c *CommandContext) loadOne(ctx context.Context, path string) (*source, error) {
	srcs, err := c.loadSources(ctx, []string{path})
	if err != nil {
		return nil, err
	}
	if len(srcs) == 0 {
		return nil, fmt.Errorf("%s could not be loaded", path)
	}
	return srcs[0], nil
}
