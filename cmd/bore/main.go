// Copyright 2016 Google Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command bore indexes a solution and searches its files.
//
//	bore search -sln proj.sln -e c,h needle
//	bore toggle -sln proj.sln src/widget.cpp
//	bore list -sln proj.sln
//	bore serve -sln proj.sln -listen :6070
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/peterbourgon/ff/v3/ffcli"
	sglog "github.com/sourcegraph/log"
	"golang.org/x/sync/errgroup"

	"github.com/pjkack/bore"
	"github.com/pjkack/bore/query"
	"github.com/pjkack/bore/web"
)

type rootConfig struct {
	sln          string
	excludeExts  string
	excludeGlobs string
}

func (c *rootConfig) registerRootFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.sln, "sln", "", "path to the solution file (required)")
	fs.StringVar(&c.excludeExts, "exclude-ext", "dll,vcxproj,exe", "comma separated extensions to exclude from the index")
	fs.StringVar(&c.excludeGlobs, "exclude-glob", "", "comma separated doublestar globs to exclude from the index")
}

func (c *rootConfig) policy() bore.ExcludePolicy {
	var p bore.ExcludePolicy
	for _, e := range strings.Split(c.excludeExts, ",") {
		if e = strings.TrimSpace(e); e != "" {
			p.Exts = append(p.Exts, e)
		}
	}
	for _, g := range strings.Split(c.excludeGlobs, ",") {
		if g = strings.TrimSpace(g); g != "" {
			p.Patterns = append(p.Patterns, g)
		}
	}
	return p
}

func (c *rootConfig) load() (*bore.Workspace, error) {
	if c.sln == "" {
		return nil, fmt.Errorf("missing -sln flag")
	}
	ws := bore.NewWorkspace()
	if err := ws.Load(c.sln, c.policy()); err != nil {
		return nil, err
	}
	return ws, nil
}

func searchCmd() *ffcli.Command {
	fs := flag.NewFlagSet("bore search", flag.ExitOnError)
	conf := rootConfig{}
	conf.registerRootFlags(fs)
	threads := fs.Int("threads", 0, "number of search workers (1-32)")
	maxMatches := fs.Int("max", 0, "cap on the total number of matches")
	maxPerFile := fs.Int("max-per-file", 0, "cap on matches per file")
	exts := fs.String("e", "", "comma separated extensions to restrict the search to")
	verbose := fs.Bool("v", false, "print search statistics")

	return &ffcli.Command{
		Name:       "search",
		ShortUsage: "bore search -sln FILE [flags] [-e ext1,ext2] needle",
		ShortHelp:  "search all indexed files for a literal string",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("missing search text")
			}
			ws, err := conf.load()
			if err != nil {
				return err
			}
			defer ws.Close()

			arg := strings.Join(args, " ")
			if *exts != "" {
				arg = "-e " + *exts + " " + arg
			}
			q := query.Parse(arg)
			opts := bore.SearchOptions{
				Threads:           *threads,
				MaxMatches:        *maxMatches,
				MaxMatchesPerFile: *maxPerFile,
			}
			res, err := ws.Find(ctx, q, &opts)
			if err != nil {
				return err
			}

			idx := ws.Index()
			for _, m := range res.Matches {
				fmt.Printf("%s:%d:%d:%s\n",
					idx.RelPath(idx.Path(m.FileIndex)), m.Row, m.Column, m.Line)
			}
			if res.Truncation != bore.TruncationNone {
				fmt.Fprintf(os.Stderr, "bore: result truncated (%s)\n", res.Truncation)
			}
			if *verbose {
				fmt.Fprintf(os.Stderr, "%d matches in %v; %d files considered, %d loaded, %d skipped, %s read\n",
					res.Stats.MatchCount, res.Stats.Duration,
					res.Stats.FilesConsidered, res.Stats.FilesLoaded,
					res.Stats.FilesSkipped, fmtBytes(res.Stats.ContentBytesLoaded))
			}
			if len(res.Matches) == 0 {
				os.Exit(1)
			}
			return nil
		},
	}
}

func toggleCmd() *ffcli.Command {
	fs := flag.NewFlagSet("bore toggle", flag.ExitOnError)
	conf := rootConfig{}
	conf.registerRootFlags(fs)

	return &ffcli.Command{
		Name:       "toggle",
		ShortUsage: "bore toggle -sln FILE path",
		ShortHelp:  "print the companion file (header/source) of path",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one path")
			}
			ws, err := conf.load()
			if err != nil {
				return err
			}
			defer ws.Close()

			companion, err := ws.Toggle(args[0])
			if err != nil {
				return err
			}
			fmt.Println(companion)
			return nil
		},
	}
}

func listCmd() *ffcli.Command {
	fs := flag.NewFlagSet("bore list", flag.ExitOnError)
	conf := rootConfig{}
	conf.registerRootFlags(fs)
	project := fs.String("project", "", "list only the files of this project")

	return &ffcli.Command{
		Name:       "list",
		ShortUsage: "bore list -sln FILE [-project NAME]",
		ShortHelp:  "print the sorted file list of the solution",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			ws, err := conf.load()
			if err != nil {
				return err
			}
			defer ws.Close()

			idx := ws.Index()
			if *project == "" {
				fmt.Fprintln(os.Stderr, ws.Status())
				return idx.WriteFileList(os.Stdout)
			}
			p := idx.ProjectByName(*project)
			if p < 0 {
				return fmt.Errorf("unknown project %q", *project)
			}
			for _, f := range idx.ProjectFiles(uint32(p)) {
				fmt.Println(idx.Strings.Str(f.Path))
			}
			return nil
		},
	}
}

func serveCmd() *ffcli.Command {
	fs := flag.NewFlagSet("bore serve", flag.ExitOnError)
	conf := rootConfig{}
	conf.registerRootFlags(fs)
	listen := fs.String("listen", ":6070", "listen address")
	watch := fs.Bool("watch", true, "reload when the solution file changes")

	return &ffcli.Command{
		Name:       "serve",
		ShortUsage: "bore serve -sln FILE [-listen ADDR]",
		ShortHelp:  "serve the index over HTTP (JSON API and metrics)",
		FlagSet:    fs,
		Exec: func(ctx context.Context, args []string) error {
			liblog := sglog.Init(sglog.Resource{
				Name: "bore",
			})
			defer liblog.Sync()
			logger := sglog.Scoped("server", "bore http server")

			ws, err := conf.load()
			if err != nil {
				return err
			}
			defer ws.Close()
			logger.Info("loaded solution", sglog.String("status", ws.Status()))

			srv := web.NewServer(ws, logger)
			g, ctx := errgroup.WithContext(ctx)
			if *watch {
				g.Go(func() error {
					return web.WatchSolution(ctx, ws, ws.Solution(), conf.policy(), logger)
				})
			}
			g.Go(func() error {
				logger.Info("starting server", sglog.String("address", *listen))
				return http.ListenAndServe(*listen, srv.Handler())
			})
			return g.Wait()
		},
	}
}

func fmtBytes(n int64) string {
	const k = 1024
	switch {
	case n >= k*k:
		return fmt.Sprintf("%.1f MiB", float64(n)/(k*k))
	case n >= k:
		return fmt.Sprintf("%.1f KiB", float64(n)/k)
	}
	return fmt.Sprintf("%d B", n)
}

func main() {
	log.SetFlags(0)

	root := &ffcli.Command{
		ShortUsage:  "bore <subcommand>",
		Subcommands: []*ffcli.Command{searchCmd(), toggleCmd(), listCmd(), serveCmd()},
		Exec: func(ctx context.Context, args []string) error {
			return flag.ErrHelp
		},
	}

	if err := root.ParseAndRun(context.Background(), os.Args[1:]); err != nil {
		if err != flag.ErrHelp {
			log.Fatalf("bore: %v", err)
		}
		os.Exit(2)
	}
}
