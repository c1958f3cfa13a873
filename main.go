package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/bobg/subcmd"

	"github.com/ryanmoran/bitcache/internal"
	"github.com/ryanmoran/bitcache/internal/digest"
	"github.com/ryanmoran/bitcache/internal/git"
	"github.com/ryanmoran/bitcache/internal/workflow"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("panic occurred: %v", r)
			os.Exit(1)
		}
	}()

	log.SetFlags(0)
	log.SetPrefix("bitcache: ")

	if err := run(os.Args, os.Environ()); err != nil {
		log.Fatal(err)
	}
}

func run(args, env []string) error {
	config := internal.ParseConfig(env)

	// Cancel on SIGINT/SIGTERM so a running git is stopped and the
	// working checkout is still removed.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	w := internal.NewStandardWriter(config.Color)
	gateway := git.NewCLI(config.GitBinary, config.GitUser, w)

	c := maincmd{
		config:    config,
		writer:    w,
		publisher: workflow.NewPublisher(gateway, w, config.TempDir),
		retriever: workflow.NewRetriever(gateway, w, config.TempDir),
	}

	if len(args) < 2 {
		return fmt.Errorf("missing subcommand: %w\nUsage: bitcache publish|get|list|serve [flags]", internal.ErrInvalidInput)
	}

	return subcmd.Run(ctx, c, args[1:])
}

type maincmd struct {
	config    internal.Config
	writer    internal.Writer
	publisher *workflow.Publisher
	retriever *workflow.Retriever
}

func (c maincmd) Subcmds() subcmd.Map {
	return subcmd.Commands(
		"publish", c.publish, subcmd.Params(
			"repo", subcmd.String, "", "git repository URL",
			"source", subcmd.String, "", "source file whose MD5 keys the bitstream",
			"bitstream", subcmd.String, "", "binary file (bitstream) to publish",
			"path", subcmd.String, "", "target directory in the repository",
		),
		"get", c.get, subcmd.Params(
			"repo", subcmd.String, "", "git repository URL",
			"md5", subcmd.String, "", "MD5 of the source file",
			"out", subcmd.String, "", "directory to copy the bitstream into (default: current directory)",
		),
		"list", c.list, subcmd.Params(
			"repo", subcmd.String, "", "git repository URL",
		),
		"serve", c.serve, subcmd.Params(
			"root", subcmd.String, ".", "directory containing bare repositories",
			"addr", subcmd.String, "127.0.0.1:0", "address to listen on",
		),
	)
}

func (c maincmd) publish(ctx context.Context, repo, source, bitstream, path string, _ []string) error {
	err := required(map[string]string{"repo": repo, "source": source, "bitstream": bitstream})
	if err != nil {
		return err
	}

	_, err = c.publisher.Publish(ctx, workflow.PublishRequest{
		Remote:    repo,
		Source:    source,
		Bitstream: bitstream,
		Path:      path,
	})
	return err
}

func (c maincmd) get(ctx context.Context, repo, md5, out string, _ []string) error {
	err := required(map[string]string{"repo": repo, "md5": md5})
	if err != nil {
		return err
	}

	sum := strings.ToLower(strings.TrimSpace(md5))
	if !digest.Valid(sum) {
		return fmt.Errorf("invalid MD5 %q: %w\nExpected %d hexadecimal characters", md5, internal.ErrInvalidInput, digest.Size)
	}

	_, err = c.retriever.Get(ctx, workflow.GetRequest{
		Remote: repo,
		Digest: sum,
		Dest:   out,
	})
	return err
}

func (c maincmd) list(ctx context.Context, repo string, _ []string) error {
	err := required(map[string]string{"repo": repo})
	if err != nil {
		return err
	}

	entries, err := c.retriever.List(ctx, repo)
	if err != nil {
		return err
	}

	for _, e := range entries {
		c.writer.Printf("%s  %s  %s  %s\n", e.MD5, e.Timestamp, e.SourceFile, e.BinaryPath)
	}
	return nil
}

func (c maincmd) serve(ctx context.Context, root, addr string, _ []string) error {
	server, err := git.NewServer(c.config.GitBinary, root, addr, c.writer)
	if err != nil {
		return fmt.Errorf("failed to start git server for %q: %w", root, err)
	}

	cleanupMgr := internal.NewCleanupManager()
	defer cleanupMgr.Execute()
	cleanupMgr.Add("git-server", server.Close)

	c.writer.Printf("Serving repositories in %s at %s\n", root, server.URL())

	<-ctx.Done()
	return nil
}

// required reports every flag whose value is empty.
func required(flags map[string]string) error {
	var missing []string
	for name, value := range flags {
		if value == "" {
			missing = append(missing, "--"+name)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	sort.Strings(missing)
	return fmt.Errorf("missing required flag %s: %w", strings.Join(missing, ", "), internal.ErrInvalidInput)
}
