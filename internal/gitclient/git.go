// Package gitclient fetches file contents at a commit from local bare mirrors
// of remote repositories.
package gitclient

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/huangsam/codescore/internal/contract"
)

// Runner executes git commands. This allows the fetcher to be tested without
// needing a real git executable.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) ([]byte, error)
}

// LocalRunner implements Runner by executing the local 'git' binary.
type LocalRunner struct{}

var _ Runner = &LocalRunner{} // Compile-time check

// Run executes a git command in dir and returns its stdout.
func (r *LocalRunner) Run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", dir}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("git %s failed in %q: %s", args[0], dir, stderr)
	} else if err != nil {
		return nil, fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", err)
	}
	return out, nil
}

var (
	repoNamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)
	refPattern      = regexp.MustCompile(`^[0-9a-fA-F]{7,64}$`)
)

// ErrInvalidInput is returned for repository names, refs or paths that could
// escape the mirror directory or be read as git options.
var ErrInvalidInput = errors.New("invalid fetch input")

// Fetcher implements contract.SourceFetcher over bare mirrors kept under a root directory.
type Fetcher struct {
	root      string
	runner    Runner
	remoteURL func(repository string) string

	mu    sync.Mutex
	repos map[string]*sync.Mutex
}

var _ contract.SourceFetcher = &Fetcher{} // Compile-time check

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithRunner replaces the git runner.
func WithRunner(r Runner) Option {
	return func(f *Fetcher) { f.runner = r }
}

// WithRemoteURL replaces how a repository full name maps to a clone URL.
func WithRemoteURL(fn func(repository string) string) Option {
	return func(f *Fetcher) { f.remoteURL = fn }
}

// NewFetcher creates a fetcher that mirrors repositories under root.
func NewFetcher(root string, opts ...Option) *Fetcher {
	f := &Fetcher{
		root:   root,
		runner: &LocalRunner{},
		remoteURL: func(repository string) string {
			return "https://github.com/" + repository + ".git"
		},
		repos: make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the contents of path at commit ref in repository. The mirror
// is cloned on first use and the commit is fetched only when missing.
func (f *Fetcher) Fetch(ctx context.Context, repository, ref, filePath string) (string, error) {
	if err := validate(repository, ref, filePath); err != nil {
		return "", err
	}

	lock := f.repoLock(repository)
	lock.Lock()
	defer lock.Unlock()

	dir, err := f.ensureMirror(ctx, repository)
	if err != nil {
		return "", err
	}
	if err := f.ensureCommit(ctx, dir, ref); err != nil {
		return "", err
	}

	out, err := f.runner.Run(ctx, dir, "show", ref+":"+filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s at %s: %w", filePath, ref, err)
	}
	return string(out), nil
}

func (f *Fetcher) repoLock(repository string) *sync.Mutex {
	f.mu.Lock()
	defer f.mu.Unlock()
	lock, ok := f.repos[repository]
	if !ok {
		lock = &sync.Mutex{}
		f.repos[repository] = lock
	}
	return lock
}

// mirrorDir is where the bare mirror of a repository lives.
func (f *Fetcher) mirrorDir(repository string) string {
	return filepath.Join(f.root, filepath.FromSlash(repository)+".git")
}

func (f *Fetcher) ensureMirror(ctx context.Context, repository string) (string, error) {
	dir := f.mirrorDir(repository)
	if _, err := os.Stat(dir); err == nil {
		return dir, nil
	}

	parent := filepath.Dir(dir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return "", fmt.Errorf("failed to create mirror directory: %w", err)
	}
	if _, err := f.runner.Run(ctx, parent, "clone", "--bare", "--quiet", "--filter=blob:none", f.remoteURL(repository), dir); err != nil {
		return "", fmt.Errorf("failed to clone %s: %w", repository, err)
	}
	return dir, nil
}

func (f *Fetcher) ensureCommit(ctx context.Context, dir, ref string) error {
	if _, err := f.runner.Run(ctx, dir, "cat-file", "-e", ref+"^{commit}"); err == nil {
		return nil
	}
	if _, err := f.runner.Run(ctx, dir, "fetch", "--quiet", "origin", ref); err != nil {
		return fmt.Errorf("failed to fetch %s: %w", ref, err)
	}
	return nil
}

func validate(repository, ref, filePath string) error {
	if !repoNamePattern.MatchString(repository) || strings.Contains(repository, "..") {
		return fmt.Errorf("%w: repository %q", ErrInvalidInput, repository)
	}
	if !refPattern.MatchString(ref) {
		return fmt.Errorf("%w: ref %q", ErrInvalidInput, ref)
	}
	clean := path.Clean(filePath)
	if filePath == "" || clean != filePath || path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") || strings.HasPrefix(clean, "-") {
		return fmt.Errorf("%w: path %q", ErrInvalidInput, filePath)
	}
	return nil
}
