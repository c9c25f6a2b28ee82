package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/odvcencio/gotbind/pkg/egit"
	"github.com/odvcencio/gotbind/pkg/host"
	"github.com/odvcencio/gotbind/pkg/native"
	"github.com/odvcencio/gotbind/pkg/object"
	"github.com/odvcencio/gotbind/pkg/repo"
)

// app holds the persistent flags shared by every command.
type app struct {
	configPath string
	repoPath   string
	logLevel   string
}

// session is one run of the binding: a native library, the runtime over
// it and a host environment with the git functions installed.
type session struct {
	cfg    Config
	dir    string
	logger *log.Logger
	closer io.Closer

	lib *native.Lib
	rt  *egit.Runtime
	env *host.Env

	calls int
}

// start loads configuration relative to the repository directory and
// installs the binding. The caller must close the session.
func (a *app) start(cmd *cobra.Command) (*session, error) {
	dir := a.repoPath
	if dir == "" {
		dir = "."
	}
	cfg, err := loadConfig(a.configPath, dir)
	if err != nil {
		return nil, err
	}
	if a.repoPath == "" && cfg.Repo != "" {
		dir = cfg.Repo
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve repository path: %w", err)
	}

	logger, closer, err := newLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	lib := native.New()
	s := &session{
		cfg:    cfg,
		dir:    abs,
		logger: logger,
		closer: closer,
		lib:    lib,
		rt:     egit.New(lib, egit.WithLogger(logger)),
		env:    host.NewEnv(),
	}
	s.rt.Install(s.env)
	return s, nil
}

// call invokes a host function. Returned handles are protected until
// dropped; every cfg.GCEvery calls the host collector runs.
func (s *session) call(name string, args ...host.Value) (host.Value, error) {
	v, err := s.env.Funcall(host.Symbol(name), args...)
	s.calls++
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if _, ok := v.(*host.UserPtr); ok {
		s.env.Protect(v)
	}
	if s.cfg.GCEvery > 0 && s.calls%s.cfg.GCEvery == 0 {
		n := s.env.GC()
		s.logger.Debug("collected", "finalized", n, "calls", s.calls)
	}
	return v, nil
}

// drop makes handles from call collectable again.
func (s *session) drop(vals ...host.Value) {
	for _, v := range vals {
		if _, ok := v.(*host.UserPtr); ok {
			s.env.Unprotect(v)
		}
	}
}

// openRepo opens the session's repository.
func (s *session) openRepo() (host.Value, error) {
	return s.call("git-repository-open", host.String(s.dir))
}

// close finalizes every handle and reports leaks or misuse detected by
// the native library.
func (s *session) close() error {
	finalized := s.env.Shutdown()
	st := s.lib.Stats()
	rs := s.rt.Stats()
	s.logger.Debug("session closed", "finalized", finalized, "frees", rs.Frees, "deferred", rs.Deferred, "calls", st.Calls)

	var errs []error
	if st.Live != 0 {
		errs = append(errs, fmt.Errorf("%d native allocations leaked", st.Live))
	}
	if v := st.Violations(); v != 0 {
		errs = append(errs, fmt.Errorf("%d native memory violations", v))
	}
	if err := s.closer.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// withSession runs fn inside a session and folds the close error in.
func (a *app) withSession(cmd *cobra.Command, fn func(s *session) error) (err error) {
	s, err := a.start(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(s)
}

func stringValue(v host.Value) string {
	if s, ok := v.(host.String); ok {
		return string(s)
	}
	return host.Format(v)
}

func intValue(v host.Value) int {
	if n, ok := v.(host.Int); ok {
		return int(n)
	}
	return 0
}

func shortID(v host.Value) string {
	s := stringValue(v)
	if len(s) > 12 {
		return s[:12]
	}
	return s
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// resolveCommit turns a full commit id, HEAD, or a reference name into a
// commit id.
func (s *session) resolveCommit(r host.Value, arg string) (host.Value, error) {
	if _, err := object.ParseHash(arg); err == nil {
		return host.String(arg), nil
	}
	var ref host.Value
	var err error
	if arg == "" || arg == "HEAD" {
		ref, err = s.call("git-repository-head", r)
	} else {
		ref, err = s.call("git-reference-lookup", r, host.String(repo.FullRefName(arg)))
	}
	if err != nil {
		return nil, err
	}
	defer s.drop(ref)
	return s.call("git-reference-target", ref)
}
