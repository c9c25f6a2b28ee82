package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gotbind/pkg/host"
	"github.com/odvcencio/gotbind/pkg/repo"
)

func newReflogCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "reflog [ref]",
		Short: "Show ref update history",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(s *session) error {
				r, err := s.openRepo()
				if err != nil {
					return err
				}
				ref, err := resolveRefArg(s, r, args)
				if err != nil {
					return err
				}
				rl, err := s.call("git-reflog-read", r, host.String(ref))
				if err != nil {
					return err
				}
				count, err := s.call("git-reflog-entrycount", rl)
				if err != nil {
					return err
				}
				n := intValue(count)
				if limit > 0 && n > limit {
					n = limit
				}
				out := cmd.OutOrStdout()
				for i := 0; i < n; i++ {
					line, err := reflogLine(s, rl, ref, i)
					if err != nil {
						return err
					}
					fmt.Fprintln(out, line)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum entries to show")
	cmd.AddCommand(newReflogDropCmd(a))
	cmd.AddCommand(newReflogDeleteCmd(a))
	cmd.AddCommand(newReflogRenameCmd(a))
	return cmd
}

// reflogLine formats entry i. The entry and its committer copy are dropped
// before returning so the collector can reclaim them.
func reflogLine(s *session, rl host.Value, ref string, i int) (string, error) {
	entry, err := s.call("git-reflog-entry-byindex", rl, host.Int(i))
	if err != nil {
		return "", err
	}
	defer s.drop(entry)
	id, err := s.call("git-reflog-entry-id", entry, host.Symbol("new"))
	if err != nil {
		return "", err
	}
	msg, err := s.call("git-reflog-entry-message", entry)
	if err != nil {
		return "", err
	}
	committer, err := s.call("git-reflog-entry-committer", entry)
	if err != nil {
		return "", err
	}
	defer s.drop(committer)
	name, err := s.call("git-signature-name", committer)
	if err != nil {
		return "", err
	}
	when, err := s.call("git-signature-time", committer)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s@{%d} %s %s: %s",
		shortID(id), ref, i, formatTime(when), stringValue(name), stringValue(msg)), nil
}

// resolveRefArg returns the full ref name from args, defaulting to the
// reference HEAD points at.
func resolveRefArg(s *session, r host.Value, args []string) (string, error) {
	if len(args) == 1 {
		return repo.FullRefName(args[0]), nil
	}
	head, err := s.call("git-repository-head", r)
	if err != nil {
		return "", err
	}
	defer s.drop(head)
	name, err := s.call("git-reference-name", head)
	if err != nil {
		return "", err
	}
	return stringValue(name), nil
}

// formatTime renders a (TIME OFFSET) list from git-signature-time.
func formatTime(v host.Value) string {
	vals, ok := host.ListValues(v)
	if !ok || len(vals) != 2 {
		return host.Format(v)
	}
	when, offset := intValue(vals[0]), intValue(vals[1])
	loc := time.FixedZone("", offset*60)
	return time.Unix(int64(when), 0).In(loc).Format(time.RFC3339)
}

func newReflogDropCmd(a *app) *cobra.Command {
	var rewrite bool

	cmd := &cobra.Command{
		Use:   "drop <ref> <index>",
		Short: "Remove one reflog entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("index %q: %w", args[1], err)
			}
			return a.withSession(cmd, func(s *session) error {
				r, err := s.openRepo()
				if err != nil {
					return err
				}
				rl, err := s.call("git-reflog-read", r, host.String(repo.FullRefName(args[0])))
				if err != nil {
					return err
				}
				if _, err := s.call("git-reflog-drop", rl, host.Int(idx), host.Bool(rewrite)); err != nil {
					return err
				}
				_, err = s.call("git-reflog-write", rl)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&rewrite, "rewrite", true, "rewrite the next entry so the history stays contiguous")
	return cmd
}

func newReflogDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <ref>",
		Short: "Delete the reflog of a ref",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(s *session) error {
				r, err := s.openRepo()
				if err != nil {
					return err
				}
				_, err = s.call("git-reflog-delete", r, host.String(repo.FullRefName(args[0])))
				return err
			})
		},
	}
}

func newReflogRenameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Move the reflog of one ref to another",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == args[1] {
				return errors.New("old and new ref are the same")
			}
			return a.withSession(cmd, func(s *session) error {
				r, err := s.openRepo()
				if err != nil {
					return err
				}
				_, err = s.call("git-reflog-rename", r, host.String(repo.FullRefName(args[0])), host.String(repo.FullRefName(args[1])))
				return err
			})
		},
	}
}
