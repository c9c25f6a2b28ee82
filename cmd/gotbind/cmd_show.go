package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gotbind/pkg/host"
)

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show [<commit>|<ref>]",
		Short: "Show a commit and the entries of its root tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd, func(s *session) error {
				r, err := s.openRepo()
				if err != nil {
					return err
				}
				var arg string
				if len(args) == 1 {
					arg = args[0]
				}
				id, err := s.resolveCommit(r, arg)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if _, err := logCommit(s, out, r, id, false); err != nil {
					return err
				}
				c, err := s.call("git-commit-lookup", r, id)
				if err != nil {
					return err
				}
				tree, err := s.call("git-commit-tree", c)
				if err != nil {
					return err
				}
				return showTree(s, out, r, tree, "")
			})
		},
	}
}

// showTree lists tree entries recursively as "mode id path".
func showTree(s *session, out io.Writer, r, tree host.Value, prefix string) error {
	count, err := s.call("git-tree-entrycount", tree)
	if err != nil {
		return err
	}
	for i := 0; i < intValue(count); i++ {
		entry, err := s.call("git-tree-entry-byindex", tree, host.Int(i))
		if err != nil {
			return err
		}
		name, err := s.call("git-tree-entry-name", entry)
		if err != nil {
			return err
		}
		id, err := s.call("git-tree-entry-id", entry)
		if err != nil {
			return err
		}
		mode, err := s.call("git-tree-entry-filemode", entry)
		if err != nil {
			return err
		}
		s.drop(entry)

		path := prefix + stringValue(name)
		if intValue(mode) == modeDir {
			sub, err := s.call("git-tree-lookup", r, id)
			if err != nil {
				return err
			}
			err = showTree(s, out, r, sub, path+"/")
			s.drop(sub)
			if err != nil {
				return err
			}
			continue
		}
		fmt.Fprintf(out, "%06o %s %s\n", intValue(mode), shortID(id), path)
	}
	return nil
}
