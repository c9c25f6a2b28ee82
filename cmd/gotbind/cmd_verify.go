package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gotbind/pkg/host"
)

func newVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify [<commit>|<ref>]",
		Short: "Verify the SSH signature on a commit",
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
				pair, err := s.call("git-commit-extract-signature", r, id)
				if err != nil {
					return err
				}
				cell, ok := pair.(*host.Cons)
				if !ok {
					return fmt.Errorf("git-commit-extract-signature: unexpected result %s", host.Format(pair))
				}
				fingerprint, err := verifyCommitSignature(stringValue(cell.Car), []byte(stringValue(cell.Cdr)))
				if err != nil {
					return fmt.Errorf("commit %s: %w", shortID(id), err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Good signature on %s from %s\n", shortID(id), fingerprint)
				return nil
			})
		},
	}
}
