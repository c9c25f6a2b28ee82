package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gotbind/pkg/host"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats [ref]",
		Short: "Walk a reflog through the binding and report handle and allocation counters",
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
				for i := 0; i < intValue(count); i++ {
					entry, err := s.call("git-reflog-entry-byindex", rl, host.Int(i))
					if err != nil {
						return err
					}
					committer, err := s.call("git-reflog-entry-committer", entry)
					if err != nil {
						return err
					}
					s.drop(entry, committer)
				}
				s.drop(rl)
				collected := s.env.GC()

				out := cmd.OutOrStdout()
				rs := s.rt.Stats()
				hs := s.env.Stats()
				ns := s.lib.Stats()
				fmt.Fprintf(out, "reflog %s: %d entries\n", ref, intValue(count))
				fmt.Fprintf(out, "handles: wrapped %d, finalized %d, live %d (owned %d, borrowed %d), pending %d\n",
					rs.Wrapped, rs.Finalized, rs.Live(), rs.Owned, rs.Borrowed, rs.Pending)
				fmt.Fprintf(out, "frees: %d (%d deferred)\n", rs.Frees, rs.Deferred)
				fmt.Fprintf(out, "host: %d live, %d allocated, %d collected in %d collections\n",
					hs.Live, hs.Allocated, collected, hs.Collections)
				fmt.Fprintf(out, "native: %d calls, %d allocs, %d frees, %d live, %d violations\n",
					ns.Calls, ns.Allocs, ns.Frees, ns.Live, ns.Violations())
				return nil
			})
		},
	}
}
