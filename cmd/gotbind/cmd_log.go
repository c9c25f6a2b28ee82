package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gotbind/pkg/host"
)

func newLogCmd(a *app) *cobra.Command {
	var limit int
	var oneline bool

	cmd := &cobra.Command{
		Use:   "log [ref]",
		Short: "Show commit history following first parents",
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
				for n := 0; limit <= 0 || n < limit; n++ {
					next, err := logCommit(s, out, r, id, oneline)
					if err != nil {
						return err
					}
					if host.IsNil(next) {
						break
					}
					id = next
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum commits to show (0 for all)")
	cmd.Flags().BoolVar(&oneline, "oneline", false, "one line per commit")
	return cmd
}

// logCommit prints one commit and returns its first parent id, or nil.
func logCommit(s *session, out io.Writer, r, id host.Value, oneline bool) (host.Value, error) {
	c, err := s.call("git-commit-lookup", r, id)
	if err != nil {
		return nil, err
	}
	defer s.drop(c)

	summary, err := s.call("git-commit-summary", c)
	if err != nil {
		return nil, err
	}
	if oneline {
		fmt.Fprintf(out, "%s %s\n", shortID(id), stringValue(summary))
	} else {
		author, err := s.call("git-commit-author", c)
		if err != nil {
			return nil, err
		}
		defer s.drop(author)
		ident, err := signatureLine(s, author)
		if err != nil {
			return nil, err
		}
		msg, err := s.call("git-commit-message", c)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(out, "commit %s\nAuthor: %s\n\n", stringValue(id), ident)
		for _, line := range strings.Split(strings.TrimRight(stringValue(msg), "\n"), "\n") {
			fmt.Fprintf(out, "    %s\n", line)
		}
		fmt.Fprintln(out)
	}

	parent, err := s.call("git-commit-parent-id", c, host.Int(0))
	if err != nil {
		if errors.Is(err, &host.Signal{Symbol: host.QArgsOutOfRange}) {
			return host.Nil, nil
		}
		return nil, err
	}
	return parent, nil
}

func signatureLine(s *session, sig host.Value) (string, error) {
	name, err := s.call("git-signature-name", sig)
	if err != nil {
		return "", err
	}
	email, err := s.call("git-signature-email", sig)
	if err != nil {
		return "", err
	}
	when, err := s.call("git-signature-time", sig)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s <%s> %s", stringValue(name), stringValue(email), formatTime(when)), nil
}
