package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/odvcencio/gotbind/pkg/host"
	"github.com/odvcencio/gotbind/pkg/repo"
)

func newInitCmd(a *app) *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create an empty repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				a.repoPath = args[0]
			}
			return a.withSession(cmd, func(s *session) error {
				r, err := s.call("git-repository-init", host.String(s.dir))
				if err != nil {
					return err
				}
				path, err := s.call("git-repository-path", r)
				if err != nil {
					return err
				}
				if name != "" || email != "" {
					if err := writeIdentity(s.dir, name, email); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Initialized empty repository in %s\n", filepath.Clean(stringValue(path)))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "default author name stored in the repository")
	cmd.Flags().StringVar(&email, "email", "", "default author email stored in the repository")
	return cmd
}

func writeIdentity(dir, name, email string) error {
	r, err := repo.Open(dir)
	if err != nil {
		return err
	}
	cfg, err := r.ReadConfig()
	if err != nil {
		return err
	}
	cfg.User = repo.UserConfig{Name: name, Email: email}
	return r.WriteConfig(cfg)
}
