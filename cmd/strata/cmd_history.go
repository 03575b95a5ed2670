package main

import (
	"fmt"

	"github.com/bethropolis/strata/internal/document"
	"github.com/bethropolis/strata/internal/session"
	"github.com/spf13/cobra"
)

func newUndoCmd(a *app) *cobra.Command {
	return newHistoryCmd(a, "undo", "Restore the state before the last change", (*session.Session).Undo)
}

func newRedoCmd(a *app) *cobra.Command {
	return newHistoryCmd(a, "redo", "Reapply the change most recently undone", (*session.Session).Redo)
}

func newHistoryCmd(a *app, verb, short string, step func(*session.Session) bool) *cobra.Command {
	var showDiff bool
	cmd := &cobra.Command{
		Use:   verb,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				before document.Tree
				ok     bool
			)
			s, err := a.update(func(s *session.Session) error {
				before = s.Composed()
				ok = step(s)
				return nil
			})
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "nothing to %s\n", verb)
				return nil
			}
			return printResult(a, cmd.OutOrStdout(), s, before, showDiff)
		},
	}
	cmd.Flags().BoolVar(&showDiff, "diff", false, "Print a word diff instead of the document")
	return cmd
}
