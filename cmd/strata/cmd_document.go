package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/bethropolis/strata/internal/compose"
	"github.com/bethropolis/strata/internal/config"
	"github.com/bethropolis/strata/internal/document"
	"github.com/bethropolis/strata/internal/highlight"
	"github.com/bethropolis/strata/internal/logger"
	"github.com/bethropolis/strata/internal/session"
	"github.com/bethropolis/strata/internal/store"
	"github.com/spf13/cobra"
)

var errFileExists = errors.New("layer file already exists (use --force to overwrite)")

func newInitCmd(a *app) *cobra.Command {
	var (
		from  string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "init [text]",
		Short: "Create a layer file holding a base document",
		Long: `Create a layer file whose base layer holds the given text. The text is read
from --from, from the argument, or from standard input, in that order.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(a.file); err == nil && !force {
				return fmt.Errorf("%s: %w", a.file, errFileExists)
			}

			var text string
			switch {
			case from != "":
				data, err := os.ReadFile(from)
				if err != nil {
					return fmt.Errorf("reading %s: %w", from, err)
				}
				text = string(data)
			case len(args) == 1:
				text = args[0]
			default:
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("reading standard input: %w", err)
				}
				text = string(data)
			}
			text = strings.TrimSuffix(text, "\n")

			s := session.NewDocument(text, session.OptionsFromConfig(a.cfg))
			if err := a.save(s); err != nil {
				return err
			}
			logger.Infof("Created %s", a.file)
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%d blocks)\n", a.file, len(s.Composed()))
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Read the base text from a file")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing layer file")
	return cmd
}

func newComposeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "compose",
		Short: "Print the document with every visible layer applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open()
			if err != nil {
				return err
			}
			f, tree := s.Forest(), s.Composed()
			fmt.Fprintln(cmd.OutOrStdout(), a.renderer(cmd.OutOrStdout()).Document(f, tree))

			if a.cfg.Render.Clipboard {
				if err := clipboard.WriteAll(plainText(tree)); err != nil {
					return fmt.Errorf("copying to clipboard: %w", err)
				}
				logger.Infof("Copied composed document to the clipboard")
			}
			return nil
		},
	}
}

func newEditCmd(a *app) *cobra.Command {
	var (
		layerID  int
		showDiff bool
	)
	cmd := &cobra.Command{
		Use:   "edit START END TEXT",
		Short: "Replace a range of the composed document while a layer is active",
		Long: `Replace the characters [START, END) of the composed document with TEXT, as if
typed in an editor with the active layer selected. Offsets count characters;
a line break counts as one. The change is stored in the active layer.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := parseInt("start", args[0])
			if err != nil {
				return err
			}
			end, err := parseInt("end", args[1])
			if err != nil {
				return err
			}

			var before document.Tree
			s, err := a.update(func(s *session.Session) error {
				if cmd.Flags().Changed("layer") {
					if err := s.SelectLayer(layerID); err != nil {
						return fmt.Errorf("selecting layer %d: %w", layerID, err)
					}
				}
				if !s.Editable() {
					logger.Warnf("Layer %d is hidden; the edit will not be stored", s.Active())
				}
				before = s.Composed()
				_, err := s.Replace(start, end, args[2])
				return err
			})
			if err != nil {
				return err
			}
			return printResult(a, cmd.OutOrStdout(), s, before, showDiff)
		},
	}
	cmd.Flags().IntVarP(&layerID, "layer", "l", 0, "Select this layer before editing")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "Print a word diff instead of the document")
	return cmd
}

func newHighlightCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "highlight OTHER",
		Short: "Show the word-level changes from another layer file to this one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			other, err := store.Load(args[0])
			if err != nil {
				return err
			}
			s, err := a.open()
			if err != nil {
				return err
			}
			segs := highlight.Diff(compose.Forest(other.Forest), s.Composed())
			if segs == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "no changes")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.renderer(cmd.OutOrStdout()).Highlight(segs))
			return nil
		},
	}
}

// printResult prints the recomposed document, or the word diff against before.
func printResult(a *app, w io.Writer, s *session.Session, before document.Tree, showDiff bool) error {
	r := a.renderer(w)
	if !showDiff {
		_, err := fmt.Fprintln(w, r.Document(s.Forest(), s.Composed()))
		return err
	}
	segs := highlight.Diff(before, s.Composed())
	if segs == nil {
		_, err := fmt.Fprintln(w, "no changes")
		return err
	}
	_, err := fmt.Fprintln(w, r.Highlight(segs))
	return err
}

func plainText(t document.Tree) string {
	return strings.ReplaceAll(t.Text(), config.Placeholder, "")
}
