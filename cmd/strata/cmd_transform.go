package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/bethropolis/strata/internal/document"
	"github.com/bethropolis/strata/internal/logger"
	"github.com/bethropolis/strata/internal/session"
	"github.com/bethropolis/strata/internal/tool"
	"github.com/spf13/cobra"
)

func toolNames() string {
	names := make([]string, 0, len(tool.Kinds()))
	for _, k := range tool.Kinds() {
		names = append(names, k.String())
	}
	return strings.Join(names, ", ")
}

func newTransformCmd(a *app) *cobra.Command {
	var (
		instruction string
		timeout     time.Duration
		showDiff    bool
	)
	cmd := &cobra.Command{
		Use:   "transform TOOL START END",
		Short: "Rewrite a range of the composed document with a language model tool",
		Long: fmt.Sprintf(`Run TOOL over the characters [START, END) of the composed document and store
the rewrite in the active layer. Tools: %s.
The prompt tool needs --instruction.`, toolNames()),
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := tool.ParseKind(args[0])
			if err != nil {
				return err
			}
			start, err := parseInt("start", args[1])
			if err != nil {
				return err
			}
			end, err := parseInt("end", args[2])
			if err != nil {
				return err
			}

			transformer, err := a.newTransformer(a.cfg.Transform)
			if err != nil {
				return err
			}
			t, err := tool.New(kind, transformer, instruction)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			var before document.Tree
			s, err := a.update(func(s *session.Session) error {
				before = s.Composed()
				logger.Infof("Running %v on %d-%d", kind, start, end)
				_, err := s.ApplyTool(ctx, t, start, end)
				return err
			})
			if err != nil {
				return fmt.Errorf("%v: %w", kind, err)
			}
			return printResult(a, cmd.OutOrStdout(), s, before, showDiff)
		},
	}
	cmd.Flags().StringVar(&instruction, "instruction", "", "Instruction for the prompt tool")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "Give up on the model after this long (0 disables)")
	cmd.Flags().BoolVar(&showDiff, "diff", true, "Print a word diff instead of the document")
	return cmd
}
