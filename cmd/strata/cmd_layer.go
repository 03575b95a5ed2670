package main

import (
	"fmt"

	"github.com/bethropolis/strata/internal/layer"
	"github.com/bethropolis/strata/internal/session"
	"github.com/spf13/cobra"
)

func newLayerCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "layer",
		Aliases: []string{"layers", "l"},
		Short:   "Manage the layer stack",
	}
	cmd.AddCommand(
		newLayerListCmd(a),
		newLayerAddCmd(a),
		newLayerRemoveCmd(a),
		newLayerMoveCmd(a),
		newLayerVisibilityCmd(a, "show", true),
		newLayerVisibilityCmd(a, "hide", false),
		newLayerRenameCmd(a),
		newLayerSelectCmd(a),
	)
	return cmd
}

func newLayerListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List layers in stacking order ('*' marks the active layer)",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), a.renderer(cmd.OutOrStdout()).Layers(s.Forest(), s.Active()))
			return nil
		},
	}
}

func newLayerAddCmd(a *app) *cobra.Command {
	var (
		parent int
		index  int
		color  string
		keep   bool
	)
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a layer and make it active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id int
			_, err := a.update(func(s *session.Session) error {
				var err error
				id, err = s.AddLayer(layer.NewLayer(args[0], color), parent, appendIndex(index))
				if err != nil {
					return fmt.Errorf("adding layer %q: %w", args[0], err)
				}
				if keep {
					return nil
				}
				return s.SelectLayer(id)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added layer %d %q\n", id, args[0])
			return nil
		},
	}
	cmd.Flags().IntVarP(&parent, "parent", "p", -1, "Parent layer (negative for a top-level layer)")
	cmd.Flags().IntVarP(&index, "index", "i", -1, "Position among the parent's children (negative appends)")
	cmd.Flags().StringVarP(&color, "color", "c", "", "Layer colour (name or #rrggbb); picked from the palette when empty")
	cmd.Flags().BoolVar(&keep, "keep-active", false, "Do not select the new layer")
	return cmd
}

func newLayerRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "remove ID",
		Aliases: []string{"rm"},
		Short:   "Remove a layer and every layer nested in it",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseInt("layer", args[0])
			if err != nil {
				return err
			}
			_, err = a.update(func(s *session.Session) error {
				return s.RemoveLayer(id)
			})
			if err != nil {
				return fmt.Errorf("removing layer %d: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed layer %d\n", id)
			return nil
		},
	}
}

func newLayerMoveCmd(a *app) *cobra.Command {
	var (
		parent int
		index  int
	)
	cmd := &cobra.Command{
		Use:   "move ID",
		Short: "Move a layer, with its nested layers, under another parent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseInt("layer", args[0])
			if err != nil {
				return err
			}
			var newID int
			_, err = a.update(func(s *session.Session) error {
				var err error
				newID, err = s.MoveLayer(id, parent, appendIndex(index))
				return err
			})
			if err != nil {
				return fmt.Errorf("moving layer %d: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "moved layer %d to %d\n", id, newID)
			return nil
		},
	}
	cmd.Flags().IntVarP(&parent, "parent", "p", -1, "New parent layer (negative for a top-level layer)")
	cmd.Flags().IntVarP(&index, "index", "i", -1, "Position among the parent's children (negative appends)")
	return cmd
}

func newLayerVisibilityCmd(a *app, verb string, visible bool) *cobra.Command {
	short := "Show a layer and its ancestors"
	if !visible {
		short = "Hide a layer and its descendants"
	}
	return &cobra.Command{
		Use:   verb + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseInt("layer", args[0])
			if err != nil {
				return err
			}
			_, err = a.update(func(s *session.Session) error {
				return s.SetVisibility(id, visible)
			})
			if err != nil {
				return fmt.Errorf("%s layer %d: %w", verb, id, err)
			}
			return nil
		},
	}
}

func newLayerRenameCmd(a *app) *cobra.Command {
	var color string
	cmd := &cobra.Command{
		Use:   "rename ID NAME",
		Short: "Rename or recolour a layer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseInt("layer", args[0])
			if err != nil {
				return err
			}
			props := layer.Properties{Name: &args[1]}
			if cmd.Flags().Changed("color") {
				props.Color = &color
			}
			_, err = a.update(func(s *session.Session) error {
				return s.SetProperties(id, props)
			})
			if err != nil {
				return fmt.Errorf("renaming layer %d: %w", id, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&color, "color", "c", "", "New layer colour")
	return cmd
}

func newLayerSelectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "select ID",
		Short: "Make a layer the target of later edits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseInt("layer", args[0])
			if err != nil {
				return err
			}
			_, err = a.update(func(s *session.Session) error {
				return s.SelectLayer(id)
			})
			if err != nil {
				return fmt.Errorf("selecting layer %d: %w", id, err)
			}
			return nil
		},
	}
}
