package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/bethropolis/strata/internal/config"
	"github.com/bethropolis/strata/internal/logger"
	"github.com/bethropolis/strata/internal/render"
	"github.com/bethropolis/strata/internal/session"
	"github.com/bethropolis/strata/internal/store"
	"github.com/bethropolis/strata/internal/transform"
	"github.com/spf13/cobra"
)

// DefaultLayerFile is used when --file is not given.
const DefaultLayerFile = "strata.yaml"

// app carries the state shared by all commands of one invocation.
type app struct {
	flags config.Flags
	file  string
	cfg   *config.Config
	logs  io.Closer

	// newTransformer builds the collaborator used by the transform command.
	newTransformer func(cfg config.TransformConfig) (transform.Transformer, error)
}

func newApp() *app {
	return &app{
		newTransformer: func(cfg config.TransformConfig) (transform.Transformer, error) {
			return transform.NewOpenAI(cfg)
		},
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "strata",
		Short: "Edit one document through stackable modification layers",
		Long: `strata keeps a base document and any number of named layers in a single
layer file. Edits made while a layer is active are stored in that layer only;
compose shows the document with every visible layer applied.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	a.flags.DefineFlags(root.PersistentFlags())
	root.PersistentFlags().StringVarP(&a.file, "file", "f", DefaultLayerFile, "Layer file to operate on")

	root.AddCommand(
		newInitCmd(a),
		newComposeCmd(a),
		newEditCmd(a),
		newHighlightCmd(a),
		newLayerCmd(a),
		newTransformCmd(a),
		newUndoCmd(a),
		newRedoCmd(a),
	)
	return root
}

// setup loads the configuration and installs the logger.
func (a *app) setup() error {
	cfg, err := config.Load(a.flags.ConfigFilePath, &a.flags)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg

	closer, err := logger.Setup(cfg.Logger)
	if err != nil {
		return fmt.Errorf("initialising logger: %w", err)
	}
	a.logs = closer
	logger.Debugf("Starting strata on %s", a.file)
	logger.Debugf("Log level set to: %s", cfg.Logger.LogLevel)
	return nil
}

func (a *app) close() error {
	if a.logs == nil {
		return nil
	}
	err := a.logs.Close()
	a.logs = nil
	return err
}

// open loads the layer file into a session.
func (a *app) open() (*session.Session, error) {
	f, err := store.Load(a.file)
	if err != nil {
		return nil, err
	}
	s, err := session.FromFile(f, session.OptionsFromConfig(a.cfg))
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", a.file, err)
	}
	return s, nil
}

// save writes the session back, history included.
func (a *app) save(s *session.Session) error {
	if err := store.Save(a.file, s.File(true)); err != nil {
		return err
	}
	logger.Debugf("Saved %s", a.file)
	return nil
}

// update opens the layer file, runs fn and saves the result.
func (a *app) update(fn func(s *session.Session) error) (*session.Session, error) {
	s, err := a.open()
	if err != nil {
		return nil, err
	}
	if err := fn(s); err != nil {
		return nil, err
	}
	return s, a.save(s)
}

func (a *app) renderer(w io.Writer) *render.Renderer {
	return render.New(w, a.cfg.Render.Color)
}

var errNotANumber = errors.New("not a number")

// parseInt parses a positional numeric argument.
func parseInt(name, arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", name, arg, errNotANumber)
	}
	return n, nil
}

// appendIndex turns a negative index flag into "after the last sibling".
func appendIndex(index int) int {
	if index < 0 {
		return math.MaxInt
	}
	return index
}
