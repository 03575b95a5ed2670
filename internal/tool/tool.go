// Package tool holds the closed set of editing tools. Every tool builds a prompt
// from the selected text and its surroundings, asks the transformer for a rewrite
// and fits the answer back into the document.
package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bethropolis/strata/internal/logger"
	"github.com/bethropolis/strata/internal/transform"
	"github.com/bethropolis/strata/internal/utils"
)

// Kind identifies a tool.
type Kind int

const (
	Eraser Kind = iota
	Pluralize
	Singularize
	PastTense
	PresentTense
	FutureTense
	Repair
	Prompt
)

var kindNames = map[Kind]string{
	Eraser:       "erase",
	Pluralize:    "pluralize",
	Singularize:  "singularize",
	PastTense:    "past",
	PresentTense: "present",
	FutureTense:  "future",
	Repair:       "repair",
	Prompt:       "prompt",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("tool(%d)", int(k))
}

// Kinds lists every tool in toolbar order.
func Kinds() []Kind {
	return []Kind{Eraser, Pluralize, Singularize, PastTense, PresentTense, FutureTense, Repair, Prompt}
}

// ParseKind maps a tool name back to its kind.
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTool, name)
}

// Scope tells which part of the document a tool's result replaces.
type Scope int

const (
	// ScopeSelection replaces the selected text only.
	ScopeSelection Scope = iota
	// ScopeSentence replaces the whole sentence around the selection.
	ScopeSentence
)

var (
	ErrUnknownTool        = errors.New("unknown tool")
	ErrSelectionTooShort  = errors.New("selection too short")
	ErrMissingInstruction = errors.New("prompt tool needs an instruction")
)

// Selection is the text a tool works on. For sentence tools Before and After hold
// the rest of the sentence; otherwise they hold the surrounding text.
type Selection struct {
	Before string
	Text   string
	After  string
}

// Tool is one editing tool.
type Tool interface {
	Kind() Kind
	Scope() Scope
	// Prompt renders the request sent to the transformer.
	Prompt(sel Selection) string
	// Apply runs the tool and returns the text replacing the tool's scope.
	Apply(ctx context.Context, sel Selection) (string, error)
}

// New creates a tool of the given kind. instruction is only used by Prompt.
func New(kind Kind, t transform.Transformer, instruction string) (Tool, error) {
	if _, ok := kindNames[kind]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownTool, int(kind))
	}
	if kind == Prompt && strings.TrimSpace(instruction) == "" {
		return nil, ErrMissingInstruction
	}
	return &promptTool{kind: kind, transformer: t, instruction: instruction}, nil
}

type promptTool struct {
	kind        Kind
	transformer transform.Transformer
	instruction string
}

func (p *promptTool) Kind() Kind { return p.kind }

func (p *promptTool) Scope() Scope {
	switch p.kind {
	case Eraser, Pluralize, Singularize, PastTense, PresentTense, FutureTense:
		return ScopeSentence
	default:
		return ScopeSelection
	}
}

func (p *promptTool) Prompt(sel Selection) string {
	switch p.kind {
	case Eraser:
		return fmt.Sprintf("%s %s\n\nFix this sentence without adding new words. "+
			"You can reorganize the words and the sentence, but you can't add new words.", sel.Before, sel.After)
	case Pluralize, Singularize:
		label, verb := "PART_TO_PLURAL", "pluralizing"
		if p.kind == Singularize {
			label, verb = "PART_TO_SINGULAR", "singularizing"
		}
		return labelled(sel, label) + fmt.Sprintf("Rewrite this text by %s %s.", verb, label)
	case PastTense, PresentTense, FutureTense:
		tense := p.kind.String()
		label := "PART_TO_" + strings.ToUpper(tense)
		return labelled(sel, label) + fmt.Sprintf("Rewrite this text by changing %s to the %s tense.", label, tense)
	case Repair:
		return sel.Text + "\n\nFix the grammar."
	case Prompt:
		return fmt.Sprintf("%s <blank> %s\n<blank>: %s\n\nINSTRUCTION: %s\nRewrite <blank>. Follow INSTRUCTION\n<blank>:",
			sel.Before, sel.After, sel.Text, p.instruction)
	}
	return sel.Text
}

func labelled(sel Selection, label string) string {
	return fmt.Sprintf("%s %s %s\n\n%s: %s\n\n",
		strings.TrimSpace(sel.Before), label, strings.TrimSpace(sel.After), label, strings.TrimSpace(sel.Text))
}

func (p *promptTool) Apply(ctx context.Context, sel Selection) (string, error) {
	if p.kind != Prompt && utils.RuneLen(sel.Text) <= 1 {
		return "", ErrSelectionTooShort
	}
	logger.DebugTagf("tool", "Running %v on %q", p.kind, sel.Text)

	result, err := p.transformer.Transform(ctx, p.Prompt(sel))
	if err != nil {
		return "", fmt.Errorf("%v: %w", p.kind, err)
	}

	model := sel.Text
	switch {
	case p.Scope() == ScopeSentence:
		model = sel.Before + sel.Text + sel.After
	case p.kind == Prompt:
		result = strings.Replace(result, "<blank>:", "", 1)
		result = strings.Replace(result, "<blank>", "", 1)
	}
	return transform.Fit(result, model), nil
}
