package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// InputConfig configures a single-line text prompt.
type InputConfig struct {
	Message   string
	Default   string
	Help      string
	Validator func(string) error
	// Suggest offers completions on Tab.
	Suggest func(partial string) []string
}

// ConfirmConfig configures a yes/no style prompt.
type ConfirmConfig struct {
	Message string
	Default bool
	Help    string
}

// SelectConfig configures a single or multi-select prompt.
type SelectConfig struct {
	Message      string
	Options      []string
	DefaultIndex int
	Defaults     []int // used for multi-select; indices into Options
	Help         string
	PageSize     int
}

// TextAreaConfig configures a multi-line text prompt.
type TextAreaConfig struct {
	Message string
	Default string
	Help    string
}

// PromptDriver abstracts the terminal so the wizard can be tested without
// one and callers can swap implementations.
type PromptDriver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error)
	Select(ctx context.Context, cfg SelectConfig) (int, error)
	MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error)
	TextArea(ctx context.Context, cfg TextAreaConfig) (string, error)
	Info(ctx context.Context, msg string) error
}

type surveyDriver struct {
	out  terminal.FileWriter
	opts []survey.AskOpt
}

// NewSurveyDriver returns the interactive driver. Prompts and messages are
// drawn on out, or stdout when nil, so callers can keep stdout for results.
func NewSurveyDriver(out terminal.FileWriter) PromptDriver {
	if out == nil {
		out = os.Stdout
	}
	return &surveyDriver{
		out:  out,
		opts: []survey.AskOpt{survey.WithStdio(os.Stdin, out, os.Stderr)},
	}
}

func (d *surveyDriver) ask(ctx context.Context, prompt survey.Prompt, answer any, extra ...survey.AskOpt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := survey.AskOne(prompt, answer, append(append([]survey.AskOpt(nil), d.opts...), extra...)...)
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

func (d *surveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	var out string
	prompt := &survey.Input{Message: cfg.Message, Help: cfg.Help, Default: cfg.Default, Suggest: cfg.Suggest}
	var extra []survey.AskOpt
	if cfg.Validator != nil {
		validate := cfg.Validator
		extra = append(extra, survey.WithValidator(func(answer any) error {
			s, _ := answer.(string)
			return validate(s)
		}))
	}
	if err := d.ask(ctx, prompt, &out, extra...); err != nil {
		return "", err
	}
	return out, nil
}

func (d *surveyDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	var out bool
	if err := d.ask(ctx, &survey.Confirm{Message: cfg.Message, Help: cfg.Help, Default: cfg.Default}, &out); err != nil {
		return false, err
	}
	return out, nil
}

func (d *surveyDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	prompt := &survey.Select{Message: cfg.Message, Options: cfg.Options, Help: cfg.Help, PageSize: cfg.PageSize}
	if cfg.DefaultIndex >= 0 && cfg.DefaultIndex < len(cfg.Options) {
		prompt.Default = cfg.DefaultIndex
	}
	var idx int
	if err := d.ask(ctx, prompt, &idx); err != nil {
		return 0, err
	}
	return idx, nil
}

func (d *surveyDriver) MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error) {
	prompt := &survey.MultiSelect{Message: cfg.Message, Options: cfg.Options, Help: cfg.Help, PageSize: cfg.PageSize}
	if len(cfg.Defaults) > 0 {
		prompt.Default = cfg.Defaults
	}
	var picked []string
	if err := d.ask(ctx, prompt, &picked); err != nil {
		return nil, err
	}
	chosen := make(map[string]bool, len(picked))
	for _, option := range picked {
		chosen[option] = true
	}
	var out []int
	for i, option := range cfg.Options {
		if chosen[option] {
			out = append(out, i)
		}
	}
	return out, nil
}

func (d *surveyDriver) TextArea(ctx context.Context, cfg TextAreaConfig) (string, error) {
	var out string
	if err := d.ask(ctx, &survey.Multiline{Message: cfg.Message, Help: cfg.Help, Default: cfg.Default}, &out); err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}

func (d *surveyDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}

// suggestPaths completes a partially typed file path.
func suggestPaths(partial string) []string {
	matches, _ := filepath.Glob(partial + "*")
	for i, match := range matches {
		if info, err := os.Stat(match); err == nil && info.IsDir() {
			matches[i] = match + string(filepath.Separator)
		}
	}
	return matches
}
