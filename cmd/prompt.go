package cmd

import (
	"errors"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

// prompter asks questions on the command's streams.
type prompter struct {
	in  io.ReadCloser
	out io.WriteCloser
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func newPrompter(cmd *cobra.Command) prompter {
	return prompter{
		in:  io.NopCloser(cmd.InOrStdin()),
		out: nopWriteCloser{cmd.OutOrStdout()},
	}
}

func required(label string) promptui.ValidateFunc {
	return func(input string) error {
		if strings.TrimSpace(input) == "" {
			return errors.New(label + " is required")
		}
		return nil
	}
}

func (p prompter) text(label, defaultValue string, validate promptui.ValidateFunc) (string, error) {
	prompt := promptui.Prompt{
		Label:    label,
		Default:  defaultValue,
		Validate: validate,
		Stdin:    p.in,
		Stdout:   p.out,
	}
	value, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

func (p prompter) secret(label string) (string, error) {
	prompt := promptui.Prompt{
		Label:    label,
		Mask:     '*',
		Validate: required(label),
		Stdin:    p.in,
		Stdout:   p.out,
	}
	return prompt.Run()
}

func (p prompter) choose(label string, items []string) (string, error) {
	selectPrompt := promptui.Select{
		Label:  label,
		Items:  items,
		Size:   len(items),
		Stdin:  p.in,
		Stdout: p.out,
	}
	_, value, err := selectPrompt.Run()
	return value, err
}
