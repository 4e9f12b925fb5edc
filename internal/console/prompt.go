package console

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
)

// ErrPromptClosed is returned when the user abandons a prompt (Ctrl-C or
// Ctrl-D) instead of answering it.
var ErrPromptClosed = errors.New("prompt closed")

// PromptText reads one line, offering def as the answer for empty input.
// A non-nil validate is re-prompted until it accepts the answer.
func PromptText(label, def string, validate func(string) error) (string, error) {
	prompt := label
	if def != "" {
		prompt = fmt.Sprintf("%s [%s]", label, def)
	}
	rl, err := readline.New(prompt + ": ")
	if err != nil {
		return "", err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			return "", ErrPromptClosed
		}
		answer := strings.TrimSpace(line)
		if answer == "" {
			answer = def
		}
		if validate != nil {
			if err := validate(answer); err != nil {
				fmt.Printf("  %v\n", err)
				continue
			}
		}
		return answer, nil
	}
}

// PromptFloat reads a positive number.
func PromptFloat(label string) (float64, error) {
	answer, err := PromptText(label, "", func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return errors.New("enter a number")
		}
		if !(v > 0) {
			return errors.New("enter a number greater than 0")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(answer, 64)
}

// PromptInt reads a positive whole number.
func PromptInt(label string) (int64, error) {
	answer, err := PromptText(label, "", func(s string) error {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return errors.New("enter a whole number")
		}
		if v <= 0 {
			return errors.New("enter a whole number greater than 0")
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(answer, 10, 64)
}

// PromptConfirm asks a yes/no question; empty input means no.
func PromptConfirm(label string) (bool, error) {
	answer, err := PromptText(label+" (y/N)", "n", func(s string) error {
		switch strings.ToLower(s) {
		case "y", "yes", "n", "no":
			return nil
		}
		return errors.New("answer y or n")
	})
	if err != nil {
		return false, err
	}
	lower := strings.ToLower(answer)
	return lower == "y" || lower == "yes", nil
}

// PromptSelect shows a numbered menu and returns the chosen option's index.
func PromptSelect(label string, options []string) (int, error) {
	fmt.Println(label)
	for i, opt := range options {
		fmt.Printf("  %d) %s\n", i+1, opt)
	}
	answer, err := PromptText("Choice", "", func(s string) error {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > len(options) {
			return fmt.Errorf("enter a number between 1 and %d", len(options))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	n, _ := strconv.Atoi(answer)
	return n - 1, nil
}
