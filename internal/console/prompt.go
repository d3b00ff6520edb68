package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

type promptValidator func(string) (bool, string)

type promptConfig struct {
	tries     int
	validator promptValidator
}

type promptOption func(*promptConfig)

func WithValidator(v promptValidator) promptOption {
	return func(cfg *promptConfig) {
		cfg.validator = v
	}
}

func WithMaxTries(i int) promptOption {
	return func(cfg *promptConfig) {
		cfg.tries = i
	}
}

// Prompt writes prompt and reads one line from in, repeating until the
// validator accepts it. A final line without a newline is accepted.
func Prompt(in *bufio.Reader, out io.Writer, prompt string, opts ...promptOption) (string, error) {
	config := &promptConfig{}
	for _, opt := range opts {
		opt(config)
	}

	tries := 0
	for {
		_, err := io.WriteString(out, prompt)
		if err != nil {
			return "", err
		}

		line, err := in.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return "", err
		}
		input := strings.TrimRight(line, "\r\n")

		if config.validator != nil {
			ok, msg := config.validator(input)
			if !ok {
				_, _ = io.WriteString(out, msg)

				tries++
				if config.tries > 0 && config.tries == tries {
					_, _ = io.WriteString(out, "Too many tries.\n")
					return "", fmt.Errorf("too many tries")
				}

				continue
			}
		}

		return input, nil
	}
}
