package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
)

type Command = cli.Command

type Flag = cli.Flag
type BoolFlag = cli.BoolFlag
type IntFlag = cli.IntFlag
type StringFlag = cli.StringFlag
type StringSliceFlag = cli.StringSliceFlag

func ShowAppHelp(cmd *Command) error {
	return cli.ShowAppHelp(cmd)
}

func Info(args ...any) {
	fmt.Fprintln(os.Stderr, args...)
}

func Infof(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

func Error(args ...any) {
	fmt.Fprintln(os.Stderr, args...)
}

func Fatal(args ...any) {
	Error(args...)
	os.Exit(1)
}

func Confirm(label string, placeholder bool) (bool, error) {
	choices := "Y/n"

	if !placeholder {
		choices = "y/N"
	}

	r := bufio.NewReader(os.Stdin)

	var s string

	for {
		fmt.Fprintf(os.Stderr, "%s (%s) ", label, choices)
		s, _ = r.ReadString('\n')
		s = strings.TrimSpace(s)

		if s == "" {
			return placeholder, nil
		}

		s = strings.ToLower(s)

		if s == "y" || s == "yes" {
			return true, nil
		}

		if s == "n" || s == "no" {
			return false, nil
		}
	}
}
