// Command quizctl validates, exports and plays quiz documents locally.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quizflow/internal/auth"
	"github.com/gokatarajesh/quizflow/internal/quiz"
)

const usage = `usage: quizctl [-max-bytes N] [-v] <command> <file>
       quizctl hash-password < password.txt

commands:
  validate       print validation errors and warnings; exit 1 on errors
  export         print the canonical JSON document
  play           answer the quiz interactively on stdin
  hash-password  print a bcrypt hash for AUTHOR_PASSWORD_HASH
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("quizctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	var (
		maxBytes = fs.Int64("max-bytes", quiz.DefaultMaxBytes, "Reject documents larger than this")
		verbose  = fs.Bool("v", false, "Log navigation diagnostics to stderr")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 1 && fs.Arg(0) == "hash-password" {
		return hashPassword(stdin, stdout, stderr)
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return 2
	}

	level := zerolog.WarnLevel
	if !*verbose {
		level = zerolog.Disabled
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: stderr, NoColor: true}).Level(level)

	q, err := quiz.LoadFile(fs.Arg(1), *maxBytes)
	if err != nil {
		fmt.Fprintf(stderr, "quizctl: %v\n", err)
		return 1
	}

	switch fs.Arg(0) {
	case "validate":
		return validate(q, stdout)
	case "export":
		data, err := quiz.Marshal(q)
		if err != nil {
			fmt.Fprintf(stderr, "quizctl: %v\n", err)
			return 1
		}
		stdout.Write(append(data, '\n'))
		return 0
	case "play":
		if err := play(q, quiz.NewNavigator(quiz.NavigatorOptions{}, logger), stdin, stdout); err != nil {
			if errors.Is(err, errQuit) {
				return 0
			}
			fmt.Fprintf(stderr, "quizctl: %v\n", err)
			return 1
		}
		return 0
	default:
		fs.Usage()
		return 2
	}
}

func validate(q *quiz.Quiz, out io.Writer) int {
	report := quiz.Validate(q)
	for _, e := range report.Errors {
		fmt.Fprintf(out, "error: %s\n", e)
	}
	for _, w := range report.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}
	if !report.Valid() {
		return 1
	}
	fmt.Fprintf(out, "ok: %d sections, %d questions\n", len(q.Sections), q.QuestionCount())
	return 0
}

func hashPassword(in io.Reader, out, errOut io.Writer) int {
	raw, err := io.ReadAll(io.LimitReader(in, 1024))
	if err != nil {
		fmt.Fprintf(errOut, "quizctl: %v\n", err)
		return 1
	}
	hash, err := auth.HashPassword(strings.TrimRight(string(raw), "\r\n"))
	if err != nil {
		fmt.Fprintf(errOut, "quizctl: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, hash)
	return 0
}
