package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/srcline/cpre"
)

// stringList collects repeatable flag values.
type stringList []string

func (l *stringList) String() string     { return strings.Join(*l, ",") }
func (l *stringList) Set(v string) error { *l = append(*l, v); return nil }

type config struct {
	defines     []string
	undefines   []string
	includeDirs []string
	output      string
	tokens      bool
	check       bool
}

// envIncludePath reads CPRE_INCLUDE_PATH, a list of include directories
// separated by the platform's path list separator.
func envIncludePath() []string {
	v := viper.New()
	v.SetEnvPrefix("cpre")
	v.AutomaticEnv()
	path := v.GetString("include_path")
	if path == "" {
		return nil
	}
	return strings.Split(path, string(os.PathListSeparator))
}

func run(cfg config, paths []string, stdin io.Reader, stdout io.Writer) error {
	opts := cpre.Options{
		Defines:     cfg.defines,
		Undefines:   cfg.undefines,
		IncludeDirs: cfg.includeDirs,
	}

	type input struct {
		path string // empty for stdin
		src  string
	}
	var inputs []input
	if len(paths) == 0 {
		src, err := io.ReadAll(stdin)
		if err != nil {
			return err
		}
		inputs = append(inputs, input{src: string(src)})
	}
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		inputs = append(inputs, input{path: path, src: string(src)})
	}

	for _, in := range inputs {
		switch {
		case cfg.tokens:
			for _, tok := range cpre.Tokenize(in.src) {
				fmt.Fprintf(stdout, "%d:%d\t%s\t%s\n", tok.Line, tok.Col, tok.Kind, tok.Text)
			}
		case cfg.check:
			var err error
			if in.path != "" {
				_, err = cpre.ExpandFile(in.path, opts)
			} else {
				err = cpre.ProcessWith(in.src, opts)
			}
			if err != nil {
				return err
			}
		default:
			var out string
			var err error
			if in.path != "" {
				out, err = cpre.ExpandFile(in.path, opts)
			} else {
				out, err = cpre.ExpandWith(in.src, opts)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, out)
		}
	}
	return nil
}

func main() {
	var cfg config
	var defines, undefines, includeDirs stringList
	flag.Var(&defines, "D", "define an object macro, NAME or NAME=VALUE (repeatable)")
	flag.Var(&undefines, "U", "undefine a macro (repeatable)")
	flag.Var(&includeDirs, "I", "add a directory to the include search path (repeatable)")
	flag.StringVar(&cfg.output, "o", "", "write output to file instead of stdout")
	flag.BoolVar(&cfg.tokens, "tokens", false, "dump the token stream instead of expanding")
	flag.BoolVar(&cfg.check, "check", false, "validate directives without producing output")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if !*verbose {
		logger = logger.Level(zerolog.InfoLevel)
	}

	cfg.defines = defines
	cfg.undefines = undefines
	cfg.includeDirs = append(includeDirs, envIncludePath()...)
	logger.Debug().
		Strs("defines", cfg.defines).
		Strs("include_dirs", cfg.includeDirs).
		Msg("starting")

	stdout := io.Writer(os.Stdout)
	if cfg.output != "" {
		f, err := os.Create(cfg.output)
		if err != nil {
			logger.Fatal().Err(err).Msg("cannot create output file")
		}
		defer f.Close()
		stdout = f
	}

	if err := run(cfg, flag.Args(), os.Stdin, stdout); err != nil {
		logger.Fatal().Err(err).Msg("preprocessing failed")
	}
}
