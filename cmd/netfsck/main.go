// netfsck CLI - runs netfsck programs
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/netfsck/compiler"
	"github.com/chazu/netfsck/server"
	"github.com/chazu/netfsck/vm"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose logging (connections, network failures)")
	configPath := flag.String("config", "", "Path to netfsck.toml (default: search upward from the program)")
	tapeSize := flag.Int("tape", 0, "Tape size in cells (overrides the positional tape_size)")
	timeoutMS := flag.Int("timeout", 0, "Initial connection timeout in ms; <= 0 disables it")
	fmtMode := flag.Bool("fmt", false, "Print the program in canonical form without comments and exit")
	disasmMode := flag.Bool("disasm", false, "Print an instruction listing and exit")
	output := flag.String("o", "", "Compile to an image file (.nfc) instead of running")
	lspMode := flag.Bool("lsp", false, "Start the language server on stdio")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: netfsck [options] <path> [tape_size]\n\n")
		fmt.Fprintf(os.Stderr, "Runs a netfsck program from a source file or a compiled %s image.\n\n", vm.ImageExt)
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  netfsck hello.nf              # Run with a 30000 cell tape\n")
		fmt.Fprintf(os.Stderr, "  netfsck client.nf 512         # Run with a 512 cell tape\n")
		fmt.Fprintf(os.Stderr, "  netfsck -o client.nfc client.nf  # Compile to an image\n")
		fmt.Fprintf(os.Stderr, "  netfsck -disasm client.nfc    # List a compiled image\n")
		fmt.Fprintf(os.Stderr, "  netfsck -lsp                  # Language server for editors\n")
	}
	flag.Parse()

	if *lspMode {
		commonlog.Configure(verbosityFor(*verbose, 0), nil)
		if err := server.NewLSP().Run(); err != nil {
			fatal(err)
		}
		return
	}

	args := flag.Args()
	if len(args) < 1 || len(args) > 2 {
		flag.Usage()
		os.Exit(2)
	}
	path := args[0]

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	m, err := loadManifest(*configPath, path)
	if err != nil {
		fatal(err)
	}

	cfg := settings{Manifest: m}
	if len(args) == 2 {
		cfg.Positional = args[1]
	}
	if set["tape"] {
		cfg.TapeFlag = tapeSize
	}
	if set["timeout"] {
		cfg.TimeoutFlag = timeoutMS
	}
	cfg.Verbose = *verbose

	opts, err := cfg.resolve()
	if err != nil {
		fatal(err)
	}

	commonlog.Configure(opts.Verbosity, opts.LogFile)
	log := commonlog.GetLogger("netfsck.cli")
	if m.Path != "" {
		log.Info("loaded config", "path", m.Path)
	}

	program, err := loadProgram(path)
	if err != nil {
		fatal(err)
	}

	switch {
	case *fmtMode:
		fmt.Println(compiler.Render(program))
		return
	case *disasmMode:
		fmt.Print(compiler.DisassembleWithName(program, filepath.Base(path)))
		return
	case *output != "":
		if err := vm.SaveImage(*output, program); err != nil {
			fatal(err)
		}
		log.Info("wrote image", "path", *output, "instructions", compiler.Count(program))
		return
	}

	out := bufio.NewWriter(os.Stdout)
	env, err := vm.New(opts.TapeSize,
		vm.WithOutput(out),
		vm.WithTimeout(opts.Timeout),
	)
	if err != nil {
		fatal(err)
	}

	log.Info("running", "path", path, "run", env.ID(), "tape", opts.TapeSize, "timeout", opts.Timeout.String())
	runErr := env.Execute(program)
	out.Flush()
	if err := env.Close(); err != nil {
		log.Debug("close failed", "error", err.Error())
	}
	if runErr != nil {
		fatal(runErr)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// loadProgram reads path as a compiled image when it carries the image
// magic or extension, and as source text otherwise.
func loadProgram(path string) ([]compiler.Instruction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	if strings.HasSuffix(path, vm.ImageExt) || vm.IsImage(data) {
		program, err := vm.DecodeImage(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return program, nil
	}

	program, err := compiler.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return program, nil
}
