package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	bplus "myjql/bplustree"
	"myjql/executor"
	"myjql/logger"
	"myjql/settings"
)

// inputBufferSize is the longest accepted line, excluding the newline.
const inputBufferSize = 31

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		fmt.Println("Must supply a database filename.")
		return 1
	}

	cfg := settings.FromEnv()
	log := logger.New(cfg.Logger)
	defer log.Sync()

	table, err := bplus.Open(os.Args[1], log)
	if err != nil {
		fmt.Println(err)
		return 1
	}

	vm, err := executor.NewVM(table, os.Stdout, log)
	if err != nil {
		fmt.Println(err)
		table.Close()
		return 1
	}
	defer vm.Close()

	bye := func() int {
		fmt.Println("bye~")
		if err := table.Close(); err != nil {
			fmt.Println(err)
			return 1
		}
		return 0
	}

	// SIGINT is a clean shutdown: flush everything and leave.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	go func() {
		<-sigs
		fmt.Println()
		os.Exit(bye())
	}()

	log.Info("session started", zap.String("db", os.Args[1]))

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("myjql> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return bye()
		}
		line = strings.TrimSuffix(line, "\n")
		if len(line) > inputBufferSize {
			fmt.Println("Input is too long.")
			continue
		}

		if strings.HasPrefix(line, ".") {
			err := vm.ExecuteMeta(line)
			if err == nil {
				continue
			}
			if errors.Is(err, executor.ErrExit) {
				return bye()
			}
			return die(log, table, err)
		}

		stmt, err := executor.Prepare(line)
		if err != nil {
			printPrepareError(line, err)
			continue
		}
		if err := vm.Execute(stmt); err != nil {
			return die(log, table, err)
		}
	}
}

func printPrepareError(line string, err error) {
	switch {
	case errors.Is(err, executor.ErrEmptyStatement):
		// nothing to do
	case errors.Is(err, executor.ErrNegativeValue):
		fmt.Println("Column `a` must be positive.")
	case errors.Is(err, executor.ErrStringTooLong):
		fmt.Println("String for column `b` is too long.")
	case errors.Is(err, executor.ErrSyntax):
		fmt.Println("Syntax error. Could not parse statement.")
	case errors.Is(err, executor.ErrUnrecognizedStatement):
		fmt.Printf("Unrecognized keyword at start of '%s'.\n", line)
	default:
		fmt.Println(err)
	}
}

// die reports a fatal engine error and still attempts the clean flush+close.
func die(log *zap.Logger, table *bplus.Table, err error) int {
	fmt.Println(err)
	log.Error("fatal error", zap.Error(err))
	if cerr := table.Close(); cerr != nil {
		fmt.Println(cerr)
	}
	return 1
}
