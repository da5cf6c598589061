package repl

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"

	"github.com/lodisdb/lodis/cmd/util"
	"github.com/lodisdb/lodis/lib/command"
)

var (
	// ReplCmd runs an interactive prompt against an in-process store
	ReplCmd = &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive command prompt",
		Long: `Starts an in-process store and reads commands from stdin, one per line
(e.g. "SET user:1 alice 300" or "KEYS user:*"). Type "exit" to leave.`,
		RunE: run,
	}
)

func init() {
	cobra.OnInitialize(util.InitConfig)
	util.SetupStoreFlags(ReplCmd)
}

func run(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	s, err := util.NewStore()
	if err != nil {
		return err
	}
	defer s.Close()

	log := logger.GetLogger("repl")
	log.Infof("store ready (%d databases)", s.NumDatabases())

	executor := command.NewExecutor(s)
	session := s.NewSession()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("lodis[%d]> ", session.Index())
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}

		result, err := executor.Execute(session, tokenize(line))
		if err != nil {
			fmt.Printf("(error) %v\n", err)
			continue
		}
		fmt.Println(result.String())
	}

	return scanner.Err()
}

// tokenize splits a command line into arguments. Double quotes group
// words into a single argument so values may contain spaces.
func tokenize(line string) command.CmdLine {
	var (
		args     command.CmdLine
		current  strings.Builder
		inQuotes bool
		pending  bool
	)

	flush := func() {
		if pending {
			args = append(args, []byte(current.String()))
			current.Reset()
			pending = false
		}
	}

	for i := 0; i < len(line); i++ {
		switch c := line[i]; {
		case c == '"':
			inQuotes = !inQuotes
			pending = true
		case c == ' ' && !inQuotes:
			flush()
		default:
			current.WriteByte(c)
			pending = true
		}
	}
	flush()

	return args
}
