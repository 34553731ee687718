package logger

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	DefaultTimeFormat           = "15:04:05.000"
	DefaultCallerSkipFrameCount = 3 // set to 3 because logger wrapped in logger.go

	UseCaller = false // for developer, if you want to expose line of code of caller
	flagDebug = "debug"
)

var (
	logBuffer = newRingBuffer(logBufferSize)

	// DebugMode flag for determining debug mode
	DebugMode = false
)

func init() {
	zerolog.TimeFieldFormat = DefaultTimeFormat
	zerolog.CallerSkipFrameCount = DefaultCallerSkipFrameCount

	consoleWriter := zerolog.ConsoleWriter{
		Out:        logBuffer,
		NoColor:    !term.IsTerminal(int(os.Stdout.Fd())),
		TimeFormat: DefaultTimeFormat,
	}

	lgr := zerolog.New(zerolog.MultiLevelWriter(consoleWriter))
	if UseCaller {
		lgr = lgr.With().Caller().Logger()
	}

	log.Logger = lgr
}

// PrintLogs prints the buffered diagnostic log when debug mode is on.
func PrintLogs() {
	if !DebugMode {
		return
	}
	logs := logBuffer.String()
	if len(logs) > 0 {
		fmt.Println("\n----- Log -----")
		fmt.Println(logs)
	}
}

// SetDebugMode reads the --debug flag from the command.
func SetDebugMode(cmd *cobra.Command) {
	val, err := cmd.Flags().GetBool(flagDebug)
	if err == nil {
		DebugMode = val
	}
}

// AddLogFlag registers --debug on every given command.
func AddLogFlag(cmd ...*cobra.Command) {
	for _, c := range cmd {
		c.PersistentFlags().Bool(flagDebug, false, "Print the diagnostic log after the run")
	}
}
