package ui

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
)

//go:generate go tool github.com/dmarkham/enumer -trimprefix=Level -type=LogLevel -output loglevel_enums.go

func init() {
	pterm.PrintDebugMessages = true
}

type LogLevel int

const (
	LevelTrace LogLevel = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
	LevelPanic
)

var (
	outputMutex sync.Mutex

	logLevel    = LevelInfo
	clearneeded bool

	Zerotime  bool
	starttime = time.Now()

	console io.Writer = colorable.NewColorableStdout()

	// log file receives structured JSON lines
	logfile       *os.File
	filelogger    zerolog.Logger
	logfileinit   bool // stop buffering early output once set
	logfilebuffer *bytes.Buffer
	logfilelevel  = LevelInfo
)

func SetLoglevel(i LogLevel) {
	logLevel = i
}

func GetLoglevel() LogLevel {
	return logLevel
}

// SetOutput redirects console output, mainly for tests
func SetOutput(w io.Writer) {
	outputMutex.Lock()
	console = w
	outputMutex.Unlock()
}

func zerologLevel(ll LogLevel) zerolog.Level {
	switch ll {
	case LevelTrace:
		return zerolog.TraceLevel
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	case LevelFatal:
		return zerolog.FatalLevel
	}
	return zerolog.PanicLevel
}

// SetLogFile starts logging to path at the given level. Output logged before
// the first call is buffered and flushed into the file. An empty path disables
// file logging and drops the buffer.
func SetLogFile(path string, i LogLevel) error {
	outputMutex.Lock()
	defer outputMutex.Unlock()

	logfileinit = true

	if logfile != nil {
		logfile.Close()
		logfile = nil
	}

	if path == "" {
		logfilebuffer = nil
		return nil
	}

	os.MkdirAll(filepath.Dir(path), 0755)

	var err error
	logfile, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open logfile %s: %s", path, err)
	}

	logfilelevel = i
	filelogger = zerolog.New(logfile).Level(zerologLevel(i)).With().Timestamp().Logger()

	if logfilebuffer != nil && logfilebuffer.Len() > 0 {
		io.Copy(logfile, logfilebuffer)
	}
	logfilebuffer = nil

	return nil
}

type Logger struct {
	ll    LogLevel
	pterm pterm.PrefixPrinter
}

func (t Logger) Msgf(format string, args ...any) {
	consoleWanted := logLevel <= t.ll
	fileWanted := !logfileinit || (logfile != nil && logfilelevel <= t.ll)
	if !consoleWanted && !fileWanted && t.ll < LevelFatal {
		return
	}

	message := fmt.Sprintf(format, args...)

	outputMutex.Lock()

	var timetext string
	if Zerotime {
		elapsed := time.Since(starttime)
		timetext = fmt.Sprintf("%02d:%02d:%02d.%03d", int(elapsed.Hours()), int(elapsed.Minutes())%60, int(elapsed.Seconds())%60, elapsed.Milliseconds()%1000)
	} else {
		timetext = time.Now().Format("15:04:05.000")
	}

	if logfileinit {
		if logfile != nil && logfilelevel <= t.ll {
			filelogger.WithLevel(zerologLevel(t.ll)).Str("elapsed", time.Since(starttime).String()).Msg(message)
		}
	} else if consoleWanted {
		if logfilebuffer == nil {
			logfilebuffer = bytes.NewBuffer(nil)
		}
		buffered := zerolog.New(logfilebuffer).With().Timestamp().Logger()
		buffered.WithLevel(zerologLevel(t.ll)).Msg(message)
	}

	if consoleWanted {
		if clearneeded {
			pterm.Fprinto(console, strings.Repeat(" ", pterm.GetTerminalWidth()))
			pterm.Fprinto(console)
			clearneeded = false
		}
		tprefix := pterm.DefaultBasicText.Sprint(timetext + " ")
		pterm.Fprint(console, tprefix+t.pterm.Sprintfln("%s", message))
	}

	if t.ll == LevelFatal {
		if logfile != nil {
			logfile.Close()
		}
		outputMutex.Unlock()
		os.Exit(1)
	}
	outputMutex.Unlock()

	if t.ll == LevelPanic {
		panic(message)
	}
}

func (t Logger) Msg(msg string) Logger {
	t.Msgf("%s", msg)
	return t
}

func (t Logger) Err(e error) Logger {
	if e != nil {
		t.Msgf("Error: %v", e)
	}
	return t
}

func Trace() Logger {
	return Logger{
		LevelTrace,
		pterm.PrefixPrinter{
			MessageStyle: &pterm.ThemeDefault.InfoMessageStyle,
			Prefix: pterm.Prefix{
				Style: &pterm.Style{pterm.FgCyan},
				Text:  "TRACE",
			},
		},
	}
}

func Debug() Logger {
	return Logger{LevelDebug, pterm.Debug}
}

func Info() Logger {
	return Logger{
		LevelInfo,
		pterm.PrefixPrinter{
			MessageStyle: &pterm.ThemeDefault.InfoMessageStyle,
			Prefix: pterm.Prefix{
				Style: &pterm.ThemeDefault.InfoPrefixStyle,
				Text:  "INFORMA",
			},
		},
	}
}

func Warn() Logger {
	return Logger{
		LevelWarn,
		pterm.PrefixPrinter{
			MessageStyle: &pterm.ThemeDefault.WarningMessageStyle,
			Prefix: pterm.Prefix{
				Style: &pterm.ThemeDefault.WarningPrefixStyle,
				Text:  "WARNING",
			},
		},
	}
}

func Error() Logger {
	return Logger{LevelError, pterm.Error}
}

func Fatal() Logger {
	return Logger{LevelFatal, pterm.Fatal}
}
