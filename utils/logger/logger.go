package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/datazip-inc/greenhouse-tap/constants"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger zerolog.Logger

	outputMu sync.Mutex
	output   io.Writer = os.Stdout
)

func init() {
	// usable before Init(), e.g. in tests
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
}

// Init sets up the global logger. Console output goes to stderr since stdout
// carries tap messages; a rotated copy lands in CONFIG_FOLDER/logs unless NO_SAVE.
func Init() {
	level, err := zerolog.ParseLevel(strings.ToLower(viper.GetString(constants.LogLevel)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	writers := []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}}

	configFolder := viper.GetString(constants.ConfigFolder)
	if configFolder != "" && !viper.GetBool(constants.NoSave) {
		writers = append(writers, &lumberjack.Logger{
			Filename:   filepath.Join(configFolder, "logs", fmt.Sprintf("sync_%s.log", time.Now().UTC().Format("2006-01-02_15-04-05"))),
			MaxSize:    100, // megabytes
			MaxBackups: 5,
			MaxAge:     7, // days
			Compress:   true,
		})
	}

	logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()
}

func Info(v ...any) {
	logger.Info().Msg(fmt.Sprint(v...))
}

func Infof(format string, v ...any) {
	logger.Info().Msgf(format, v...)
}

func Debug(v ...any) {
	logger.Debug().Msg(fmt.Sprint(v...))
}

func Debugf(format string, v ...any) {
	logger.Debug().Msgf(format, v...)
}

func Warn(v ...any) {
	logger.Warn().Msg(fmt.Sprint(v...))
}

func Warnf(format string, v ...any) {
	logger.Warn().Msgf(format, v...)
}

func Error(v ...any) {
	logger.Error().Msg(fmt.Sprint(v...))
}

func Errorf(format string, v ...any) {
	logger.Error().Msgf(format, v...)
}

func Fatal(v ...any) {
	logger.Fatal().Msg(fmt.Sprint(v...))
}

func Fatalf(format string, v ...any) {
	logger.Fatal().Msgf(format, v...)
}

// LogState persists the state at STATE_PATH unless NO_SAVE
func LogState(state any) error {
	if viper.GetBool(constants.NoSave) {
		return nil
	}

	if err := writeJSON(viper.GetString(constants.StatePath), state); err != nil {
		return fmt.Errorf("failed to persist state: %s", err)
	}

	return nil
}

// FileLogger writes content as JSON into CONFIG_FOLDER/<fileName><fileExtension>
func FileLogger(content any, fileName, fileExtension string) error {
	if viper.GetBool(constants.NoSave) {
		return nil
	}

	configFolder := viper.GetString(constants.ConfigFolder)
	if configFolder == "" {
		return nil
	}

	return writeJSON(filepath.Join(configFolder, fileName+fileExtension), content)
}

func writeJSON(path string, content any) error {
	if path == "" {
		return nil
	}

	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %T: %s", content, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory for %s: %s", path, err)
	}

	return os.WriteFile(path, data, 0o600)
}

// SetOutput replaces the writer protocol messages are printed to
func SetOutput(w io.Writer) {
	outputMu.Lock()
	defer outputMu.Unlock()
	output = w
}

// Output prints one protocol message as a single JSON line on stdout
func Output(message any) {
	data, err := json.Marshal(message)
	if err != nil {
		Errorf("failed to marshal %T: %s", message, err)
		return
	}

	outputMu.Lock()
	defer outputMu.Unlock()
	if _, err := output.Write(append(data, '\n')); err != nil {
		Errorf("failed to write message: %s", err)
	}
}
