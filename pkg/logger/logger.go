package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log является глобальным экземпляром логгера для всего приложения.
var Log *logrus.Logger

// Options - уровень, формат и файл вывода.
type Options struct {
	Level  string // panic..trace, по умолчанию info
	Format string // json | text
	File   string // пусто - stdout
}

// OptionsFromEnv читает LOG_LEVEL, LOG_FORMAT и LOG_FILE.
func OptionsFromEnv() Options {
	return Options{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: os.Getenv("LOG_FORMAT"),
		File:   os.Getenv("LOG_FILE"),
	}
}

// Init инициализирует глобальный логгер из окружения.
// Вызывается один раз при старте (main, TestMain).
func Init() {
	Log = New(OptionsFromEnv(), os.Stdout)
}

// New собирает логгер. Если задан opts.File, пишет в файл (дописывая),
// а out используется только когда файл не открылся.
func New(opts Options, out io.Writer) *logrus.Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	var fileErr error
	if opts.File != "" {
		var f *os.File
		if f, fileErr = openLogFile(opts.File); fileErr == nil {
			out = f
		}
	}
	l.SetOutput(out)

	// В файл цвета не пишем: escape-коды мешают читать лог
	colors := opts.File == "" || fileErr != nil
	l.SetFormatter(formatter(opts.Format, colors))

	if fileErr != nil {
		l.WithError(fileErr).WithField("file", opts.File).Warn("Log file unavailable, writing to stdout")
	}
	return l
}

// RedirectToFile переключает глобальный логгер в файл (TUI занимает экран).
// restore возвращает прежний вывод и формат и закрывает файл.
func RedirectToFile(path string) (restore func(), err error) {
	f, err := openLogFile(path)
	if err != nil {
		return func() {}, err
	}

	prevOut, prevFormatter := Log.Out, Log.Formatter
	format := "text"
	if _, ok := prevFormatter.(*logrus.JSONFormatter); ok {
		format = "json"
	}
	Log.SetOutput(f)
	Log.SetFormatter(formatter(format, false))

	return func() {
		Log.SetOutput(prevOut)
		Log.SetFormatter(prevFormatter)
		_ = f.Close()
	}, nil
}

func openLogFile(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

// "json" - для продакшена и сбора логов, "text" - для разработки.
func formatter(format string, colors bool) logrus.Formatter {
	if strings.ToLower(format) == "json" {
		return &logrus.JSONFormatter{}
	}
	return &logrus.TextFormatter{
		FullTimestamp: true,
		ForceColors:   colors,
		DisableColors: !colors,
	}
}
