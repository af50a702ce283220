package logger

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	FATAL
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
	FATAL: "FATAL",
}

var levelColors = map[Level]*color.Color{
	DEBUG: color.New(color.FgCyan),
	INFO:  color.New(color.FgGreen),
	WARN:  color.New(color.FgYellow),
	ERROR: color.New(color.FgRed),
	FATAL: color.New(color.FgRed, color.Bold),
}

type entry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Category  string `json:"category"`
	Message   string `json:"message"`
}

// Logger writes colored category-tagged lines to the terminal and, when a
// file sink could be opened, JSON lines to logs/tombola-<date>.log.
type Logger struct {
	logFile *os.File
}

func NewLogger() *Logger {
	l := &Logger{}

	if err := os.MkdirAll("logs", 0755); err != nil {
		fmt.Fprintf(os.Stderr, "logger: cannot create logs directory: %v\n", err)
		return l
	}

	name := fmt.Sprintf("logs/tombola-%s.log", time.Now().Format("2006-01-02"))
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: cannot open %s: %v\n", name, err)
		return l
	}
	l.logFile = f

	l.Info("LOGGER", fmt.Sprintf("logging to %s", name))
	return l
}

func (l *Logger) log(level Level, category, message string) {
	e := entry{
		Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		Level:     levelNames[level],
		Category:  strings.ToUpper(category),
		Message:   message,
	}

	timeStr := color.New(color.FgBlue).Sprint(e.Timestamp[11:19])
	levelStr := levelColors[level].Sprintf("%-5s", e.Level)
	categoryStr := levelColors[level].Add(color.Bold).Sprintf("[%-10s]", e.Category)
	fmt.Printf("%s %s %s %s\n", timeStr, levelStr, categoryStr, e.Message)

	if l.logFile != nil {
		line, _ := json.Marshal(e)
		l.logFile.Write(append(line, '\n'))
	}
}

func (l *Logger) Debug(category, message string) { l.log(DEBUG, category, message) }
func (l *Logger) Info(category, message string)  { l.log(INFO, category, message) }
func (l *Logger) Warn(category, message string)  { l.log(WARN, category, message) }
func (l *Logger) Error(category, message string) { l.log(ERROR, category, message) }

func (l *Logger) Fatal(category, message string) {
	l.log(FATAL, category, message)
	os.Exit(1)
}

func (l *Logger) Close() {
	if l.logFile != nil {
		l.logFile.Close()
	}
}
