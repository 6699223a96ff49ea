package logging

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/markdave123-py/reviewdesk/internal/monitoring"
)

var (
	logger    *logrus.Logger
	rotator   *lumberjack.Logger
	logChan   chan *logrus.Entry
	done      chan struct{}
	once      sync.Once
	logBuffer sync.Pool

	// mu guards closed; senders hold it shared so Close never races a send.
	mu     sync.RWMutex
	closed bool
)

const (
	logQueueSize = 10000
)

// Options configures the process logger.
type Options struct {
	File  string // rotated log file; empty logs to stdout only
	Level string // logrus level name
}

// Init sets up the shared logger. Only the first call has an effect.
func Init(opts Options) {
	once.Do(func() {
		logger, rotator = newLogger(opts)

		logChan = make(chan *logrus.Entry, logQueueSize)
		done = make(chan struct{})
		logBuffer = sync.Pool{
			New: func() interface{} {
				return new(logrus.Entry)
			},
		}

		go func() {
			defer close(done)
			consumeLogs()
		}()
	})
}

func newLogger(opts Options) (*logrus.Logger, *lumberjack.Logger) {
	l := logrus.New()

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	var (
		out io.Writer = os.Stdout
		rot *lumberjack.Logger
	)
	if opts.File != "" {
		rot = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     7, // days
			Compress:   true,
		}
		out = io.MultiWriter(os.Stdout, rot)
	}
	l.SetOutput(out)

	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		CallerPrettyfier: func(f *runtime.Frame) (string, string) {
			filename := strings.Split(f.File, "/")
			return fmt.Sprintf("%s()", f.Function), fmt.Sprintf("%s:%d", filename[len(filename)-1], f.Line)
		},
	})
	return l, rot
}

func consumeLogs() {
	for entry := range logChan {
		monitoring.LogQueueSize.Set(float64(len(logChan)))
		entry.Logger.WithFields(entry.Data).Log(entry.Level, entry.Message)
		logBuffer.Put(entry)
	}
}

// Close drains queued entries, waits for the writer and closes the log file.
// Entries logged afterwards are written synchronously.
func Close() {
	mu.Lock()
	if logChan == nil || closed {
		mu.Unlock()
		return
	}
	closed = true
	close(logChan)
	mu.Unlock()

	<-done
	monitoring.LogQueueSize.Set(0)
	if rotator != nil {
		_ = rotator.Close()
	}
}

// Log queues an entry for the background writer. Entries are dropped when the
// queue is full. Before Init or after Close it writes synchronously.
func Log(level logrus.Level, message string, fields logrus.Fields) {
	mu.RLock()
	defer mu.RUnlock()

	if logger == nil {
		logrus.StandardLogger().WithFields(fields).Log(level, message)
		return
	}
	if closed {
		logger.WithFields(fields).Log(level, message)
		return
	}

	entry := logBuffer.Get().(*logrus.Entry)
	entry.Logger = logger
	entry.Level = level
	entry.Message = message
	entry.Time = time.Now()
	entry.Data = fields

	if !enqueue(logChan, entry) {
		logBuffer.Put(entry)
	}
}

// enqueue never blocks; a full queue counts the entry as dropped.
func enqueue(ch chan<- *logrus.Entry, entry *logrus.Entry) bool {
	select {
	case ch <- entry:
		return true
	default:
		monitoring.LogsDroppedTotal.Inc()
		return false
	}
}

func Debug(message string, fields logrus.Fields) {
	Log(logrus.DebugLevel, message, fields)
}

func Info(message string, fields logrus.Fields) {
	Log(logrus.InfoLevel, message, fields)
}

func Warn(message string, fields logrus.Fields) {
	Log(logrus.WarnLevel, message, fields)
}

func Error(message string, fields logrus.Fields) {
	Log(logrus.ErrorLevel, message, fields)
}
