package loggers

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/log"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/axiomesh/axiom-da-node/pkg/repo"
)

const (
	App        = "app"
	API        = "api"
	DAClient   = "daclient"
	Executor   = "executor"
	Settlement = "settlement"
	Replica    = "replica"
	Sequencer  = "sequencer"
	Storage    = "storage"
	BatchAuth  = "batchauth"
)

var w = &LoggerWrapper{
	loggers: map[string]*logrus.Entry{
		App:        NewWithModule(App),
		API:        NewWithModule(API),
		DAClient:   NewWithModule(DAClient),
		Executor:   NewWithModule(Executor),
		Settlement: NewWithModule(Settlement),
		Replica:    NewWithModule(Replica),
		Sequencer:  NewWithModule(Sequencer),
		Storage:    NewWithModule(Storage),
		BatchAuth:  NewWithModule(BatchAuth),
	},
}

type LoggerWrapper struct {
	loggers map[string]*logrus.Entry
}

// NewWithModule returns a standalone logger tagged with the module name.
func NewWithModule(name string) *logrus.Entry {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000",
	})
	return l.WithField("module", name)
}

func InitializeEthLog(logger *logrus.Entry) {
	log.SetDefault(log.NewLogger(&LogrusHandler{
		Logger: logger,
		Level:  levelMapReverse[logger.Logger.Level],
	}))
}

func Initialize(ctx context.Context, rep *repo.Repo, persist bool) error {
	config := rep.Config

	var out io.Writer = os.Stdout
	if persist {
		fileLogger := &lumberjack.Logger{
			Filename: filepath.Join(rep.RepoRoot, repo.LogsDirName, config.Log.Filename+".log"),
			MaxSize:  int(config.Log.MaxSize),
			MaxAge:   int(config.Log.MaxAge),
			Compress: config.Log.EnableCompress,
		}
		go func() {
			<-ctx.Done()
			_ = fileLogger.Close()
		}()
		out = io.MultiWriter(os.Stdout, fileLogger)
	}

	formatter := &logrus.TextFormatter{
		ForceColors:      config.Log.EnableColor,
		DisableColors:    !config.Log.EnableColor,
		DisableTimestamp: config.Log.DisableTimestamp,
		FullTimestamp:    true,
		TimestampFormat:  "2006-01-02T15:04:05.000",
	}

	levels := map[string]string{
		App:        config.Log.Level,
		API:        config.Log.Module.API,
		DAClient:   config.Log.Module.DAClient,
		Executor:   config.Log.Module.Executor,
		Settlement: config.Log.Module.Settlement,
		Replica:    config.Log.Module.Replica,
		Sequencer:  config.Log.Module.Sequencer,
		Storage:    config.Log.Module.Storage,
		BatchAuth:  config.Log.Module.BatchAuth,
	}

	m := make(map[string]*logrus.Entry, len(levels))
	for name, level := range levels {
		l := logrus.New()
		l.SetOutput(out)
		l.SetFormatter(formatter)
		l.SetReportCaller(config.Log.ReportCaller)
		l.SetLevel(ParseLevel(level))
		m[name] = l.WithField("module", name)
	}

	w = &LoggerWrapper{loggers: m}
	InitializeEthLog(m[API])
	return nil
}

func ParseLevel(level string) logrus.Level {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

func Logger(name string) logrus.FieldLogger {
	return w.loggers[name]
}
