package logger

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

type sink struct {
	formatter logrus.Formatter
	writer    io.Writer
}

// channelRouter is a logrus hook that formats and writes each entry with
// the sink of its channel. Entries without a channel go to the op sink.
type channelRouter struct {
	mu   sync.RWMutex
	user sink
	op   sink
}

func newChannelRouter() *channelRouter {
	return &channelRouter{
		user: sink{formatter: &CLIFormatter{MessageOnly: true}, writer: os.Stdout},
		op:   sink{formatter: &CLIFormatter{DisableTimestamp: true}, writer: os.Stderr},
	}
}

func (r *channelRouter) sinks() (sink, sink) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.user, r.op
}

func (r *channelRouter) set(user, op sink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.user, r.op = user, op
}

func (r *channelRouter) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (r *channelRouter) Fire(entry *logrus.Entry) error {
	r.mu.RLock()
	s := r.op
	if channel, _ := entry.Data[channelKey].(string); channel == string(ChannelUser) {
		s = r.user
	}
	r.mu.RUnlock()

	b, err := s.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = s.writer.Write(b)
	return err
}
