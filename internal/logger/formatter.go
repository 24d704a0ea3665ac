package logger

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

var levelColors = map[logrus.Level]string{
	logrus.ErrorLevel: "\033[31m",
	logrus.WarnLevel:  "\033[33m",
	logrus.InfoLevel:  "\033[36m",
	logrus.DebugLevel: "\033[37m",
}

// CLIFormatter renders entries as plain lines. MessageOnly prints the
// emoji and message with nothing else; otherwise the line carries an
// optional timestamp, the level and sorted fields.
type CLIFormatter struct {
	MessageOnly      bool
	DisableTimestamp bool
	DisableColors    bool
}

func (f *CLIFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer

	if f.MessageOnly {
		if emoji, ok := entry.Data[emojiKey].(string); ok && emoji != "" {
			b.WriteString(emoji)
			b.WriteByte(' ')
		}
		b.WriteString(entry.Message)
		b.WriteByte('\n')
		return b.Bytes(), nil
	}

	if !f.DisableTimestamp {
		b.WriteString(entry.Time.Format("2006-01-02 15:04:05"))
		b.WriteByte(' ')
	}

	level := strings.ToUpper(entry.Level.String())
	if color, ok := levelColors[entry.Level]; ok && !f.DisableColors {
		level = color + level + "\033[0m"
	}
	b.WriteString(level)
	b.WriteString(": ")
	b.WriteString(entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		if k != channelKey && k != emojiKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}
