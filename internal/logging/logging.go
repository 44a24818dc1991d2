// Package logging configures the process-wide apex/log logger.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/json"
)

// Setup installs a handler writing to w in the given format ("text" or
// "json") and sets the minimum level.
func Setup(level, format string, w io.Writer) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}

	switch format {
	case "", "text":
		log.SetHandler(NewHandler(w))
	case "json":
		log.SetHandler(json.New(w))
	default:
		return fmt.Errorf("unknown log format %q", format)
	}

	log.SetLevel(lvl)
	return nil
}

// Handler writes one line per entry: level, timestamp, message and the
// entry's fields sorted by name.
type Handler struct {
	mu     sync.Mutex
	Writer io.Writer
	now    func() time.Time
}

var levelToStrings = [...]string{
	log.DebugLevel: "DEBUG",
	log.InfoLevel:  "INFO",
	log.WarnLevel:  "WARN",
	log.ErrorLevel: "ERROR",
	log.FatalLevel: "FATAL",
}

func NewHandler(w io.Writer) *Handler {
	return &Handler{Writer: w, now: time.Now}
}

func (h *Handler) HandleLog(e *log.Entry) error {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)

	var b bytes.Buffer
	_, _ = fmt.Fprintf(&b, "%5s %s %-25s", levelToStrings[e.Level], h.now().Format(time.DateTime), e.Message)
	for _, name := range names {
		_, _ = fmt.Fprintf(&b, " %s=%v", name, e.Fields[name])
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintln(h.Writer, b.String())
	return err
}
