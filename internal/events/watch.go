package events

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/maxkimambo/subflow/internal/logger"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Watch connects to a socket.io endpoint and calls handler for every
// status change it receives. It blocks until ctx is done or the
// connection cannot be established.
func Watch(ctx context.Context, rawURL string, handler Listener) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return fmt.Errorf("URL %q must include scheme and host", rawURL)
	}

	path := parsedURL.Path
	if path == "" || path == "/" {
		path = DefaultSocketPath
	}

	opts := socket.DefaultOptions()
	opts.SetPath(path)
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket("/", opts)
	defer io.Disconnect()

	failed := make(chan error, 1)

	io.On(types.EventName("connect"), func(...any) {
		logger.Op.WithFields(map[string]interface{}{"sid": string(io.Id())}).Info("Connected to workflow events")
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case failed <- err:
		default:
		}
	})
	io.On(types.EventName(StatusChange), func(data ...any) {
		if len(data) == 0 {
			return
		}
		event, err := decodeEvent(data[0])
		if err != nil {
			logger.Op.Warnf("Dropping malformed event: %v", err)
			return
		}
		handler(event)
	})

	io.Connect()

	select {
	case <-ctx.Done():
		return nil
	case err := <-failed:
		return fmt.Errorf("socket.io connection failed: %w", err)
	}
}

// decodeEvent converts a generic socket.io payload back into an Event.
func decodeEvent(raw any) (Event, error) {
	var event Event
	data, err := json.Marshal(raw)
	if err != nil {
		return event, err
	}
	if err := json.Unmarshal(data, &event); err != nil {
		return event, err
	}
	return event, nil
}
