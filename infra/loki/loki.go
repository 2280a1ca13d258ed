package loki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	flushThreshold = 20
	flushInterval  = time.Second
)

// Writer buffers log lines and ships them to Loki's push API under one stream.
type Writer struct {
	url    string
	labels map[string]string
	client *http.Client
	mu     sync.Mutex
	buf    [][2]string
	ticker *time.Ticker
	done   chan struct{}
	closed sync.Once
}

type pushRequest struct {
	Streams []stream `json:"streams"`
}

type stream struct {
	Stream map[string]string `json:"stream"`
	Values [][2]string       `json:"values"`
}

// NewWriter returns a Writer pushing to baseURL (e.g. http://loki:3100).
// It returns nil when baseURL is empty.
func NewWriter(baseURL string, labels map[string]string) *Writer {
	if baseURL == "" {
		return nil
	}
	copied := make(map[string]string, len(labels))
	for k, v := range labels {
		copied[k] = v
	}
	w := &Writer{
		url:    strings.TrimSuffix(baseURL, "/") + "/loki/api/v1/push",
		labels: copied,
		client: &http.Client{Timeout: 5 * time.Second},
		buf:    make([][2]string, 0, 64),
		ticker: time.NewTicker(flushInterval),
		done:   make(chan struct{}),
	}
	go w.flushLoop()
	return w
}

// Write implements io.Writer; every non-empty line becomes one entry.
func (w *Writer) Write(p []byte) (int, error) {
	ts := strconv.FormatInt(time.Now().UnixNano(), 10)
	w.mu.Lock()
	for _, line := range bytes.Split(p, []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		w.buf = append(w.buf, [2]string{ts, string(line)})
	}
	needFlush := len(w.buf) >= flushThreshold
	w.mu.Unlock()
	if needFlush {
		go w.flush()
	}
	return len(p), nil
}

func (w *Writer) flushLoop() {
	for {
		select {
		case <-w.done:
			return
		case <-w.ticker.C:
			w.flush()
		}
	}
}

func (w *Writer) flush() error {
	w.mu.Lock()
	if len(w.buf) == 0 {
		w.mu.Unlock()
		return nil
	}
	entries := w.buf
	w.buf = make([][2]string, 0, 64)
	w.mu.Unlock()

	raw, err := json.Marshal(pushRequest{Streams: []stream{{Stream: w.labels, Values: entries}}})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("loki push: status %d", resp.StatusCode)
	}
	return nil
}

// Close stops the background flusher and sends what is left.
func (w *Writer) Close() error {
	var err error
	w.closed.Do(func() {
		w.ticker.Stop()
		close(w.done)
		err = w.flush()
	})
	return err
}
