package logger

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"
)

const (
	dataDogQueueSize      = 1024
	dataDogDefaultTimeout = 5 * time.Second
	dataDogSource         = "go"
)

// logsSubmitter is the part of the datadog logs api the writer needs.
type logsSubmitter interface {
	SubmitLog(
		ctx context.Context,
		body []datadogV2.HTTPLogItem,
		o ...datadogV2.SubmitLogOptionalParameters,
	) (interface{}, *http.Response, error)
}

// DataDogWriter ships every log line to the datadog logs intake.
// Writes never block the caller: lines are queued and dropped when the queue is full.
type DataDogWriter struct {
	cfg      DataDog
	env      string
	hostname string
	api      logsSubmitter
	queue    chan []byte
}

// NewDataDogWriter creates a writer and starts its shipping goroutine.
func NewDataDogWriter(cfg Log) (*DataDogWriter, error) {
	if cfg.DataDog.APIKey == "" {
		return nil, ErrDataDogAPIKeyIsEmpty
	}

	api := datadogV2.NewLogsApi(datadog.NewAPIClient(datadog.NewConfiguration()))

	return newDataDogWriter(cfg, logsAPI{api: api}), nil
}

func newDataDogWriter(cfg Log, api logsSubmitter) *DataDogWriter {
	hostname, _ := os.Hostname()

	if cfg.DataDog.ServiceName == "" {
		cfg.DataDog.ServiceName = cfg.ServiceName
	}

	if cfg.DataDog.Timeout == 0 {
		cfg.DataDog.Timeout = dataDogDefaultTimeout
	}

	w := &DataDogWriter{
		cfg:      cfg.DataDog,
		env:      cfg.LogEnv,
		hostname: hostname,
		api:      api,
		queue:    make(chan []byte, dataDogQueueSize),
	}

	go w.run()

	return w
}

// Write implements io.Writer.
func (w *DataDogWriter) Write(p []byte) (int, error) {
	line := make([]byte, len(p))
	copy(line, p)

	select {
	case w.queue <- line:
	default:
	}

	return len(p), nil
}

// Close stops the shipping goroutine after the queue is drained.
func (w *DataDogWriter) Close() error {
	close(w.queue)
	return nil
}

func (w *DataDogWriter) run() {
	for line := range w.queue {
		w.submit(line)
	}
}

func (w *DataDogWriter) submit(line []byte) {
	ctx := context.WithValue(
		context.Background(),
		datadog.ContextAPIKeys,
		map[string]datadog.APIKey{"apiKeyAuth": {Key: w.cfg.APIKey}},
	)

	if w.cfg.Site != "" {
		ctx = context.WithValue(ctx, datadog.ContextServerVariables, map[string]string{"site": w.cfg.Site})
	}

	ctx, cancel := context.WithTimeout(ctx, w.cfg.Timeout)
	defer cancel()

	item := datadogV2.HTTPLogItem{
		Ddsource: datadog.PtrString(dataDogSource),
		Ddtags:   datadog.PtrString("env:" + w.env),
		Hostname: datadog.PtrString(w.hostname),
		Message:  string(line),
		Service:  datadog.PtrString(w.cfg.ServiceName),
	}

	if _, _, err := w.api.SubmitLog(ctx, []datadogV2.HTTPLogItem{item}); err != nil {
		ErrorHandler(err)
	}
}

// logsAPI narrows the generated client to logsSubmitter.
type logsAPI struct {
	api *datadogV2.LogsApi
}

func (l logsAPI) SubmitLog(
	ctx context.Context,
	body []datadogV2.HTTPLogItem,
	o ...datadogV2.SubmitLogOptionalParameters,
) (interface{}, *http.Response, error) {
	return l.api.SubmitLog(ctx, body, o...)
}
