package whttp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/animesync/animesync/internal/utils"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
)

const USER_AGENT = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"

type WHTTPHeader struct {
	Name  string
	Value string
}

type WHTTPReq struct {
	URL     string
	Method  string
	Body    string
	Headers []WHTTPHeader
}

type WHTTPRes struct {
	StatusCode int
	Headers    http.Header
	BodyString string
}

// Options configures clients built by NewClient.
type Options struct {
	Retries int           // extra attempts after the first one, 0 disables retrying
	Timeout time.Duration // per attempt, 0 means 30s
	Proxy   string
}

var defaultClient = mustClient(Options{})

// NewClient builds a retryable client whose last response is always handed
// back to the caller, even when it has an error status.
func NewClient(opts Options) (*retryablehttp.Client, error) {
	client := retryablehttp.NewClient()
	client.Logger = logrusLogger{utils.Log}
	client.RetryMax = opts.Retries
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client.HTTPClient.Timeout = timeout

	if opts.Proxy != "" {
		proxyURL, err := url.Parse(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		client.HTTPClient.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}
	return client, nil
}

func mustClient(opts Options) *retryablehttp.Client {
	c, err := NewClient(opts)
	if err != nil {
		panic(err)
	}
	return c
}

// SetupProxy routes requests made with the default client through proxy.
func SetupProxy(proxy string) error {
	c, err := NewClient(Options{Proxy: proxy})
	if err != nil {
		return err
	}
	defaultClient = c
	return nil
}

// SendHTTPRequest performs wReq with client, or with the default client when
// client is nil.
func SendHTTPRequest(ctx context.Context, wReq *WHTTPReq, client *retryablehttp.Client) (*WHTTPRes, error) {
	if client == nil {
		client = defaultClient
	}

	var body interface{}
	if wReq.Body != "" {
		body = strings.NewReader(wReq.Body)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, wReq.Method, wReq.URL, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", USER_AGENT)
	req.Header.Set("Accept-Language", "en")
	for _, h := range wReq.Headers {
		req.Header.Set(h.Name, h.Value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &WHTTPRes{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		BodyString: string(bodyBytes),
	}, nil
}

// logrusLogger adapts logrus to retryablehttp.LeveledLogger.
type logrusLogger struct {
	l *logrus.Logger
}

func (l logrusLogger) entry(keysAndValues []interface{}) *logrus.Entry {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return l.l.WithFields(fields)
}

func (l logrusLogger) Error(msg string, keysAndValues ...interface{}) {
	l.entry(keysAndValues).Error(msg)
}

func (l logrusLogger) Info(msg string, keysAndValues ...interface{}) {
	l.entry(keysAndValues).Debug(msg)
}

func (l logrusLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.entry(keysAndValues).Debug(msg)
}

func (l logrusLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.entry(keysAndValues).Warn(msg)
}
