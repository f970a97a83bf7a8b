package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gclaussn/go-bpmn-history/history"
	"github.com/gclaussn/go-bpmn-history/http/common"
)

// A Client provides read access to the history of a remote store.
type Client interface {
	history.Service

	// Shutdown closes idle connections of the underlying HTTP client.
	Shutdown()
}

func New(url string, authorization string, customizers ...func(*Options)) (Client, error) {
	if url == "" {
		return nil, errors.New("URL is empty")
	}
	if authorization == "" {
		return nil, errors.New("authorization is empty")
	}

	options := NewOptions()
	for _, customizer := range customizers {
		customizer(&options)
	}

	if err := options.Validate(); err != nil {
		return nil, err
	}

	httpClient := http.Client{}

	if options.Configure != nil {
		options.Configure(&httpClient)
	}

	c := client{
		httpClient:    &httpClient,
		url:           strings.TrimSuffix(url, "/"),
		authorization: authorization,
		options:       options,
	}

	c.Queries = history.Queries{Executor: &c}

	return &c, nil
}

func NewOptions() Options {
	return Options{
		Timeout: 40 * time.Second,
	}
}

type Options struct {
	Timeout time.Duration // Time limit for requests made by the HTTP client.

	// OnRequest is an optional function that accepts a [*http.Request]. It is called before a HTTP request is send.
	OnRequest func(*http.Request) error
	// OnResponse is an optional function that accepts a [*http.Response]. It is called after a HTTP response is returned.
	OnResponse func(*http.Response) error

	Configure func(*http.Client) // Optional function, used to configure the underlying HTTP client.
}

func (o Options) Validate() error {
	if o.Timeout <= 0 {
		return errors.New("timeout must be greater than 0")
	}
	return nil
}

type client struct {
	history.Queries

	httpClient    *http.Client
	url           string
	authorization string
	options       Options
}

func (c *client) CleanupHistory(ctx context.Context, cmd history.CleanupHistoryCmd) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.options.Timeout)
	defer cancel()

	var resBody common.CountRes
	if err := c.doPost(ctx, common.PathHistoryCleanup, cmd, &resBody); err != nil {
		return -1, err
	}
	return resBody.Count, nil
}

func (c *client) DeleteHistoricCaseInstance(ctx context.Context, caseInstanceId string) error {
	ctx, cancel := context.WithTimeout(ctx, c.options.Timeout)
	defer cancel()

	return c.doDelete(ctx, resolve(common.PathHistoricCaseInstances, caseInstanceId))
}

func (c *client) DeleteHistoricProcessInstance(ctx context.Context, cmd history.DeleteHistoricProcessInstanceCmd) error {
	ctx, cancel := context.WithTimeout(ctx, c.options.Timeout)
	defer cancel()

	path := resolve(common.PathHistoricProcessInstances, cmd.Id)
	if cmd.IfExists {
		path = fmt.Sprintf("%s?%s=true", path, common.QueryIfExists)
	}
	return c.doDelete(ctx, path)
}

func (c *client) DeleteHistoricTaskInstance(ctx context.Context, taskId string) error {
	ctx, cancel := context.WithTimeout(ctx, c.options.Timeout)
	defer cancel()

	return c.doDelete(ctx, resolve(common.PathHistoricTaskInstances, taskId))
}

func (c *client) DeleteHistoricVariableInstance(ctx context.Context, variableInstanceId string) error {
	ctx, cancel := context.WithTimeout(ctx, c.options.Timeout)
	defer cancel()

	return c.doDelete(ctx, resolve(common.PathHistoricVariableInstances, variableInstanceId))
}

func (c *client) GetHistoricJobLogExceptionStacktrace(ctx context.Context, historicJobLogId string) (string, error) {
	if strings.TrimSpace(historicJobLogId) == "" {
		return "", history.Error{
			Type:   history.ErrorNotFound,
			Title:  "failed to get exception stacktrace",
			Detail: "historic job log ID is empty",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.options.Timeout)
	defer cancel()

	path := resolve(common.PathHistoricJobLogsStacktrace, historicJobLogId)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+path, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create GET request: %v", err)
	}

	res, err := c.do(req)
	if err != nil {
		return "", err
	}

	contentType := res.Header.Get(common.HeaderContentType)
	if !strings.HasPrefix(contentType, common.ContentTypeText) {
		return "", decodeJSONResponseBody(res, nil)
	}

	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %v", err)
	}

	return string(b), nil
}

func (c *client) Shutdown() {
	c.httpClient.CloseIdleConnections()
}

func (c *client) do(req *http.Request) (*http.Response, error) {
	if c.options.OnRequest != nil {
		if err := c.options.OnRequest(req); err != nil {
			return nil, err
		}
	}

	req.Header.Add(common.HeaderAuthorization, c.authorization)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute %v", err)
	}

	if c.options.OnResponse != nil {
		if err := c.options.OnResponse(res); err != nil {
			res.Body.Close()
			return nil, err
		}
	}

	return res, nil
}

func (c *client) doDelete(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.url+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create DELETE request: %v", err)
	}

	res, err := c.do(req)
	if err != nil {
		return err
	}

	return decodeJSONResponseBody(res, nil)
}

func (c *client) doPost(ctx context.Context, path string, reqBody any, resBody any) error {
	b, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to create JSON request body: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+path, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("failed to create POST request: %v", err)
	}

	req.Header.Set(common.HeaderContentType, common.ContentTypeJson)

	res, err := c.do(req)
	if err != nil {
		return err
	}

	return decodeJSONResponseBody(res, resBody)
}

// resolve replaces the ID placeholder of a path with the escaped ID.
func resolve(path string, id string) string {
	return strings.Replace(path, "{id}", url.PathEscape(id), 1)
}
