package packages

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"packagesync/internal/entities"
)

const (
	serviceName  = "packages"
	maxErrorBody = 4 << 10
)

// Gateway клиент REST API сервиса посылок.
type Gateway struct {
	baseURL *url.URL
	client  client
	timeout time.Duration
}

func New(baseURL string, c client, timeout time.Duration) (*Gateway, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	if c == nil {
		c = &http.Client{}
	}
	return &Gateway{baseURL: u, client: c, timeout: timeout}, nil
}

func (g *Gateway) ListPackages(ctx context.Context, filters entities.Filters) ([]entities.Package, error) {
	var out []entities.Package
	err := g.executeWithMetrics("ListPackages", func() error {
		return g.do(ctx, http.MethodGet, "/packages", filters.Query(), nil, &out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (g *Gateway) GetPackage(ctx context.Context, id string) (*entities.Package, error) {
	var out entities.Package
	err := g.executeWithMetrics("GetPackage", func() error {
		return g.do(ctx, http.MethodGet, "/packages/"+url.PathEscape(id), nil, nil, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *Gateway) UpdateStatus(
	ctx context.Context,
	id string,
	status entities.PackageStatusType,
	sc entities.StatusContext,
) (*entities.Package, error) {
	body := statusRequest{Status: status, Location: sc.Location, Notes: sc.Notes}

	var out entities.Package
	err := g.executeWithMetrics("UpdateStatus", func() error {
		return g.do(ctx, http.MethodPatch, "/packages/"+url.PathEscape(id)+"/status", nil, body, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *Gateway) CreatePackage(ctx context.Context, p entities.Package) (*entities.Package, error) {
	var out entities.Package
	err := g.executeWithMetrics("CreatePackage", func() error {
		return g.do(ctx, http.MethodPost, "/packages", nil, p, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *Gateway) DeletePackage(ctx context.Context, id string) error {
	return g.executeWithMetrics("DeletePackage", func() error {
		return g.do(ctx, http.MethodDelete, "/packages/"+url.PathEscape(id), nil, nil, nil)
	})
}

func (g *Gateway) BatchUpdateStatus(ctx context.Context, updates []entities.StatusUpdate) ([]entities.Package, error) {
	var out []entities.Package
	err := g.executeWithMetrics("BatchUpdateStatus", func() error {
		return g.do(ctx, http.MethodPost, "/packages/batch-status", nil, toBatchRequest(updates), &out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Ping проверка доступности сервера перед сливом офлайн-очереди.
func (g *Gateway) Ping(ctx context.Context) error {
	return g.executeWithMetrics("Ping", func() error {
		return g.do(ctx, http.MethodGet, "/health", nil, nil, nil)
	})
}

func (g *Gateway) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	u := *g.baseURL
	u.Path += path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return entities.NewError(entities.KindInvalidInput, "encode request", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return entities.NewError(entities.KindInvalidInput, "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return entities.NewHTTPError(resp.StatusCode, readErrorMessage(resp))
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if isTimeout(err) {
			return entities.NewError(entities.KindNetworkTimeout, "read response", err)
		}
		return entities.NewError(entities.KindInvalidResponse, "decode response", err)
	}
	return nil
}

func classifyTransportError(err error) error {
	if isTimeout(err) {
		return entities.NewError(entities.KindNetworkTimeout, "request timed out", err)
	}
	return entities.NewError(entities.KindNetwork, "request failed", err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func readErrorMessage(resp *http.Response) string {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return http.StatusText(resp.StatusCode)
	}

	var body errorBody
	if json.Unmarshal(raw, &body) == nil {
		if body.Error != nil && body.Error.Message != "" {
			return body.Error.Message
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return strings.TrimSpace(string(raw))
}

func (g *Gateway) executeWithMetrics(method string, fn func() error) error {
	start := time.Now()
	err := fn()
	result := "success"
	if err != nil {
		result = string(entities.KindOf(err))
		if entities.KindOf(err).IsHTTP() {
			result = "http_error"
		}
	}
	GatewayRequestDuration.WithLabelValues(serviceName, method, result).Observe(time.Since(start).Seconds())
	return err
}
