package bulksync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"packagesync/internal/entities"
	"packagesync/pkg/logger"
)

const (
	DefaultTimeout = 20 * time.Second
	DefaultLimit   = 100

	maxErrorBody = 4 << 10
)

type Options struct {
	Timeout time.Duration
	// Limiter nil - без ограничения частоты.
	Limiter limiter
	// DeviceID пустой - генерируется один раз на клиента.
	DeviceID string

	Fallback      entities.Coordinates
	JitterDegrees float64

	Now  func() time.Time
	Rand *rand.Rand
}

// Client клиент пакетной синхронизации. Хранит накопительную статистику
// между вызовами, поэтому один экземпляр на устройство.
type Client struct {
	log      logger.Logger
	client   client
	url      string
	timeout  time.Duration
	limiter  limiter
	deviceID string
	now      func() time.Time

	markers markerBuilder

	mu           sync.Mutex
	stats        entities.SyncStats
	seenPackages map[string]struct{}
	seenMarkers  map[string]struct{}
}

func New(log logger.Logger, c client, url string, opts Options) *Client {
	if c == nil {
		c = &http.Client{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.DeviceID == "" {
		opts.DeviceID = uuid.NewString()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	return &Client{
		log:      log.With(logger.NewField("gateway", "bulk_sync")),
		client:   c,
		url:      url,
		timeout:  opts.Timeout,
		limiter:  opts.Limiter,
		deviceID: opts.DeviceID,
		now:      opts.Now,
		markers: markerBuilder{
			fallback: opts.Fallback,
			jitter:   opts.JitterDegrees,
			rng:      opts.Rand,
		},
		seenPackages: make(map[string]struct{}),
		seenMarkers:  make(map[string]struct{}),
	}
}

func (c *Client) DeviceID() string {
	return c.deviceID
}

// Stats снимок накопительной статистики.
func (c *Client) Stats() entities.SyncStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Sync выполняет один обмен. Ошибки классифицированы: SYNC_THROTTLED, SYNC_TIMEOUT,
// NETWORK_ERROR, HTTP_ERROR_<code>, SERVER_ERROR, INVALID_RESPONSE.
func (c *Client) Sync(ctx context.Context, opts entities.SyncOptions) (*entities.SyncResult, error) {
	if c.limiter != nil {
		if ok, wait := c.limiter.Reserve(); !ok {
			return nil, entities.NewError(entities.KindSyncThrottled, fmt.Sprintf("retry in %s", wait.Round(time.Second)), nil)
		}
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}

	requestID := uuid.NewString()
	syncLog := c.log.With(logger.NewField("request_id", requestID))

	var resp *syncResponse
	err := c.executeWithMetrics(func() error {
		var err error
		resp, err = c.exchange(ctx, toRequest(c.deviceID, requestID, c.now(), opts))
		return err
	})
	if err != nil {
		syncLog.Warn("bulk sync failed", logger.NewField("error", err))
		return nil, err
	}

	var packages []entities.Package
	if err := json.Unmarshal(resp.Packages, &packages); err != nil {
		return nil, entities.NewError(entities.KindInvalidResponse, "packages is not a list of packages", err)
	}
	SyncPackagesReturned.Add(float64(len(packages)))

	result := &entities.SyncResult{
		RequestID:        requestID,
		Packages:         packages,
		TotalPackages:    resp.TotalPackages,
		ReturnedPackages: resp.ReturnedPackages,
		ServerTime:       resp.Timestamp,
		Counters:         countPackages(packages),
		Markers:          c.markers.build(packages),
	}
	result.Stats, result.NewPackages = c.record(packages, result.Markers)

	syncLog.Info("bulk sync completed",
		logger.NewField("returned", len(packages)),
		logger.NewField("markers", len(result.Markers)),
		logger.NewField("new_packages", result.Stats.NewPackagesDelta),
	)
	return result, nil
}

func (c *Client) exchange(ctx context.Context, body syncRequest) (*syncResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, entities.NewError(entities.KindInvalidInput, "encode sync request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(raw))
	if err != nil {
		return nil, entities.NewError(entities.KindInvalidInput, "build sync request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyTransport(err, c.timeout)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		text := strings.TrimSpace(string(msg))
		if text == "" {
			text = http.StatusText(resp.StatusCode)
		}
		return nil, entities.NewHTTPError(resp.StatusCode, text)
	}

	var out syncResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if isTimeout(err) {
			return nil, classifyTransport(err, c.timeout)
		}
		return nil, entities.NewError(entities.KindInvalidResponse, "decode sync response", err)
	}

	if !out.Success {
		msg := "bulk sync rejected by server"
		if out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return nil, entities.NewError(entities.KindServerError, msg, nil)
	}

	trimmed := bytes.TrimSpace(out.Packages)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, entities.NewError(entities.KindInvalidResponse, "packages is not an array", nil)
	}
	return &out, nil
}

// record обновляет накопительную статистику и возвращает впервые увиденные посылки.
func (c *Client) record(packages []entities.Package, markers []entities.Marker) (entities.SyncStats, []entities.Package) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var fresh []entities.Package
	for _, p := range packages {
		if _, ok := c.seenPackages[p.ID]; ok {
			continue
		}
		c.seenPackages[p.ID] = struct{}{}
		fresh = append(fresh, p.Clone())
	}

	newMarkers := 0
	for _, m := range markers {
		if _, ok := c.seenMarkers[m.ID]; ok {
			continue
		}
		c.seenMarkers[m.ID] = struct{}{}
		newMarkers++
	}

	c.stats = entities.SyncStats{
		SyncCount:        c.stats.SyncCount + 1,
		LastSyncAt:       c.now(),
		UniquePackages:   len(c.seenPackages),
		UniqueMarkers:    len(c.seenMarkers),
		NewPackagesDelta: len(fresh),
		NewMarkersDelta:  newMarkers,
	}
	return c.stats, fresh
}

func countPackages(packages []entities.Package) entities.SyncCounters {
	counters := entities.SyncCounters{Total: len(packages)}
	for _, p := range packages {
		if p.Route.Resolvable() {
			counters.WithRoute++
		}
		if p.Stamps != nil {
			if len(p.Stamps.GreenNumbers) > 0 {
				counters.WithStamps++
			}
			if strings.TrimSpace(p.Stamps.DestinationQuery) != "" {
				counters.WithDestinationQuery++
			}
		}
	}
	return counters
}

func classifyTransport(err error, timeout time.Duration) error {
	if isTimeout(err) {
		return entities.NewError(entities.KindSyncTimeout, fmt.Sprintf("no response within %s", timeout), err)
	}
	return entities.NewError(entities.KindNetwork, "sync request failed", err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (c *Client) executeWithMetrics(fn func() error) error {
	start := time.Now()
	err := fn()

	result := "success"
	if kind := entities.KindOf(err); kind != "" {
		result = string(kind)
		if kind.IsHTTP() {
			result = "http_error"
		}
	}
	SyncRequestDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
	return err
}
