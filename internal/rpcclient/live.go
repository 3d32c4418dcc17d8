package rpcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ginjaninja78/whalewatch/internal/telemetry"
	"github.com/ginjaninja78/whalewatch/internal/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTimeout bounds a single RPC round trip when none is configured.
const DefaultTimeout = 10 * time.Second

// LiveConfig holds the node connection settings.
type LiveConfig struct {
	URL      string
	User     string
	Password string
	Timeout  time.Duration
}

// LiveClient talks to a Bitcoin Core node over JSON-RPC 1.0.
type LiveClient struct {
	url        string
	user       string
	password   string
	httpClient *http.Client
	tracer     trace.Tracer
	log        zerolog.Logger
}

// NewLiveClient builds a client for cfg. No request is made.
func NewLiveClient(cfg LiveConfig, log zerolog.Logger) (*LiveClient, error) {
	if cfg.URL == "" {
		return nil, errors.New("rpc url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &LiveClient{
		url:        cfg.URL,
		user:       cfg.User,
		password:   cfg.Password,
		httpClient: &http.Client{Timeout: timeout},
		tracer:     telemetry.Tracer("whalewatch/rpcclient"),
		log:        log,
	}, nil
}

func (c *LiveClient) Mode() Mode {
	return ModeLive
}

// Ping checks the node is reachable and accepts our credentials.
func (c *LiveClient) Ping(ctx context.Context) error {
	var info json.RawMessage
	return c.call(ctx, "getblockchaininfo", []any{}, &info)
}

// GetRawTransaction fetches the verbose form of txid.
func (c *LiveClient) GetRawTransaction(ctx context.Context, txid string) (*types.TransactionDetail, error) {
	var detail types.TransactionDetail
	if err := c.call(ctx, "getrawtransaction", []any{txid, true}, &detail); err != nil {
		c.log.Warn().Str("txid", shortID(txid)).Err(err).Msg("transaction lookup failed")
		return nil, fmt.Errorf("getrawtransaction %s: %w", shortID(txid), err)
	}
	return &detail, nil
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	ID     json.RawMessage `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
}

func (c *LiveClient) call(ctx context.Context, method string, params []any, result any) (err error) {
	ctx, span := c.tracer.Start(ctx, "rpc."+method,
		trace.WithAttributes(attribute.String("rpc.method", method)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "1.0",
		ID:      uuid.NewString(),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.user, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	// Bitcoin Core answers RPC-level errors with a non-2xx status and a JSON
	// body, so the body is decoded before the status is judged.
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read rpc response: %w", err)
	}

	var decoded rpcResponse
	if jsonErr := json.Unmarshal(body, &decoded); jsonErr != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("rpc status %d", resp.StatusCode)
		}
		return fmt.Errorf("decode rpc response: %w", jsonErr)
	}
	if decoded.Error != nil {
		return fmt.Errorf("%w: %w", ErrRPC, decoded.Error)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("rpc status %d", resp.StatusCode)
	}
	if len(decoded.Result) == 0 || string(decoded.Result) == "null" {
		return fmt.Errorf("%w: empty result", ErrRPC)
	}

	if err := json.Unmarshal(decoded.Result, result); err != nil {
		return fmt.Errorf("decode %s result: %w", method, err)
	}
	return nil
}
