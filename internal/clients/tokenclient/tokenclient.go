package tokenclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"

	"github.com/stakepool-labs/staking-pool/internal/config"
)

const transfersPath = "/v1/transfers"

type TokenClient struct {
	httpClient *http.Client
	cfg        *config.TokenServiceConfig
}

func NewTokenClient(cfg *config.TokenServiceConfig) *TokenClient {
	return &TokenClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
	}
}

// Transfer submits the transfer request. Acceptance is synchronous; the
// actual outcome arrives later on the notification queue keyed by the
// command's request ID. Submission is retried on transient failures, which
// is safe because the service deduplicates on the request ID.
func (c *TokenClient) Transfer(ctx context.Context, cmd TransferCommand) error {
	callForTransfer := func() (struct{}, error) {
		return struct{}{}, c.submit(ctx, cmd)
	}

	if _, err := clientCallWithRetry(ctx, callForTransfer, c.cfg); err != nil {
		return fmt.Errorf("failed to submit transfer %s: %w", cmd.RequestID, err)
	}
	return nil
}

func (c *TokenClient) submit(ctx context.Context, cmd TransferCommand) error {
	body, err := json.Marshal(cmd)
	if err != nil {
		return err
	}

	url := strings.TrimSuffix(c.cfg.Endpoint, "/") + transfersPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &statusError{code: resp.StatusCode, body: string(msg)}
	}
	return nil
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("token service returned %d: %s", e.code, e.body)
}

// retryable reports whether a transfer submission may be retried: transport
// errors and 5xx responses only. A 4xx rejection is final.
func retryable(err error) bool {
	if se, ok := err.(*statusError); ok {
		return se.code >= http.StatusInternalServerError
	}
	return true
}

func clientCallWithRetry[T any](
	ctx context.Context,
	call retry.RetryableFuncWithData[T],
	cfg *config.TokenServiceConfig,
) (T, error) {
	result, err := retry.DoWithData(call,
		retry.Context(ctx),
		retry.Attempts(cfg.MaxRetryTimes),
		retry.Delay(cfg.RetryInterval),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Debug().
				Uint("attempt", n+1).
				Uint("max_attempts", cfg.MaxRetryTimes).
				Err(err).
				Msg("Transfer submission failed, retrying with exponential backoff")
		}))
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
