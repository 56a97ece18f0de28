// cache.go
package nix

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	nixpath "zombiezen.com/go/nix"
	"zombiezen.com/go/nix/nar"
)

// ErrHashMismatch indicates a local store object differs from the cache
var ErrHashMismatch = errors.New("hash mismatch")

// CacheClient reads metadata from a Nix binary cache
type CacheClient struct {
	client  *Client
	baseURL string
	logger  *slog.Logger
}

// NewCacheClient creates a client for the cache at baseURL (DefaultCacheURL when empty).
func NewCacheClient(baseURL string, timeout time.Duration, logger *slog.Logger) *CacheClient {
	if baseURL == "" {
		baseURL = DefaultCacheURL
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &CacheClient{
		client:  NewClientWithTimeout(timeout),
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger,
	}
}

// GetNARInfo retrieves metadata for a store path digest
func (c *CacheClient) GetNARInfo(ctx context.Context, digest string) (*nixpath.NARInfo, error) {
	url := fmt.Sprintf("%s/%s.narinfo", c.baseURL, digest)
	c.logger.Debug("fetching narinfo", "url", url)

	content, err := c.client.GetString(ctx, url)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(content, "\n") {
		content += "\n"
	}

	info := new(nixpath.NARInfo)
	if err := info.UnmarshalText([]byte(content)); err != nil {
		return nil, err
	}
	return info, nil
}

// Verify serializes the local store object as a NAR, hashes it and compares
// the digest with the NarHash the cache advertises.
func (c *CacheClient) Verify(ctx context.Context, storePath string) (*VerifyResult, error) {
	sp, err := nixpath.ParseStorePath(storePath)
	if err != nil {
		return nil, fmt.Errorf("parsing store path: %w", err)
	}

	info, err := c.GetNARInfo(ctx, sp.Digest())
	if err != nil {
		return nil, fmt.Errorf("narinfo for %s: %w", sp.Name(), err)
	}
	if info.StorePath.Base() != sp.Base() {
		return nil, fmt.Errorf("narinfo for %s describes %s", sp.Name(), info.StorePath)
	}

	hasher := nixpath.NewHasher(info.NARHash.Type())
	if err := nar.DumpPath(hasher, storePath); err != nil {
		return nil, fmt.Errorf("serializing %s: %w", storePath, err)
	}

	result := &VerifyResult{
		StorePath: storePath,
		Expected:  info.NARHash,
		Actual:    hasher.SumHash(),
		NarSize:   info.NARSize,
	}
	if !result.Actual.Equal(result.Expected) {
		return result, fmt.Errorf("%w: %s: expected %v, got %v", ErrHashMismatch, storePath, result.Expected, result.Actual)
	}

	c.logger.Debug("store path verified", "store_path", storePath, "nar_hash", result.Actual.String())
	return result, nil
}
