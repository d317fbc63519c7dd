package clients

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/spacesedan/vidinsight/config"
)

const VALKEY_ANALYSIS_PREFIX = "vidinsight:analysis:"

var (
	valkeyInstance *ValkeyClient
	valkeyOnce     sync.Once
)

// ValkeyClient caches terminal analysis results by video ID. The cache is
// optional; when VALKEY_ENABLED is unset every operation is a no-op miss.
type ValkeyClient struct {
	Client  valkey.Client
	enabled bool
}

func InitValkey() *ValkeyClient {
	valkeyOnce.Do(func() {
		if !config.GetBool("VALKEY_ENABLED", false) {
			slog.Info("[ValkeyClient] Result cache disabled")
			valkeyInstance = &ValkeyClient{}
			return
		}

		valkeyAddr := config.GetString("VALKEY_INIT_ADDRESS", "127.0.0.1:6379")
		valkeyPassword := config.GetString("VALKEY_PASSWORD", "")

		opts := valkey.ClientOption{
			InitAddress: []string{
				valkeyAddr,
			},
			Password:         valkeyPassword,
			ConnWriteTimeout: 5 * time.Second,
			SelectDB:         0,
		}

		client, err := valkey.NewClient(opts)
		if err != nil {
			slog.Error("[ValkeyClient] Failed to create Valkey client, cache disabled",
				slog.String("error", err.Error()))
			valkeyInstance = &ValkeyClient{}
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
		defer cancel()

		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			slog.Error("[ValkeyClient] Failed to ping Valkey, cache disabled",
				slog.String("error", err.Error()))
			client.Close()
			valkeyInstance = &ValkeyClient{}
			return
		}

		slog.Info("[ValkeyClient] Successfully connected to valkey")
		valkeyInstance = &ValkeyClient{Client: client, enabled: true}
	})
	return valkeyInstance
}

func GetValkeyClient() *ValkeyClient {
	if valkeyInstance == nil {
		return InitValkey()
	}
	return valkeyInstance
}

func CloseValkey() {
	if valkeyInstance != nil && valkeyInstance.enabled {
		valkeyInstance.Client.Close()
	}
}

func (vc *ValkeyClient) Enabled() bool {
	return vc.enabled
}

func (vc *ValkeyClient) CacheAnalysis(ctx context.Context, videoID string, payload []byte, ttl time.Duration) error {
	if !vc.enabled {
		return nil
	}

	key := VALKEY_ANALYSIS_PREFIX + videoID
	cmd := vc.Client.B().Set().Key(key).Value(string(payload)).
		Ex(ttl).Build()

	if err := vc.Client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to cache analysis for %s: %w", videoID, err)
	}

	slog.Info("[ValkeyClient] Cached analysis result",
		slog.String("video_id", videoID),
		slog.Duration("ttl", ttl))
	return nil
}

// GetCachedAnalysis returns the cached result payload for a video, if any.
// Cache errors are treated as misses.
func (vc *ValkeyClient) GetCachedAnalysis(ctx context.Context, videoID string) ([]byte, bool) {
	if !vc.enabled {
		return nil, false
	}

	key := VALKEY_ANALYSIS_PREFIX + videoID
	res := vc.Client.Do(ctx, vc.Client.B().Get().Key(key).Build())
	if err := res.Error(); err != nil {
		if !valkey.IsValkeyNil(err) {
			slog.Warn("[ValkeyClient] Cache lookup failed",
				slog.String("video_id", videoID),
				slog.String("error", err.Error()))
		}
		return nil, false
	}

	payload, err := res.AsBytes()
	if err != nil {
		return nil, false
	}
	return payload, true
}
