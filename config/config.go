package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type BlobCacheConfig struct {
	Enable       bool  `json:"enable"`
	MaxMem       int64 `json:"max_mem"`
	KeySizeLimit int64 `json:"key_size_limit"`
}

type EntryCacheConfig struct {
	Enable bool  `json:"enable"`
	Size   int   `json:"size"`
	TTL    int64 `json:"ttl"` //秒
}

type Config struct {
	Bind          string           `json:"bind"`
	TLSBind       string           `json:"tls_bind"`
	TLSCert       string           `json:"tls_cert"`
	TLSKey        string           `json:"tls_key"`
	LogInfo       logger.LogConfig `json:"log_info"`
	DBFile        string           `json:"db_file"`
	BlobKind      string           `json:"blob_kind"`
	BlobInfo      interface{}      `json:"blob_config"`
	RotateStream  int              `json:"rotate_stream"`
	BlobCache     BlobCacheConfig  `json:"blob_cache"`
	SessionTTL    int64            `json:"session_ttl"` //秒
	DavName       string           `json:"dav_name"`
	AllowRegister bool             `json:"allow_register"`
	EnableMetrics bool             `json:"enable_metrics"`
	EntryCache    EntryCacheConfig `json:"entry_cache"`
}

func Parse(f string) (*Config, error) {
	raw, err := os.ReadFile(f)
	if err != nil {
		return nil, fmt.Errorf("read file:%w", err)
	}
	c := &Config{
		Bind:       ":8080",
		DBFile:     "./davbox.db",
		BlobKind:   "local",
		SessionTTL: 48 * 3600,
		DavName:    "davbox",
		BlobCache: BlobCacheConfig{
			Enable:       true,
			MaxMem:       64 * 1024 * 1024,
			KeySizeLimit: 256 * 1024,
		},
		EntryCache: EntryCacheConfig{
			Enable: true,
			Size:   10000,
			TTL:    600,
		},
	}
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("decode json failed, err:%w", err)
	}
	if len(c.TLSBind) > 0 && (len(c.TLSCert) == 0 || len(c.TLSKey) == 0) {
		return nil, fmt.Errorf("tls_bind requires tls_cert and tls_key")
	}
	return c, nil
}
