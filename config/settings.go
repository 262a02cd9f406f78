package config

import (
	"fmt"
	"strings"
	"time"
)

// Settings is the resolved configuration handed to constructors at boot.
// Nothing below internal/kernel reads the package-level accessors.
type Settings struct {
	AppEnv   string
	AppPort  string
	GRPCPort string

	RecordStore string // gorm | nats | memory
	DBDriver    string
	DatabaseDSN string
	NATSURL     string
	NATSBucket  string

	StorageDisk      string // local | s3 | memory
	StorageLocalRoot string
	S3               S3Settings
	AuditLogDir      string

	QueueDriver   string // memory | redis
	RedisAddr     string
	RedisPassword string
	CacheTTL      time.Duration

	// WriteMode is "if-match" or "unconditional".
	WriteMode string

	JWTSecret     string
	AdminEmail    string
	AdminPassword string

	ReconcileInterval time.Duration

	LogMongoURI string
	LogMongoDB  string
}

type S3Settings struct {
	Bucket   string
	Region   string
	Key      string
	Secret   string
	Endpoint string
}

// IsProduction reports whether APP_ENV is production.
func (s Settings) IsProduction() bool {
	return s.AppEnv == "production"
}

// LoadSettings reads every key once and validates the enumerated ones.
func LoadSettings() (Settings, error) {
	if err := Load(); err != nil {
		return Settings{}, err
	}

	s := Settings{
		AppEnv:           AppEnv(),
		AppPort:          AppPort(),
		GRPCPort:         Get("GRPC_PORT", "9090"),
		RecordStore:      strings.ToLower(Get("RECORD_STORE", "gorm")),
		DBDriver:         DatabaseDriver(),
		DatabaseDSN:      DatabaseDSN(),
		NATSURL:          Get("NATS_URL", "nats://127.0.0.1:4222"),
		NATSBucket:       Get("NATS_BUCKET", "storefront"),
		StorageDisk:      strings.ToLower(StorageDefault()),
		StorageLocalRoot: StorageLocalRoot(),
		S3: S3Settings{
			Bucket:   StorageS3Bucket(),
			Region:   StorageS3Region(),
			Key:      StorageS3Key(),
			Secret:   StorageS3Secret(),
			Endpoint: StorageS3Endpoint(),
		},
		AuditLogDir:   Get("AUDIT_LOG_DIR", "logs"),
		QueueDriver:   strings.ToLower(Get("QUEUE_DRIVER", "memory")),
		RedisAddr:     RedisAddr(),
		RedisPassword: RedisPassword(),
		WriteMode:     strings.ToLower(Get("WRITE_MODE", "if-match")),
		JWTSecret:     JWTSecret(),
		AdminEmail:    Get("ADMIN_EMAIL", "admin@storefront.local"),
		AdminPassword: Get("ADMIN_PASSWORD", ""),
		LogMongoURI:   Get("LOG_MONGO_URI", ""),
		LogMongoDB:    Get("LOG_MONGO_DB", "storefront"),
	}

	var err error
	if s.CacheTTL, err = time.ParseDuration(Get("CACHE_TTL", "60s")); err != nil {
		return Settings{}, fmt.Errorf("config: CACHE_TTL: %w", err)
	}
	if s.ReconcileInterval, err = time.ParseDuration(Get("RECONCILE_INTERVAL", "24h")); err != nil {
		return Settings{}, fmt.Errorf("config: RECONCILE_INTERVAL: %w", err)
	}

	switch s.RecordStore {
	case "gorm", "nats", "memory":
	default:
		return Settings{}, fmt.Errorf("config: unsupported RECORD_STORE %q (supported: gorm, nats, memory)", s.RecordStore)
	}
	switch s.WriteMode {
	case "if-match", "unconditional":
	default:
		return Settings{}, fmt.Errorf("config: unsupported WRITE_MODE %q (supported: if-match, unconditional)", s.WriteMode)
	}
	return s, nil
}
