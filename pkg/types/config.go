package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"30"`

	DatabaseURL      string `envconfig:"DATABASE_URL"`
	DatabaseSchema   string `envconfig:"DATABASE_SCHEMA" default:"rentapply"`
	DatabaseMaxConns int32  `envconfig:"DATABASE_MAX_CONNS" default:"10"`

	// Redis backs workflow sessions and in-flight locks
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	SessionTTLSec int    `envconfig:"SESSION_TTL_SEC" default:"86400"` // 1 day

	// Token verification. The JWKS document is expected at
	// {AUTH_ISSUER_URL}/.well-known/jwks.json
	AuthIssuerURL string `envconfig:"AUTH_ISSUER_URL"`

	// Document and contract storage
	S3BucketName string `envconfig:"S3_BUCKET_NAME" default:"rentapply-documents"`
	MaxUploadMB  int64  `envconfig:"MAX_UPLOAD_MB" default:"224"`

	// Payments
	StripeSecretKey string `envconfig:"STRIPE_SECRET_KEY"`
	PaymentCurrency string `envconfig:"PAYMENT_CURRENCY" default:"usd"`

	CookieName string `envconfig:"SESSION_COOKIE_NAME" default:"rentapply_session"`

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes
}
