package config

import (
	"github.com/kelseyhightower/envconfig"
)

type App struct {
	// HTTP
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// DB
	DBDSN string `envconfig:"DB_DSN" required:"true"`

	// Auth
	JWTSecret    string `envconfig:"JWT_SECRET" required:"true"`
	JWTExpireMin int    `envconfig:"JWT_EXPIRE_MIN" default:"1440"`

	// Payment gateway
	GatewayKeyID     string `envconfig:"GATEWAY_KEY_ID"`
	GatewayKeySecret string `envconfig:"GATEWAY_KEY_SECRET" required:"true"`
	GatewayBaseURL   string `envconfig:"GATEWAY_BASE_URL" default:"https://api.razorpay.com/v1"`
	Currency         string `envconfig:"CURRENCY" default:"INR"`

	// Booking policy
	MaxBookingsPerUser int    `envconfig:"MAX_BOOKINGS_PER_USER" default:"16"`
	BookingCodePrefix  string `envconfig:"BOOKING_CODE_PREFIX" default:"FLX-"`
	BookingCodeLength  int    `envconfig:"BOOKING_CODE_LENGTH" default:"6"`
	// Trusted path: allow booking creation without a payment receipt.
	AllowUnpaidBookings bool `envconfig:"ALLOW_UNPAID_BOOKINGS" default:"false"`

	// Artifact storage
	StorageDriver    string `envconfig:"STORAGE_DRIVER" default:""`
	LocalArtifactDir string `envconfig:"LOCAL_ARTIFACT_DIR" default:"./storage/artifacts"`
	LocalArtifactURL string `envconfig:"LOCAL_ARTIFACT_URL_PREFIX" default:"/artifacts"`
	S3Region         string `envconfig:"S3_REGION"`
	S3Bucket         string `envconfig:"S3_BUCKET"`
	S3Prefix         string `envconfig:"S3_PREFIX" default:"artifacts"`
	S3PublicBaseURL  string `envconfig:"S3_PUBLIC_BASE_URL"`

	// Events (optional; empty URL disables publishing)
	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"flexfit.events"`
}

func Load() (App, error) {
	var c App
	err := envconfig.Process("", &c)
	return c, err
}
