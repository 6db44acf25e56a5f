package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	StrategyLandmark    = "landmark"
	StrategyNeural      = "neural"
	StrategyCascade     = "cascade"
	StrategyRekognition = "rekognition"

	BackendPostgrest = "postgrest"
	BackendPostgres  = "postgres"
)

type Config struct {
	Server   ServerConfig
	Fetch    FetchConfig
	Detector DetectorConfig
	Supabase SupabaseConfig
	Records  RecordsConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Cache    CacheConfig
	Auth     AuthConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port         string        `validate:"required"`
	ReadTimeout  time.Duration `validate:"gt=0"`
	WriteTimeout time.Duration `validate:"gt=0"`
}

type FetchConfig struct {
	Timeout   time.Duration `validate:"gt=0"`
	MaxBytes  int64         `validate:"gt=0"`
	UserAgent string
}

// DetectorConfig selects and parameterises the face detection strategy.
type DetectorConfig struct {
	Strategy      string  `validate:"oneof=landmark neural cascade rekognition"`
	MinConfidence float64 `validate:"gt=0,lte=1"`
	MaxDimension  int     `validate:"gte=0"`
	MaxPixels     int64   `validate:"gte=0"`

	// landmark
	LandmarkModelDir string

	// neural
	ModelSelection       int `validate:"oneof=0 1"`
	ShortRangeModelPath  string
	ShortRangeConfigPath string
	FullRangeModelPath   string
	FullRangeConfigPath  string
	InputSize            int `validate:"gt=0"`

	// cascade
	CascadePath  string
	ScaleFactor  float64 `validate:"gt=1"`
	MinNeighbors int     `validate:"gte=0"`
	MinFaceSize  int     `validate:"gte=0"`

	// rekognition
	AWSRegion string

	// model files missing locally are pulled from this Supabase bucket
	ModelBucket string
	ModelPrefix string
}

type SupabaseConfig struct {
	URL       string
	KEY       string
	JWTSecret string
}

// RecordsConfig describes the row mutated by the update-record function.
type RecordsConfig struct {
	Backend      string         `validate:"oneof=postgrest postgres"`
	DSN          string         `validate:"required_if=Backend postgres"`
	Schema       string
	Table        string         `validate:"required"`
	FilterColumn string         `validate:"required"`
	FilterValue  string
	Values       map[string]any `validate:"required,min=1"`
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RabbitMQConfig struct {
	URL     string
	Queue   string `validate:"required"`
	Workers int    `validate:"gte=0"`
}

type CacheConfig struct {
	Enabled  bool
	Duration time.Duration `validate:"gt=0"`
	JobTTL   time.Duration `validate:"gt=0"`
}

type AuthConfig struct {
	Audience string
}

type LogConfig struct {
	Level       string `validate:"oneof=debug info warn error"`
	Development bool
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	values, err := getEnvAsJSONObject("RECORDS_VALUES", map[string]any{"name": "Testing123"})
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getDuration("READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("WRITE_TIMEOUT", 60*time.Second),
		},
		Fetch: FetchConfig{
			Timeout:   getDuration("FETCH_TIMEOUT", 30*time.Second),
			MaxBytes:  getEnvAsInt64("FETCH_MAX_BYTES", 10*1024*1024), // 10MB
			UserAgent: getEnv("FETCH_USER_AGENT", "face-detection/1.0"),
		},
		Detector: DetectorConfig{
			Strategy:             strings.ToLower(getEnv("DETECTOR_STRATEGY", StrategyCascade)),
			MinConfidence:        getEnvAsFloat("DETECTOR_MIN_CONFIDENCE", 0.5),
			MaxDimension:         getEnvAsInt("DETECTOR_MAX_DIMENSION", 0),
			MaxPixels:            getEnvAsInt64("DETECTOR_MAX_PIXELS", 50_000_000),
			LandmarkModelDir:     getEnv("DETECTOR_LANDMARK_MODEL_DIR", "./models/dlib"),
			ModelSelection:       getEnvAsInt("DETECTOR_MODEL_SELECTION", 0),
			ShortRangeModelPath:  getEnv("DETECTOR_SHORT_RANGE_MODEL", "./models/res10_300x300_ssd_iter_140000.caffemodel"),
			ShortRangeConfigPath: getEnv("DETECTOR_SHORT_RANGE_CONFIG", "./models/deploy.prototxt"),
			FullRangeModelPath:   getEnv("DETECTOR_FULL_RANGE_MODEL", "./models/face_detection_yunet_2023mar.onnx"),
			FullRangeConfigPath:  getEnv("DETECTOR_FULL_RANGE_CONFIG", ""),
			InputSize:            getEnvAsInt("DETECTOR_INPUT_SIZE", 300),
			CascadePath:          getEnv("DETECTOR_CASCADE_PATH", "./models/haarcascade_frontalface_default.xml"),
			ScaleFactor:          getEnvAsFloat("DETECTOR_SCALE_FACTOR", 1.1),
			MinNeighbors:         getEnvAsInt("DETECTOR_MIN_NEIGHBORS", 5),
			MinFaceSize:          getEnvAsInt("DETECTOR_MIN_FACE_SIZE", 0),
			AWSRegion:            getEnv("AWS_REGION", "us-east-1"),
			ModelBucket:          getEnv("MODEL_BUCKET", ""),
			ModelPrefix:          getEnv("MODEL_PREFIX", "models"),
		},
		Supabase: SupabaseConfig{
			URL:       strings.TrimSuffix(getEnv("SUPABASE_URL", ""), "/"),
			KEY:       getEnv("SUPABASE_KEY", ""),
			JWTSecret: getEnv("SUPABASE_JWT_SECRET", ""),
		},
		Records: RecordsConfig{
			Backend:      strings.ToLower(getEnv("RECORDS_BACKEND", BackendPostgrest)),
			DSN:          getEnv("DATABASE_DSN", ""),
			Schema:       getEnv("RECORDS_SCHEMA", "public"),
			Table:        getEnv("RECORDS_TABLE", "test"),
			FilterColumn: getEnv("RECORDS_FILTER_COLUMN", "id"),
			FilterValue:  getEnv("RECORDS_FILTER_VALUE", "1"),
			Values:       values,
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		RabbitMQ: RabbitMQConfig{
			URL:     getEnv("RABBITMQ_URL", ""),
			Queue:   getEnv("QUEUE_NAME", "face_detection"),
			Workers: getEnvAsInt("QUEUE_WORKERS", 2),
		},
		Cache: CacheConfig{
			Enabled:  getEnvAsBool("CACHE_ENABLED", true),
			Duration: getDuration("CACHE_DURATION", 24*time.Hour),
			JobTTL:   getDuration("JOB_TTL", time.Hour),
		},
		Auth: AuthConfig{
			Audience: getEnv("JWT_AUDIENCE", ""),
		},
		Log: LogConfig{
			Level:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Records.Backend == BackendPostgrest && (c.Supabase.URL == "" || c.Supabase.KEY == "") {
		return fmt.Errorf("invalid configuration: SUPABASE_URL and SUPABASE_KEY are required for the %s backend", BackendPostgrest)
	}
	return nil
}

// RedisEnabled reports whether a Redis address was configured.
func (c *Config) RedisEnabled() bool {
	return c.Redis.Addr != ""
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsInt64(key string, defaultVal int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func getEnvAsJSONObject(key string, defaultVal map[string]any) (map[string]any, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultVal, nil
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(value), &obj); err != nil {
		return nil, fmt.Errorf("%s must be a JSON object: %w", key, err)
	}
	return obj, nil
}
