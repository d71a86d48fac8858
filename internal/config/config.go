package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	CameraURL     string        `validate:"required,url"`
	FetchTimeout  time.Duration `validate:"gt=0"`
	NotifyURL     string        `validate:"required,url"`
	NotifyParam   string        `validate:"required"`
	NotifyTimeout time.Duration `validate:"gt=0"`
	MinInterval   time.Duration `validate:"gte=0"`

	ModelConfig   string        `validate:"required"`
	ModelWeights  string        `validate:"required"`
	ClassesFile   string        `validate:"required"`
	ConfThreshold float64       `validate:"gt=0,lte=1"`
	NMSThreshold  float64       `validate:"gt=0,lte=1"`
	InputSize     int           `validate:"gt=0"`
	DetectTimeout time.Duration `validate:"gt=0"`

	ClassesOfInterest []string      // nil = wszystkie klasy
	MessageTopK       int           `validate:"gte=0"`
	FetchBackoffMax   time.Duration `validate:"gte=0"`

	MonitorPort  int `validate:"gte=0,lte=65535"`
	MonitorToken string

	MQTTBroker string
	MQTTTopic  string `validate:"required_with=MQTTBroker"`

	LogDirectory string `validate:"required"`
	LogLevel     string `validate:"oneof=trace debug info warn warning error"`
	LogFormat    string `validate:"oneof=console json"`
}

// Load reads an optional .env file and builds the Config from the environment.
// Variables already present in the environment win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		CameraURL:     getEnv("CAMERA_URL", "http://192.168.4.1/cam-hi.jpg"),
		FetchTimeout:  getEnvAsDuration("FETCH_TIMEOUT", 5*time.Second),
		NotifyURL:     getEnv("NOTIFY_URL", "http://192.168.4.1/notify"),
		NotifyParam:   getEnv("NOTIFY_PARAM", "msg"),
		NotifyTimeout: getEnvAsDuration("NOTIFY_TIMEOUT", 3*time.Second),
		MinInterval:   getEnvAsDuration("MIN_NOTIFY_INTERVAL", 700*time.Millisecond),

		ModelConfig:   getEnv("MODEL_CONFIG", filepath.Join(".", "models", "yolov3.cfg")),
		ModelWeights:  getEnv("MODEL_WEIGHTS", filepath.Join(".", "models", "yolov3.weights")),
		ClassesFile:   getEnv("CLASSES_FILE", filepath.Join(".", "models", "coco.names")),
		ConfThreshold: getEnvAsFloat("CONF_THRESHOLD", 0.5),
		NMSThreshold:  getEnvAsFloat("NMS_THRESHOLD", 0.3),
		InputSize:     getEnvAsInt("INPUT_SIZE", 320),
		DetectTimeout: getEnvAsDuration("DETECT_TIMEOUT", 2*time.Second),

		ClassesOfInterest: getEnvAsList("CLASSES_OF_INTEREST"),
		MessageTopK:       getEnvAsInt("MESSAGE_TOP_K", 0),
		FetchBackoffMax:   getEnvAsDuration("FETCH_BACKOFF_MAX", 5*time.Second),

		MonitorPort:  getEnvAsInt("MONITOR_PORT", 8080),
		MonitorToken: getEnv("MONITOR_TOKEN", ""),

		MQTTBroker: getEnv("MQTT_BROKER", ""),
		MQTTTopic:  getEnv("MQTT_TOPIC", "camera/notifications"),

		LogDirectory: getEnv("LOG_DIR", filepath.Join(".", "logs")),
		LogLevel:     strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:    strings.ToLower(getEnv("LOG_FORMAT", "console")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints declared in struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s failed %q (value %v)", fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// CheckModelFiles reports the first model file that is missing on disk.
func (c *Config) CheckModelFiles() error {
	for _, p := range []string{c.ModelConfig, c.ModelWeights, c.ClassesFile} {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("model file not found: %s: %w", p, err)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go durations ("700ms") or plain seconds ("0.7").
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return defaultValue
}

// getEnvAsList splits a comma separated value; empty means nil.
func getEnvAsList(key string) []string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
