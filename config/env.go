package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultAppEnv      = "local"
	defaultAPIBaseURL  = "http://localhost:8080/api/v1"
	defaultWSURL       = "ws://localhost:8080/ws"
	defaultStateDriver = "file"
	defaultStateDir    = ".slicemaster"
	defaultRedisAddr   = "localhost:6379"
	defaultDeliveryFee = "40"
	defaultWSAttempts  = "5"
	defaultWSBaseDelay = "3s"
	defaultHistoryDSN  = "orders.db"
	defaultAppPort     = "8080"
	defaultJWTSecret   = "change-me-in-production"
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

// Load reads config/app.json and .env once, merging them over the defaults.
// Later calls return the first result.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"APP_ENV":         defaultAppEnv,
		"API_BASE_URL":    defaultAPIBaseURL,
		"WS_URL":          defaultWSURL,
		"STATE_DRIVER":    defaultStateDriver,
		"STATE_DIR":       defaultStateDir,
		"REDIS_ADDR":      defaultRedisAddr,
		"REDIS_PASSWORD":  "",
		"DELIVERY_FEE":    defaultDeliveryFee,
		"WS_MAX_ATTEMPTS": defaultWSAttempts,
		"WS_BASE_DELAY":   defaultWSBaseDelay,
		"HISTORY_DSN":     defaultHistoryDSN,
		"APP_PORT":        defaultAppPort,
		"JWT_SECRET":      defaultJWTSecret,
	}
}

func AppEnv() string {
	_ = Load()
	return get("APP_ENV", defaultAppEnv)
}

// APIBaseURL is the versioned REST base path of the SliceMaster backend.
func APIBaseURL() string {
	_ = Load()
	return strings.TrimRight(get("API_BASE_URL", defaultAPIBaseURL), "/")
}

// WSURL is the websocket root; the order feed dials <WSURL>/orders.
func WSURL() string {
	_ = Load()
	return strings.TrimRight(get("WS_URL", defaultWSURL), "/")
}

// StateDriver selects the client state store backend: file, redis or memory.
func StateDriver() string {
	_ = Load()
	driver := strings.ToLower(get("STATE_DRIVER", defaultStateDriver))
	switch driver {
	case "file", "redis", "memory":
		return driver
	default:
		return defaultStateDriver
	}
}

// StateDir is the directory the file state driver writes under. Relative
// paths are resolved against the user home directory.
func StateDir() string {
	_ = Load()
	dir := get("STATE_DIR", defaultStateDir)
	if strings.HasPrefix(dir, "/") {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return dir
	}
	return home + "/" + dir
}

func RedisAddr() string {
	_ = Load()
	return get("REDIS_ADDR", defaultRedisAddr)
}

func RedisPassword() string {
	_ = Load()
	return get("REDIS_PASSWORD", "")
}

// DeliveryFee is the flat fee charged on any non-empty cart.
func DeliveryFee() float64 {
	_ = Load()
	fee, err := strconv.ParseFloat(get("DELIVERY_FEE", defaultDeliveryFee), 64)
	if err != nil || fee < 0 {
		fee, _ = strconv.ParseFloat(defaultDeliveryFee, 64)
	}
	return fee
}

// WSMaxAttempts caps order-feed reconnection attempts.
func WSMaxAttempts() int {
	_ = Load()
	n, err := strconv.Atoi(get("WS_MAX_ATTEMPTS", defaultWSAttempts))
	if err != nil || n < 1 {
		n, _ = strconv.Atoi(defaultWSAttempts)
	}
	return n
}

// WSBaseDelay is the base reconnection delay; attempt N waits N times this.
func WSBaseDelay() time.Duration {
	_ = Load()
	d, err := time.ParseDuration(get("WS_BASE_DELAY", defaultWSBaseDelay))
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(defaultWSBaseDelay)
	}
	return d
}

// HistoryDSN is the sqlite file holding the local order-history cache.
// Relative paths land inside StateDir.
func HistoryDSN() string {
	_ = Load()
	dsn := get("HISTORY_DSN", defaultHistoryDSN)
	if strings.HasPrefix(dsn, "/") || dsn == ":memory:" {
		return dsn
	}
	return StateDir() + "/" + dsn
}

// AppPort is the listen port of the embedded mock backend.
func AppPort() string {
	_ = Load()
	return get("APP_PORT", defaultAppPort)
}

// JWTSecret signs the tokens minted by the embedded mock backend. The real
// client never verifies signatures; it only decodes claims.
func JWTSecret() string {
	_ = Load()
	return get("JWT_SECRET", defaultJWTSecret)
}

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		s, ok := val.(string)
		if !ok {
			continue
		}

		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			continue
		}

		key := strings.ToUpper(strings.TrimSpace(line[:idx]))
		value := strings.TrimSpace(line[idx+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}
		out[key] = value
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	return nil
}

// get resolves a key: process environment first, then the merged file
// values, then the fallback.
func get(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}

	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}

// Get reads any config key by name with an optional fallback.
// Keys from .env and config/app.json are available after Load().
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}
