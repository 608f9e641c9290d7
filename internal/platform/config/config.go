package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string

	Circuit CircuitConfig
	Redis   RedisConfig
	Risk    RiskConfig

	// SecurityLevel tunes the liveness threshold: "standard" or "strict".
	SecurityLevel string
	// AdvancedLiveness enables the extra mouth/variance checks by default.
	AdvancedLiveness bool
}

// CircuitConfig locates the external prover and its precompiled artifacts.
type CircuitConfig struct {
	Dir           string
	ProverBin     string
	ProbeTimeout  time.Duration
	NormalTimeout time.Duration
	HighTimeout   time.Duration
	HealthTTL     time.Duration
	BatchLimit    int
}

// RedisConfig holds the optional Redis connection settings for the nullifier
// registry.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// RiskConfig holds the optional Postgres DSN for the assessment trail.
type RiskConfig struct {
	PostgresURL string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("FACEGATE_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	circuitDir := os.Getenv("FACEGATE_CIRCUIT_DIR")
	if circuitDir == "" {
		circuitDir = "circuits"
	}
	proverBin := os.Getenv("FACEGATE_PROVER_BIN")
	if proverBin == "" {
		proverBin = "snarkjs"
	}

	level := os.Getenv("FACEGATE_SECURITY_LEVEL")
	if level == "" {
		level = "standard"
	}

	return Server{
		Addr:             addr,
		JWTSigningKey:    jwtSigningKey,
		SecurityLevel:    level,
		AdvancedLiveness: os.Getenv("FACEGATE_ADVANCED_LIVENESS") == "true",
		Circuit: CircuitConfig{
			Dir:           circuitDir,
			ProverBin:     proverBin,
			ProbeTimeout:  durationEnv("FACEGATE_PROVER_PROBE_TIMEOUT", 5*time.Second),
			NormalTimeout: durationEnv("FACEGATE_PROOF_TIMEOUT", 30*time.Second),
			HighTimeout:   durationEnv("FACEGATE_PROOF_TIMEOUT_HIGH", 60*time.Second),
			HealthTTL:     durationEnv("FACEGATE_CIRCUIT_HEALTH_TTL", 30*time.Second),
			BatchLimit:    intEnv("FACEGATE_BATCH_LIMIT", 10),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("FACEGATE_REDIS_URL"),
			PoolSize:     intEnv("FACEGATE_REDIS_POOL_SIZE", 10),
			MinIdleConns: intEnv("FACEGATE_REDIS_MIN_IDLE", 2),
			DialTimeout:  durationEnv("FACEGATE_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationEnv("FACEGATE_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationEnv("FACEGATE_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Risk: RiskConfig{
			PostgresURL: os.Getenv("FACEGATE_POSTGRES_URL"),
		},
	}
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

func intEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
