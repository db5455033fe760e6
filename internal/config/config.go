package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/lexhist/lexhist/internal/cache"
	"github.com/lexhist/lexhist/internal/compress"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type Config struct {
	Env         string
	DBDriver    string // sqlite or postgres
	DBDSN       string // file path for sqlite, connection string for postgres
	RedisAddr   string // empty disables the article cache
	Compression string // codec for article text at rest, empty stores plain
}

// LoadConfig reads the environment, loading a .env file when present.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Env:         getEnv("ENV", "dev"),
		DBDriver:    getEnv("DB_DRIVER", "sqlite"),
		DBDSN:       getEnv("DB_DSN", ".db/lexhist.db"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		Compression: os.Getenv("COMPRESSION"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// GetDb opens the configured database connection.
func GetDb(cnf *Config) *gorm.DB {
	var dialector gorm.Dialector
	switch cnf.DBDriver {
	case "postgres":
		dialector = postgres.Open(cnf.DBDSN)
	default:
		if err := os.MkdirAll(filepath.Dir(cnf.DBDSN), os.ModePerm); err != nil {
			logrus.Fatalf("error creating database directory: %v", err)
		}
		dialector = sqlite.Open(cnf.DBDSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		logrus.Fatalf("error connecting to database: %v", err)
	}

	return db
}

// GetCache returns the article cache, or nil when redis is not configured.
func GetCache(cnf *Config) *cache.ArticleCache {
	if cnf.RedisAddr == "" {
		return nil
	}

	return cache.NewArticleCache(cache.NewRedis(cnf.RedisAddr))
}

// GetCompress resolves the configured text codec.
func GetCompress(cnf *Config) compress.Compress {
	codec, err := compress.ForAlgo(cnf.Compression)
	if err != nil {
		logrus.Fatalf("error resolving compression codec: %v", err)
	}

	return codec
}
