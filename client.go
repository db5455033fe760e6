package lexhist

import (
	"github.com/lexhist/lexhist/internal/cache"
	"github.com/lexhist/lexhist/internal/compress"
	"github.com/lexhist/lexhist/internal/service"
	"github.com/lexhist/lexhist/internal/store"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Options configures an embedded Client.
type Options struct {
	// Driver is "sqlite" (default) or "postgres".
	Driver string
	// DSN is the sqlite file path or postgres connection string.
	DSN string
	// RedisAddr enables the current-version cache when set.
	RedisAddr string
	// Compression names the codec for article text at rest ("", "gzip",
	// "brotli" or "lz4").
	Compression string
}

// Client is the embedding surface for callers that link the store directly
// instead of going through the CLI: the registry, the version store, the
// ledger and the read-only resolver over one shared connection.
type Client struct {
	Registry *service.RegistryService
	Versions *service.VersionService
	Ledger   *service.LedgerService
	Resolver *service.ResolverService

	store store.Store
}

// Open connects to the database and builds the service surface. Migrations
// are not run implicitly; call Migrate once per schema change.
func Open(opts Options) (*Client, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case "postgres":
		dialector = postgres.Open(opts.DSN)
	default:
		dialector = sqlite.Open(opts.DSN)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}

	codec, err := compress.ForAlgo(opts.Compression)
	if err != nil {
		return nil, err
	}

	var articleCache *cache.ArticleCache
	if opts.RedisAddr != "" {
		articleCache = cache.NewArticleCache(cache.NewRedis(opts.RedisAddr))
	}

	s := store.NewGormStore(db)

	return &Client{
		Registry: service.NewRegistryService(s),
		Versions: service.NewVersionService(codec, s, articleCache),
		Ledger:   service.NewLedgerService(s),
		Resolver: service.NewResolverService(s),
		store:    s,
	}, nil
}

// Migrate creates or updates the schema.
func (c *Client) Migrate() error {
	return c.store.Migrate()
}
