package app

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/artisanswear/artisans/internal/adapters/httpserver"
	mongorepo "github.com/artisanswear/artisans/internal/adapters/repo/mongo"
	"github.com/artisanswear/artisans/internal/domain"
	"github.com/artisanswear/artisans/internal/ingest"
	"github.com/artisanswear/artisans/internal/usecase"
)

type App struct {
	Client  *mongo.Client
	Catalog *usecase.CatalogUC
	Exports *usecase.ExportUC

	serverCfg httpserver.Config
}

func NewApp(client *mongo.Client) (*App, error) {
	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "artisans"
	}
	coll := client.Database(dbName).Collection("products")
	repo := mongorepo.NewProductRepo(coll)

	policy := domain.DefaultSavePolicy()
	if n := envInt("CATALOG_MAX_IMAGES"); n > 0 {
		policy.MaxImages = n
	}
	if n := envInt("CATALOG_MAX_PAYLOAD_BYTES"); n > 0 {
		policy.MaxPayloadBytes = n
	}

	proc := ingest.NewProcessor(envInt("IMAGE_MAX_WIDTH"), envInt("IMAGE_JPEG_QUALITY"))

	catalog := &usecase.CatalogUC{Products: repo, Policy: policy, Images: proc}
	exports := &usecase.ExportUC{Catalog: catalog}

	adminUser := os.Getenv("ADMIN_USER")
	if adminUser == "" {
		adminUser = "admin"
	}
	adminPass := os.Getenv("ADMIN_PASSWORD")
	if adminPass == "" {
		adminPass = "admin123"
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-admin-secret"
	}

	app := &App{Client: client, Catalog: catalog, Exports: exports}
	app.serverCfg = httpserver.Config{
		AdminUser:     adminUser,
		AdminPassword: adminPass,
		JWTSecret:     []byte(secret),
		TokenTTL:      12 * time.Hour,
		Ready: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			defer cancel()
			return client.Ping(ctx, readpref.Primary())
		},
	}
	return app, nil
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(a.Catalog, a.Exports, a.serverCfg)
}

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
