package main

import (
	"context"
	"embed"
	"encoding/gob"
	"log/slog"
	"net/http"
	"time"

	"github.com/adampresley/adamgokit/awsconfig"
	"github.com/adampresley/adamgokit/httphelpers"
	"github.com/adampresley/adamgokit/mux"
	"github.com/adampresley/adamgokit/rendering"
	"github.com/adampresley/adamgokit/retrier"
	"github.com/adampresley/adamgokit/s3"
	"github.com/adampresley/adamgokit/sessions"
	"github.com/adampresley/imagegallery/cmd/website/internal/api"
	"github.com/adampresley/imagegallery/cmd/website/internal/configuration"
	"github.com/adampresley/imagegallery/cmd/website/internal/gallery"
	"github.com/adampresley/imagegallery/cmd/website/internal/home"
	"github.com/adampresley/imagegallery/cmd/website/internal/mirror"
	"github.com/adampresley/imagegallery/pkg/content"
	"github.com/adampresley/imagegallery/pkg/migrations"
	"github.com/adampresley/imagegallery/pkg/models"
	"github.com/adampresley/imagegallery/pkg/services"
	_ "github.com/glebarez/sqlite"
	"github.com/rfberaldo/sqlz"
	"github.com/rfberaldo/sqlz/binds"
)

var (
	Version string = "development"
	appName string = "imagegallery"

	//go:embed app
	appFS embed.FS

	config configuration.Config

	/* Services */
	contentClient          *content.DeliveryClient
	db                     *sqlz.DB
	favoriteService        services.FavoriteServicer
	galleryService         services.GalleryServicer
	renderer               rendering.TemplateRenderer
	renditionMirrorService mirror.RenditionMirror
	sessionService         sessions.Session[*models.Visitor]

	/* Controllers */
	apiController     api.ApiHandlers
	galleryController gallery.GalleryHandlers
	homeController    home.HomeHandlers
)

func main() {
	var (
		err               error
		thumbnailFallback services.ThumbnailFallback
	)

	config = configuration.LoadConfig()
	setupLogger(&config, Version)

	slog.Info("configuration loaded",
		slog.String("app", appName),
		slog.String("version", Version),
		slog.String("loglevel", config.LogLevel),
		slog.String("host", config.Host),
		slog.String("contentBaseURL", config.ContentBaseURL),
		slog.Bool("mirrorEnabled", config.MirrorEnabled),
	)

	slog.Debug("setting up...")

	shutdownCtx, cancel := context.WithCancel(context.Background())

	/*
	 * Setup services
	 */
	binds.Register("sqlite", binds.BindByDriver("sqlite3"))
	if db, err = sqlz.Connect("sqlite", config.DSN); err != nil {
		panic(err)
	}

	if err = migrations.Migrate(db); err != nil {
		panic(err)
	}

	gob.Register(&models.Visitor{})

	cookieStore := sessions.NewCookieStore(config.CookieSecret)
	sessionService = sessions.NewSessionWrapper[*models.Visitor](cookieStore, "imagegalleryvisitors", "visitor")

	renderer, err = rendering.NewGoTemplateRenderer(rendering.GoTemplateRendererConfig{
		TemplateDir:       "app",
		TemplateExtension: ".html",
		TemplateFS:        appFS,
		PagesDir:          "pages",
	})

	if err != nil {
		panic(err)
	}

	contentClient = content.NewDeliveryClient(content.DeliveryClientConfig{
		BaseURL:        config.ContentBaseURL,
		ChannelToken:   config.ContentChannelToken,
		RequestTimeout: time.Duration(config.ContentRequestTimeout) * time.Second,
	})

	if config.MirrorEnabled {
		renditionMirrorService = setupRenditionMirror(shutdownCtx)
		thumbnailFallback = renditionMirrorService
	}

	galleryService = services.NewGalleryService(services.GalleryServiceConfig{
		ContentClient:     contentClient,
		MaxFetchWorkers:   config.MaxFetchWorkers,
		ThumbnailFallback: thumbnailFallback,
	})

	favoriteService = services.NewFavoriteService(services.FavoriteServiceConfig{
		DB: db,
	})

	/*
	 * Setup controllers
	 */
	apiController = api.NewApiController(api.ApiControllerConfig{
		GalleryService: galleryService,
	})

	galleryController = gallery.NewGalleryController(gallery.GalleryControllerConfig{
		FavoriteService: favoriteService,
		GalleryService:  galleryService,
		Renderer:        renderer,
	})

	homeController = home.NewHomeController(home.HomeControllerConfig{
		GalleryService: galleryService,
		Renderer:       renderer,
	})

	/*
	 * Setup router and http server
	 */
	slog.Debug("setting up routes...")

	visitorMiddleware := newVisitorMiddleware(
		sessionService,
		[]string{
			"/static",
			"/heartbeat",
		},
	)

	routes := []mux.Route{
		{Path: "GET /heartbeat", HandlerFunc: heartbeat},
		{Path: "GET /", HandlerFunc: homeController.HomePage, Middlewares: []mux.MiddlewareFunc{visitorMiddleware}},
		{Path: "GET /category/{id}", HandlerFunc: galleryController.CategoryPage, Middlewares: []mux.MiddlewareFunc{visitorMiddleware}},
		{Path: "PUT /item/{id}/toggle-favorite", HandlerFunc: galleryController.ToggleFavorite, Middlewares: []mux.MiddlewareFunc{visitorMiddleware}},
		{Path: "GET /api/home", HandlerFunc: apiController.HomeData},
		{Path: "GET /api/category/{id}", HandlerFunc: apiController.CategoryData},
	}

	routerConfig := mux.RouterConfig{
		Address:              config.Host,
		Debug:                Version == "development",
		ServeStaticContent:   true,
		StaticContentRootDir: "app",
		StaticContentPrefix:  "/static/",
		StaticFS:             appFS,
		HttpWriteTimeout:     60,
	}

	m := mux.SetupRouter(routerConfig, routes)
	httpServer, quit := mux.SetupServer(routerConfig, m)

	/*
	 * Start the rendition mirror job
	 */
	if config.MirrorEnabled {
		startRenditionMirror(shutdownCtx)
	}

	/*
	 * Wait for graceful shutdown
	 */
	slog.Info("server started")

	<-quit

	cancel()
	mux.Shutdown(httpServer)
	slog.Info("server stopped")
}

func heartbeat(w http.ResponseWriter, r *http.Request) {
	httphelpers.TextOK(w, "OK")
}

func setupRenditionMirror(shutdownCtx context.Context) mirror.RenditionMirrorService {
	var (
		err error
	)

	awsConfig := &awsconfig.Config{
		Endpoint:        config.AwsEndpointUrl,
		Region:          config.AwsRegion,
		AccessKeyID:     config.AwsAccessKeyId,
		SecretAccessKey: config.AwsSecretAccessKey,
	}

	retrier.Retry(func() error {
		if err = awsConfig.Load(); err != nil {
			slog.Error("failed to load AWS config. trying again", "error", err)
			return err
		}

		return nil
	})

	if err != nil {
		panic(err)
	}

	s3Client, err := s3.NewClient(awsConfig)

	if err != nil {
		panic(err)
	}

	return mirror.NewRenditionMirrorService(mirror.RenditionMirrorConfig{
		AwsBucket:     config.AwsBucket,
		AwsRegion:     config.AwsRegion,
		ContentClient: contentClient,
		Folder:        config.MirrorFolder,
		MaxWorkers:    config.MaxMirrorWorkers,
		S3Client:      s3Client,
		ShutdownCtx:   shutdownCtx,
	})
}

func startRenditionMirror(shutdownCtx context.Context) {
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		renditionMirrorService.Run()

		for {
			select {
			case <-shutdownCtx.Done():
				return

			case <-ticker.C:
				go renditionMirrorService.Run()
			}
		}
	}()
}
