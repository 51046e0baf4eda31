package http

import (
	"github.com/gin-gonic/gin"

	"pdfchatbot/internal/bootstrap"
	"pdfchatbot/internal/transport/http/handler"
	"pdfchatbot/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	cfg := app.Config
	gin.SetMode(cfg.App.GinMode)
	router := gin.New()
	router.MaxMultipartMemory = int64(cfg.App.MaxUploadMB) << 20
	router.Use(middleware.AccessLog(app.Logger.Named("http")), gin.Recovery())
	router.Use(middleware.CORS(cfg.App.CORSAllowedOrigins))

	var broker handler.BrokerStatus
	if app.Events != nil {
		broker = app.Events
	}
	healthHandler := handler.NewHealthHandler(cfg.App.Name, cfg.App.Env, app.Index, broker, app.StartedAt)
	uploadHandler := handler.NewUploadHandler(
		app.Ingest,
		app.Staging,
		int64(cfg.App.MaxUploadMB)<<20,
		cfg.App.KeepUploads,
		app.Logger.Named("upload"),
	)
	answerHandler := handler.NewAnswerHandler(app.Answer)
	infographicHandler := handler.NewInfographicHandler(app.Infographic)

	router.GET("/healthz", healthHandler.Check)
	router.POST("/upload", uploadHandler.Upload)
	router.POST("/answer", answerHandler.Answer)
	router.POST("/infographic", infographicHandler.Generate)

	return router
}
