package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/rebertiger/student-chat/internal/auth"
	"github.com/rebertiger/student-chat/internal/config"
	"github.com/rebertiger/student-chat/internal/metrics"
	"github.com/rebertiger/student-chat/internal/mw"
	"github.com/rebertiger/student-chat/internal/service"
	"github.com/rebertiger/student-chat/internal/upload"
	"github.com/rebertiger/student-chat/internal/ws"
)

// SetupRouter wires middleware, the REST API, the websocket endpoint and
// static upload serving.
func SetupRouter(cfg config.Config, db *gorm.DB, hub *ws.Hub, uploads *upload.Store) *gin.Engine {
	users := service.NewUserService(db, cfg)
	rooms := service.NewRoomService(db, hub)
	messages := service.NewMessageService(db)
	profiles := service.NewProfileService(db)
	subjects := service.NewSubjectService(db)
	h := NewHandler(users, rooms, messages, profiles, subjects, uploads, hub)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(metrics.GinMiddleware())
	r.Use(mw.CORS(cfg.Env))
	r.Use(mw.RateLimit(rate.Every(time.Second/20), 40))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.POST("/auth/refresh", h.RefreshToken)

	authed := api.Group("")
	authed.Use(auth.Middleware(cfg, db))

	authed.DELETE("/auth/delete", h.DeleteAccount)

	authed.GET("/rooms", h.ListRooms)
	authed.POST("/rooms", h.CreateRoom)
	authed.GET("/rooms/:roomId", h.GetRoom)
	authed.POST("/rooms/:roomId/join", h.JoinRoom)
	authed.GET("/rooms/:roomId/messages", h.ListMessages)
	authed.POST("/rooms/:roomId/files", h.UploadFile)
	authed.DELETE("/rooms/:roomId", h.DeleteRoom)

	authed.GET("/profile", h.GetProfile)
	authed.PUT("/profile", h.UpdateProfile)

	authed.GET("/subjects", h.ListSubjects)
	authed.POST("/subjects", h.AddSubject)
	authed.GET("/subjects/user", h.ListUserSubjects)
	authed.POST("/subjects/user", h.AddUserSubject)
	authed.DELETE("/subjects/user/:subjectId", h.RemoveUserSubject)

	// :id is a room id for list/create/count and a message id for report;
	// gin requires one wildcard name per segment.
	authed.GET("/messages/:id", h.ListMessages)
	authed.POST("/messages/:id", h.CreateMessage)
	authed.GET("/messages/:id/count", h.CountMessages)
	authed.POST("/messages/:id/report", h.ReportMessage)

	authed.GET("/reports", h.ListReports)
	authed.POST("/reports/message", h.ReportMessageBody)

	r.GET("/ws", ws.Serve(hub, db, cfg, rooms, messages))
	r.Static("/uploads", uploads.Dir())

	return r
}
