package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/couchsync/couchsync/internal/adapters/signal"
	"github.com/couchsync/couchsync/internal/config"
	"github.com/couchsync/couchsync/internal/core"
	"github.com/couchsync/couchsync/internal/domain"
)

func genClientToken() string {
	return uuid.NewString()
}

// ClientTokenMiddleware assigns the stable connection identifier used as
// the participant id on the websocket side.
func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

type createRoomRequest struct {
	VideoID string `json:"videoId" binding:"required"`
}

func SetupRouter(ctx context.Context, cfg *config.Config, store *core.RoomStore, ctrl *signal.WatchWSController) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	cookieStore := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("CouchSessions", cookieStore))
	r.Use(ClientTokenMiddleware())

	api := r.Group("/api")

	api.POST("/create-room", func(c *gin.Context) {
		var req createRoomRequest
		if err := c.ShouldBindJSON(&req); err != nil || domain.ValidateVideoID(req.VideoID) != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid YouTube video ID."})
			return
		}
		roomID, err := store.Create(domain.VideoID(req.VideoID))
		if err != nil {
			log.Error().Err(err).Str("module", "adapters.http").Msg("create room")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create room."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"roomId": roomID})
	})

	api.GET("/room/:roomId", func(c *gin.Context) {
		videoID, ok := store.VideoID(domain.RoomID(c.Param("roomId")))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Room not found."})
			return
		}
		c.JSON(http.StatusOK, gin.H{"videoId": videoID})
	})

	api.GET("/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": store.List()})
	})

	api.GET("/ws/watch", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("sid", c.GetString("client_token")).Msg("ws watch endpoint hit")
		ctrl.HandleWatch(ctx, c)
	})

	return r
}
