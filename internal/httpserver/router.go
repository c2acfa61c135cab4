package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/emotion_diary/internal/middleware/auth"
	"github.com/Skotchmaster/emotion_diary/pkg/logging"
)

type Deps struct {
	Account   *AccountHTTP
	Diary     *DiaryHTTP
	Tag       *TagHTTP
	Chart     *ChartHTTP
	Knowledge *KnowledgeHTTP
	Theory    *TheoryHTTP
	Admin     *AdminHTTP
	Auth      *authmw.Middleware
	// Ready reports whether backing stores can serve requests.
	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				logging.FromContext(c.Request().Context()).Error("not_ready", "error", err)
				return c.NoContent(http.StatusServiceUnavailable)
			}
		}
		return c.NoContent(http.StatusOK)
	})

	api := e.Group("/api")

	account := api.Group("/account")
	account.POST("/register", d.Account.Register)
	account.POST("/login", d.Account.Login)
	account.GET("/current", d.Account.Current, d.Auth.RequireUser)
	account.POST("/password", d.Account.ChangePassword, d.Auth.RequireUser)

	protected := api.Group("/protected")
	protected.GET("/user", whoami("hello, user"), d.Auth.RequireUser)
	protected.GET("/admin", whoami("hello, admin"), d.Auth.RequireAdmin)

	diary := api.Group("/diary", d.Auth.RequireUser)
	diary.GET("", d.Diary.List)
	diary.POST("", d.Diary.Create)
	diary.GET("/search", d.Diary.Search)
	diary.GET("/:id", d.Diary.Get)
	diary.PATCH("/:id", d.Diary.Patch)
	diary.DELETE("/:id", d.Diary.Delete)
	diary.POST("/:id/analysis", d.Diary.Analyze)

	tags := api.Group("/tags", d.Auth.RequireUser)
	tags.GET("", d.Tag.List)
	tags.POST("", d.Tag.Create)
	tags.DELETE("/:id", d.Tag.Delete)

	charts := api.Group("/analysis/chart", d.Auth.RequireUser)
	charts.GET("/donut", d.Chart.Donut)
	charts.GET("/:period", d.Chart.Trend)

	knowledge := api.Group("/knowledge")
	knowledge.GET("/list", d.Knowledge.List)
	knowledge.GET("/recommend", d.Knowledge.Recommend)

	api.GET("/theory", d.Theory.Analyze, d.Auth.RequireUser)

	admin := api.Group("/admin", d.Auth.RequireAdmin)
	admin.GET("/users", d.Admin.ListUsers)
	admin.POST("/users/:id/roles", d.Admin.GrantRole)
	admin.DELETE("/users/:id/roles/:role", d.Admin.RevokeRole)
	admin.GET("/diaries", d.Diary.ListAll)
}
