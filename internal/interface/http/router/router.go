// Package router assembles the console's gin engine.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/xiebiao/libadmin/internal/infrastructure/config"
	"github.com/xiebiao/libadmin/internal/interface/http/handler"
	"github.com/xiebiao/libadmin/internal/interface/http/middleware"
	"github.com/xiebiao/libadmin/pkg/response"
)

// Handlers is every handler the engine routes to.
type Handlers struct {
	Auth         *handler.AuthHandler
	Screen       *handler.ScreenHandler
	Book         *handler.BookHandler
	Author       *handler.AuthorHandler
	Category     *handler.CategoryHandler
	Member       *handler.MemberHandler
	Loan         *handler.LoanHandler
	BookCategory *handler.BookCategoryHandler
	Lookup       *handler.LookupHandler
}

// New builds the engine: public routes, then /api/v1 behind the session
// cookie.
func New(cfg *config.Config, h Handlers, sessions *middleware.SessionMiddleware, log *zap.Logger) *gin.Engine {
	switch cfg.Server.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	}

	r := gin.New()
	r.Use(middleware.Tracing(), middleware.RequestLogger(log), middleware.Metrics(), gin.Recovery(), middleware.CORS(cfg.CORS))

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong", "status": "healthy"})
	})
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET(cfg.Server.LoginPath, h.Auth.LoginPage)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/logout", h.Auth.Logout)
	}

	v1 := r.Group("/api/v1")
	v1.Use(sessions.RequireSession())
	{
		screens := v1.Group("/screens/:screen")
		{
			screens.GET("", h.Screen.Open)
			screens.POST("/query", h.Screen.Query)
			screens.POST("/reset", h.Screen.Reset)
			screens.POST("/reload", h.Screen.Reload)
			screens.GET("/events", h.Screen.Events)
		}

		books := v1.Group("/books")
		{
			books.POST("", h.Book.Create)
			books.PUT("/:id", h.Book.Update)
			books.DELETE("/:id", h.Book.Delete)
			books.POST("/delete/bulk", h.Book.DeleteBulk)
			books.GET("/:id/authors", h.Book.Authors)
			books.POST("/:id/authors", h.Book.AddAuthors)
			books.DELETE("/authors/:linkId", h.Book.RemoveAuthor)
			books.GET("/:id/categories", h.Book.Categories)
			books.POST("/:id/categories", h.Book.AddCategories)
			books.DELETE("/categories/:linkId", h.Book.RemoveCategory)
		}

		authors := v1.Group("/authors")
		{
			authors.GET("", h.Lookup.Authors)
			authors.POST("", h.Author.Create)
			authors.PUT("/:id", h.Author.Update)
			authors.DELETE("/:id", h.Author.Delete)
		}
		v1.GET("/lookups", h.Lookup.All)

		categories := v1.Group("/categories")
		{
			categories.GET("/all", h.Lookup.Categories)
			categories.POST("", h.Category.Create)
			categories.PUT("/:id", h.Category.Rename)
			categories.DELETE("/:id", h.Category.Delete)
			categories.GET("/:id/books", h.Category.Books)
		}

		members := v1.Group("/members")
		{
			members.POST("", h.Member.Create)
			members.PUT("/:id", h.Member.Update)
			members.DELETE("/:id", h.Member.Delete)
			members.GET("/:id/loans", h.Member.Loans)
		}

		loans := v1.Group("/loans")
		{
			loans.GET("/:id", h.Loan.Get)
			loans.POST("", h.Loan.Create)
			loans.PUT("/:id", h.Loan.Update)
			loans.DELETE("/:id", h.Loan.Delete)
			loans.POST("/:id/return", h.Loan.Return)
		}

		bulk := v1.Group("/bookcategories/:bookId")
		{
			bulk.GET("/available", h.BookCategory.Available)
			bulk.POST("", h.BookCategory.Reconcile)
		}
	}

	return r
}
