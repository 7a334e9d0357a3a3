package router

import (
	"hortifood/domain"
	"hortifood/internal/middleware"
	"hortifood/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupAuthRoutes(api *echo.Group, handler *rest.AuthHandler, authRequired, rateLimit echo.MiddlewareFunc) {
	auth := api.Group("/auth")

	auth.POST("/register", handler.Register, rateLimit)
	auth.POST("/login", handler.Login, rateLimit)
	auth.POST("/refresh", handler.Refresh, rateLimit)
	auth.POST("/forgot-password", handler.ForgotPassword, rateLimit)
	auth.POST("/reset-password", handler.ResetPassword, rateLimit)

	auth.GET("/me", handler.Me, authRequired)
	auth.POST("/logout", handler.Logout, authRequired)
}

func SetupUserRoutes(api *echo.Group, handler *rest.UserHandler, authRequired echo.MiddlewareFunc) {
	users := api.Group("/users", authRequired)

	favorites := users.Group("/me/favorites", middleware.Require(domain.CapFavoritesManage))
	favorites.GET("", handler.ListFavorites)
	favorites.POST("/:productId", handler.AddFavorite)
	favorites.DELETE("/:productId", handler.RemoveFavorite)

	users.GET("", handler.GetAllUsers, middleware.Require(domain.CapUsersAdmin))
	users.GET("/:id", handler.GetUserByID, middleware.SelfOrAdmin())
	users.PATCH("/:id", handler.UpdateUser, middleware.SelfOrAdmin())
	users.DELETE("/:id", handler.DeleteUser, middleware.Require(domain.CapUsersAdmin))
}

func SetupHortifruitRoutes(api *echo.Group, handler *rest.HortifruitHandler, authRequired echo.MiddlewareFunc) {
	hortifruits := api.Group("/hortifruits")

	hortifruits.GET("", handler.FindAll)
	hortifruits.GET("/:id", handler.FindOne)

	hortifruits.POST("", handler.Create, authRequired, middleware.Require(domain.CapHortifruitsAdmin))
	hortifruits.DELETE("/:id", handler.Delete, authRequired, middleware.Require(domain.CapHortifruitsAdmin))
	hortifruits.PATCH("/:id", handler.Update, authRequired, middleware.Require(domain.CapStoreOperate))
	hortifruits.PATCH("/:id/status", handler.UpdateOperatingStatus, authRequired, middleware.Require(domain.CapStoreOperate))
	hortifruits.POST("/:id/ratings", handler.AddRating, authRequired, middleware.Require(domain.CapHortifruitsRate))
}

func SetupCategoryRoutes(api *echo.Group, handler *rest.CategoryHandler, authRequired echo.MiddlewareFunc) {
	categories := api.Group("/categories")

	categories.GET("", handler.GetAllCategories)
	categories.GET("/popular", handler.Popular)
	categories.GET("/:id", handler.GetCategoryByID)

	manage := []echo.MiddlewareFunc{authRequired, middleware.Require(domain.CapCategoriesManage)}
	categories.POST("", handler.CreateCategory, manage...)
	categories.PATCH("/:id", handler.UpdateCategory, manage...)
	categories.DELETE("/:id", handler.DeleteCategory, manage...)
	categories.PATCH("/:id/deactivate", handler.Deactivate, manage...)
}

func SetupProductRoutes(api *echo.Group, handler *rest.ProductHandler, authRequired echo.MiddlewareFunc) {
	products := api.Group("/products")

	products.GET("/hortifruit/:hortifruitId", handler.ListByVendor)
	products.GET("/hortifruit/:hortifruitId/featured", handler.Featured)
	products.GET("/category/:categoryId", handler.ListByCategory)
	products.GET("/:id", handler.GetProduct)

	manage := []echo.MiddlewareFunc{authRequired, middleware.Require(domain.CapProductsManage)}
	products.GET("/export", handler.Export, manage...)
	products.POST("", handler.CreateProduct, manage...)
	products.PATCH("/:id", handler.UpdateProduct, manage...)
	products.DELETE("/:id", handler.DeleteProduct, manage...)
	products.PATCH("/:id/availability", handler.ToggleAvailability, manage...)
	products.PATCH("/:id/featured", handler.ToggleFeatured, manage...)
}

func SetupAddressRoutes(api *echo.Group, handler *rest.AddressHandler, authRequired echo.MiddlewareFunc) {
	addresses := api.Group("/addresses", authRequired, middleware.Require(domain.CapAddressesManage))

	addresses.POST("", handler.Create)
	addresses.GET("", handler.FindAll)
	addresses.GET("/:id", handler.FindOne)
	addresses.PATCH("/:id", handler.Update)
	addresses.PATCH("/:id/default", handler.SetDefault)
	addresses.DELETE("/:id", handler.Remove)
}

func SetupCartRoutes(api *echo.Group, handler *rest.CartHandler, authRequired echo.MiddlewareFunc) {
	carts := api.Group("/carts", authRequired, middleware.Require(domain.CapCartManage))

	carts.GET("", handler.GetCart)
	carts.GET("/active", handler.GetActiveCart)
	carts.GET("/:id", handler.GetCartByID)
	carts.POST("/items", handler.AddItem)
	carts.PUT("/items/:id", handler.UpdateItem)
	carts.DELETE("/items/:id", handler.RemoveItem)
	carts.POST("/checkout/:id", handler.Checkout)
	carts.DELETE("/clear", handler.Clear)
}
