// routes/routes.go
package routes

import (
	"net/http"

	"farm-market/controllers"
	"farm-market/middleware"
	"farm-market/models"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, auth *middleware.Auth, userController *controllers.UserController, productController *controllers.ProductController, cartController *controllers.CartController) {
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Server is ready"))
	}).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Public routes
	router.HandleFunc("/identities", userController.Register).Methods("POST")
	router.HandleFunc("/auth", userController.Login).Methods("POST")
	router.HandleFunc("/auth/logout", userController.Logout).Methods("POST")
	router.HandleFunc("/products", productController.GetProducts).Methods("GET")
	router.HandleFunc("/products/{id}", productController.GetProductByID).Methods("GET")

	// Profile routes, any authenticated identity
	profile := router.PathPrefix("/identities/me").Subrouter()
	profile.Use(auth.Authenticate)
	profile.HandleFunc("", userController.GetProfile).Methods("GET")
	profile.HandleFunc("", userController.UpdateProfile).Methods("PUT")

	// Cart routes, buyers only
	cart := router.PathPrefix("/cart").Subrouter()
	cart.Use(auth.Authenticate)
	cart.Use(auth.RequireRole(models.RoleBuyer))
	cart.HandleFunc("", cartController.AddToCart).Methods("POST")
	cart.HandleFunc("", cartController.GetCart).Methods("GET")
	cart.HandleFunc("", cartController.UpdateCartItem).Methods("PUT")
	cart.HandleFunc("/remove/{productId}", cartController.RemoveFromCart).Methods("DELETE")
	cart.HandleFunc("/clear", cartController.ClearCart).Methods("DELETE")

	// Farmer routes, farmer-sellers only
	farmer := router.PathPrefix("/farmers").Subrouter()
	farmer.Use(auth.Authenticate)
	farmer.Use(auth.RequireRole(models.RoleFarmer))
	farmer.HandleFunc("/products", productController.CreateProduct).Methods("POST")
	farmer.HandleFunc("/products", productController.GetFarmerProducts).Methods("GET")
	farmer.HandleFunc("/products/{id}", productController.DeleteProduct).Methods("DELETE")
}
