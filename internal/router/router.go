package router

import (
	"net/http"

	"elegance/internal/auth"
	"elegance/internal/handler"
	"elegance/internal/middleware"
	"elegance/internal/repository"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	userHandler *handler.UserHandler,
	perfumeHandler *handler.PerfumeHandler,
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	tokens *auth.TokenManager,
	users repository.UserRepository,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	authed := middleware.Authenticate(tokens, users, logger)
	admin := func(h http.Handler) http.Handler {
		return authed(middleware.RequireAdmin(logger)(h))
	}

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Accounts
	mux.HandleFunc("POST /api/users/register", userHandler.Register)
	mux.HandleFunc("POST /api/users/login", userHandler.Login)
	mux.Handle("GET /api/users/profile", authed(http.HandlerFunc(userHandler.Profile)))
	mux.Handle("PUT /api/users/update", authed(http.HandlerFunc(userHandler.UpdateProfile)))
	mux.Handle("GET /api/users/verifytoken", authed(http.HandlerFunc(userHandler.VerifyToken)))

	// Catalog. Reads are public, creation is admin-only; updates and deletes
	// are checked against ownership in the service.
	mux.HandleFunc("GET /api/perfumes", perfumeHandler.GetAll)
	mux.HandleFunc("GET /api/perfumes/{id}", perfumeHandler.GetByID)
	mux.Handle("POST /api/perfumes", admin(http.HandlerFunc(perfumeHandler.Create)))
	mux.Handle("PUT /api/perfumes/{id}", authed(http.HandlerFunc(perfumeHandler.Update)))
	mux.Handle("DELETE /api/perfumes/{id}", authed(http.HandlerFunc(perfumeHandler.Delete)))

	// Cart
	mux.Handle("GET /api/cart", authed(http.HandlerFunc(cartHandler.Get)))
	mux.Handle("DELETE /api/cart", authed(http.HandlerFunc(cartHandler.Clear)))
	mux.Handle("POST /api/cart/items", authed(http.HandlerFunc(cartHandler.AddItem)))
	mux.Handle("PUT /api/cart/items/{perfumeId}", authed(http.HandlerFunc(cartHandler.UpdateItem)))
	mux.Handle("DELETE /api/cart/items/{perfumeId}", authed(http.HandlerFunc(cartHandler.RemoveItem)))

	// Checkout and orders. The webhook is called by the payment provider and
	// is authenticated by its signature, not by a bearer token.
	mux.HandleFunc("POST /api/orders/webhook", orderHandler.Webhook)
	mux.Handle("POST /api/orders/create-payment-intent", authed(http.HandlerFunc(orderHandler.CreatePaymentIntent)))
	mux.Handle("POST /api/orders/confirm", authed(http.HandlerFunc(orderHandler.Confirm)))
	mux.Handle("GET /api/orders/myorders", authed(http.HandlerFunc(orderHandler.ListMine)))
	mux.Handle("GET /api/orders/payment-intent/{id}", authed(http.HandlerFunc(orderHandler.GetPaymentIntent)))
	mux.Handle("GET /api/orders/{id}", authed(http.HandlerFunc(orderHandler.GetByID)))

	// Apply middleware in order: Recovery -> Logging -> CORS
	var h http.Handler = mux
	h = middleware.CORS(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
