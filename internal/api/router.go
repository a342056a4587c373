package api

import (
	"net/http" // HTTP status codes

	"paywin/internal/auth"       // Session tokens
	"paywin/internal/metrics"    // Prometheus collectors
	"paywin/internal/middleware" // Auth, admin, rate limit
	"paywin/internal/repository" // Role lookups
	"paywin/internal/service"    // Use cases

	"github.com/gin-gonic/gin"                                // Gin web framework
	"github.com/prometheus/client_golang/prometheus"          // Metrics registry
	"github.com/prometheus/client_golang/prometheus/promhttp" // Scrape handler
)

// Deps is everything the router needs
type Deps struct {
	Store       repository.Store
	Tokens      *auth.Tokens
	Games       *service.GameService
	Wallet      *service.WalletService
	Withdrawals *service.WithdrawalService
	Payments    *service.PaymentService
	Feed        *service.FeedService
	Admin       *service.AdminService
	Limiter     *middleware.RateLimiter // Nil disables play rate limiting
	Metrics     *metrics.Metrics        // Nil disables request metrics
	Gatherer    prometheus.Gatherer     // Nil hides /metrics
}

// NewRouter registers every route on a fresh gin engine
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middleware.RequestMetrics(d.Metrics))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) }) // Liveness check
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// Public routes
	r.POST("/auth/register", RegisterHandler(d.Wallet))            // Registration endpoint
	r.POST("/auth/login", LoginHandler(d.Wallet))                  // Login endpoint
	r.GET("/games", ListGamesHandler())                            // Lobby catalog
	r.GET("/games/:id", GetGameHandler())                          // Single game
	r.GET("/leaderboard", LeaderboardHandler(d.Wallet))            // Top balances
	r.POST("/payments/webhook", PaymentWebhookHandler(d.Payments)) // Provider callback, HMAC signed

	authed := r.Group("/", middleware.JWTAuthMiddleware(d.Tokens)) // Everything below needs a token

	games := authed.Group("/games")
	games.GET("/bet/adjust", AdjustBetHandler(d.Games))     // Stake controls
	games.GET("/mines/active", ActiveMinesHandler(d.Games)) // Open rounds

	plays := games.Group("") // Rate limited game actions
	if d.Limiter != nil {
		plays.Use(d.Limiter.Middleware())
	}
	plays.POST("/dice", PlayDiceHandler(d.Games))                  // Even/odd dice
	plays.POST("/plus-ou-moins", PlayOverUnderHandler(d.Games))    // Over/under dice
	plays.POST("/plinko", PlayPlinkoHandler(d.Games))              // Plinko drop
	plays.POST("/mines", StartMinesHandler(d.Games))               // Open a mine round
	plays.POST("/mines/:id/reveal", RevealMineHandler(d.Games))    // Reveal a cell
	plays.POST("/mines/:id/cashout", CashoutMinesHandler(d.Games)) // Cash out a round

	authed.GET("/profile", GetProfileHandler(d.Wallet))          // Own profile
	authed.PATCH("/profile", UpdateProfileHandler(d.Wallet))     // Edit profile
	authed.PUT("/profile/avatar", UploadAvatarHandler(d.Wallet)) // Avatar upload

	wallet := authed.Group("/wallet")
	wallet.GET("/transactions", TransactionHistoryHandler(d.Wallet)) // Ledger
	wallet.GET("/bets", BetHistoryHandler(d.Wallet))                 // Bet history
	wallet.POST("/transfer", TransferHandler(d.Wallet))              // Player to player transfer
	authed.POST("/bonus/redeem", RedeemCodeHandler(d.Wallet))        // Recharge code

	authed.POST("/withdrawals", RequestWithdrawalHandler(d.Withdrawals)) // Request a withdrawal
	authed.GET("/withdrawals", ListWithdrawalsHandler(d.Withdrawals))    // Own withdrawals
	authed.POST("/payments", InitiatePaymentHandler(d.Payments))         // Provider top-up

	feed := authed.Group("/feed/posts")
	feed.GET("", ListPostsHandler(d.Feed))                 // Wall
	feed.POST("", CreatePostHandler(d.Feed))               // New post
	feed.POST("/:id/like", ToggleLikeHandler(d.Feed))      // Like or unlike
	feed.GET("/:id/comments", ListCommentsHandler(d.Feed)) // Comments
	feed.POST("/:id/comments", AddCommentHandler(d.Feed))  // New comment

	// Admin routes (protected, admin only)
	admin := authed.Group("/admin", middleware.AdminOnlyMiddleware(d.Store))
	admin.GET("/users", ListUsersHandler(d.Admin))                          // List users endpoint
	admin.GET("/transactions", ListTransactionsHandler(d.Admin))            // List transactions endpoint
	admin.GET("/transactions/export", ExportTransactionsHandler(d.Admin))   // XLSX export
	admin.POST("/recharge-codes", CreateRechargeCodesHandler(d.Admin))      // Issue codes
	admin.PATCH("/withdrawals/:id", UpdateWithdrawalHandler(d.Withdrawals)) // Review a withdrawal

	return r
}
