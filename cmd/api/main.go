package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/TuanAnh-P/TuuShop/internal/config"
	"github.com/TuanAnh-P/TuuShop/internal/handler"
	"github.com/TuanAnh-P/TuuShop/internal/middleware"
	"github.com/TuanAnh-P/TuuShop/internal/repository"
	"github.com/TuanAnh-P/TuuShop/internal/service"
	"github.com/TuanAnh-P/TuuShop/internal/worker"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// MongoDB
	mongoClient, err := repository.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		log.Error("connect to MongoDB", "error", err)
		os.Exit(1)
	}
	defer mongoClient.Disconnect(context.Background())

	db := mongoClient.Database(cfg.Mongo.Database)
	if err := repository.EnsureIndexes(ctx, db); err != nil {
		log.Error("ensure indexes", "error", err)
		os.Exit(1)
	}
	log.Info("connected to MongoDB")

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("connect to Redis", "error", err)
		os.Exit(1)
	}
	log.Info("connected to Redis")

	// RabbitMQ
	amqpConn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		log.Error("connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer amqpConn.Close()

	amqpCh, err := amqpConn.Channel()
	if err != nil {
		log.Error("open RabbitMQ channel", "error", err)
		os.Exit(1)
	}
	defer amqpCh.Close()

	if err := worker.SetupRabbitMQ(amqpCh); err != nil {
		log.Error("setup RabbitMQ", "error", err)
		os.Exit(1)
	}
	log.Info("connected to RabbitMQ")

	// Repositories
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// Services
	authSvc := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	userSvc := service.NewUserService(userRepo)
	productSvc := service.NewProductService(productRepo, redisClient, cfg.App.PageSize)
	cartSvc := service.NewCartService(cartRepo, productRepo)
	orderSvc := service.NewOrderService(orderRepo, cartRepo, amqpCh)

	// Handlers
	secureCookies := cfg.App.Env != "development"
	userH := handler.NewUserHandler(authSvc, userSvc, secureCookies)
	productH := handler.NewProductHandler(productSvc)
	cartH := handler.NewCartHandler(cartSvc)
	orderH := handler.NewOrderHandler(orderSvc)
	healthH := handler.NewHealthHandler(mongoClient, redisClient, amqpConn)

	// Worker
	fulfillmentWorker := worker.NewFulfillmentWorker(amqpCh, orderRepo, productRepo, redisClient, log)

	// Router
	protect := middleware.Protect(cfg.JWT.Secret, userRepo)
	admin := middleware.AdminOnly()

	router := gin.Default()
	router.GET("/healthz", healthH.Healthz)
	router.GET("/readyz", healthH.Readyz)

	api := router.Group("/api")
	{
		users := api.Group("/users")
		users.POST("/auth", userH.Login)
		users.POST("", userH.Register)
		users.POST("/logout", userH.Logout)
		users.GET("/profile", protect, userH.GetProfile)
		users.PUT("/profile", protect, userH.UpdateProfile)
		users.GET("", protect, admin, userH.ListUsers)
		users.GET("/:id", protect, admin, userH.GetUser)
		users.PUT("/:id", protect, admin, userH.UpdateUser)
		users.DELETE("/:id", protect, admin, userH.DeleteUser)

		products := api.Group("/products")
		products.GET("", productH.List)
		products.GET("/top", productH.Top)
		products.GET("/:id", productH.GetByID)
		products.POST("", protect, admin, productH.Create)
		products.PUT("/:id", protect, admin, productH.Update)
		products.DELETE("/:id", protect, admin, productH.Delete)
		products.POST("/:id/reviews", protect, productH.CreateReview)

		cart := api.Group("/cart", protect)
		cart.GET("", cartH.GetCart)
		cart.POST("/items", cartH.AddItem)
		cart.DELETE("/items/:productId", cartH.RemoveItem)
		cart.PUT("/shipping", cartH.SaveShippingAddress)
		cart.PUT("/payment", cartH.SavePaymentMethod)

		orders := api.Group("/orders", protect)
		orders.POST("", orderH.CreateOrder)
		orders.GET("/myorders", orderH.GetMyOrders)
		orders.GET("", admin, orderH.ListOrders)
		orders.GET("/:id", orderH.GetOrder)
		orders.PUT("/:id/pay", orderH.PayOrder)
		orders.PUT("/:id/deliver", admin, orderH.DeliverOrder)
	}

	if err := fulfillmentWorker.Start(ctx); err != nil {
		log.Error("start fulfillment worker", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting HTTP server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "error", err)
	}

	fulfillmentWorker.Stop()
	time.Sleep(500 * time.Millisecond)
	cancel()
	log.Info("server stopped")
}
