package main

import (
	"context"
	"log"
	"os"
	"time"

	"ordersystem/internal/cache"
	"ordersystem/internal/controllers/http"
	"ordersystem/internal/infra/mysql"
	"ordersystem/internal/infra/rabbitmq"
	mysqlrepo "ordersystem/internal/repository/mysql"
	"ordersystem/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	db, err := mysql.NewMySQLFromEnv()
	if err != nil {
		log.Fatalf("db: connect: %v", err)
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1000)
	sqlDB.SetMaxIdleConns(200)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	orderRepo := mysqlrepo.NewOrderRepository(db)
	productRepo := mysqlrepo.NewProductRepository(db)
	cartRepo := mysqlrepo.NewCartRepository(db)

	redisClient := redis.NewClient(&redis.Options{
		Addr:         os.Getenv("REDIS_HOST") + ":6379",
		DB:           0,
		PoolSize:     200,
		MinIdleConns: 20,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
	accessor := cache.NewAccessor(cache.NewRedisStore(redisClient))

	publisher, err := rabbitmq.NewPublisher(os.Getenv("RABBITMQ_URL"), "order.exchange")
	if err != nil {
		log.Fatalf("failed to init publisher: %v", err)
	}
	defer publisher.Close()

	orderService := services.NewOrderService(orderRepo, productRepo, accessor, publisher)
	productService := services.NewProductService(productRepo, orderRepo, accessor)
	cartService := services.NewCartService(cartRepo, productRepo, orderService, accessor)

	go func() {
		time.Sleep(5 * time.Second)
		ctx := context.Background()
		if err := productService.WarmupProductCache(ctx, 500); err != nil {
			log.Printf("product cache warmup: %v", err)
		}
		if err := orderService.WarmupOrderCache(ctx, 500); err != nil {
			log.Printf("order cache warmup: %v", err)
		}
	}()

	handler := http.NewHandler(orderService, productService, cartService)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	handler.RegisterRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("starting order system on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server run: %v", err)
	}
}
