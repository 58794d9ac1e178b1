package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/datastore4gh/datastore-gobackend/internal/config"
	"github.com/datastore4gh/datastore-gobackend/internal/handlers"
	"github.com/datastore4gh/datastore-gobackend/internal/paystack"
	"github.com/datastore4gh/datastore-gobackend/internal/services"
	"github.com/datastore4gh/datastore-gobackend/internal/store"
)

func main() {
	// Load .env
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Error loading .env: %s", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Connect to MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := store.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()
	log.Println("Successfully connected to MongoDB")

	db := client.Database("datastore4gh")

	transactionStore := store.NewTransactionStore(db)
	if err := transactionStore.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	gateway := paystack.NewClient(cfg)
	paymentService := services.NewPaymentService(gateway, transactionStore)
	paymentHandler := handlers.NewPaymentHandler(paymentService)

	// Set up router
	router := mux.NewRouter()
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET", "HEAD")

	router.HandleFunc("/api/create-payment", paymentHandler.CreatePayment).Methods("POST")
	router.HandleFunc("/api/verify-payment", paymentHandler.VerifyPayment).Methods("GET")
	router.HandleFunc("/api/bundles", paymentHandler.GetBundles).Methods("GET")
	router.HandleFunc("/api/payments", paymentHandler.GetPayments).Methods("GET")

	// Start server
	server := &http.Server{
		Addr:        "0.0.0.0:" + cfg.Port,
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		// Initialize can retry for up to ~100s (3 attempts, 30s each, backoff
		// between), so the write timeout has to outlast it.
		WriteTimeout: 2 * time.Minute,
	}
	log.Printf("Server running on port %s", cfg.Port)
	log.Fatal(server.ListenAndServe())
}
