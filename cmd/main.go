package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/ukgarage/garage-manager/internal/auth"
	"github.com/ukgarage/garage-manager/internal/booking"
	"github.com/ukgarage/garage-manager/internal/db"
	"github.com/ukgarage/garage-manager/internal/handlers"
	"github.com/ukgarage/garage-manager/internal/membership"
	"github.com/ukgarage/garage-manager/internal/middleware"
	"github.com/ukgarage/garage-manager/internal/notify"
)

func main() {
	_ = godotenv.Load()

	if level, err := log.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}

	client, err := db.ConnectMongo()
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	log.Info("Connected to MongoDB")

	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "garage"
	}
	database := client.Database(dbName)

	users := &db.MongoUserCollection{Collection: database.Collection("users")}
	services := &db.MongoServiceCollection{Collection: database.Collection("services")}
	parts := &db.MongoPartCollection{Collection: database.Collection("parts")}
	bookings := &db.MongoBookingCollection{Collection: database.Collection("bookings")}

	authService, err := auth.NewService()
	if err != nil {
		log.WithError(err).Fatal("Failed to create auth service")
	}

	resolver := membership.NewResolver(os.Getenv("MEMBERSHIP_URL"))

	var alerter booking.StockAlerter = notify.NopAlerter{}
	if broker := os.Getenv("MQTT_BROKER"); broker != "" {
		mqttAlerter, err := notify.NewMQTTAlerter(broker, "garage-manager")
		if err != nil {
			log.WithError(err).Warn("Low-stock alerts disabled, MQTT broker unreachable")
		} else {
			defer mqttAlerter.Close()
			alerter = mqttAlerter
		}
	}

	reservations := booking.NewReservationService(services, parts, bookings, resolver, alerter)

	authHandler := handlers.NewAuthHandler(authService, users)
	catalogHandler := handlers.NewCatalogHandler(services)
	partsHandler := handlers.NewPartsHandler(parts)
	quoteHandler := handlers.NewQuoteHandler(services, parts, resolver)
	bookingHandler := handlers.NewBookingHandler(reservations, bookings)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", authHandler.Login)
	mux.HandleFunc("/api/auth/register", authHandler.Register)
	mux.HandleFunc("/api/auth/profile", authHandler.GetProfile)
	mux.HandleFunc("/api/services", catalogHandler.HandleServices)
	mux.HandleFunc("/api/services/", catalogHandler.HandleServiceByID)
	mux.HandleFunc("/api/parts", partsHandler.HandleParts)
	mux.HandleFunc("/api/parts/lookup", partsHandler.HandleLookup)
	mux.HandleFunc("/api/parts/", partsHandler.HandlePartByID)
	mux.HandleFunc("/api/quote", quoteHandler.HandleQuote)
	mux.HandleFunc("/api/bookings", bookingHandler.HandleBookings)
	mux.HandleFunc("/api/bookings/", bookingHandler.HandleBookingByID)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	authMiddleware := middleware.NewAuthMiddleware(authService)
	rateLimiter := middleware.NewRateLimitMiddleware()
	handler := rateLimiter.RateLimit(120, 60)(authMiddleware.Authenticate(mux))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.WithField("port", port).Info("Garage manager API listening")
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
