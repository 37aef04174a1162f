package main

import (
	"fmt"
	"log"
	"os"

	"crop-asr-qa-platform/backend/internal/apigateway"
	"crop-asr-qa-platform/backend/internal/auth"
	"crop-asr-qa-platform/backend/internal/coreengine/vendoradapters"
	"crop-asr-qa-platform/backend/internal/datastore"
	"crop-asr-qa-platform/backend/internal/objectstore"
	"crop-asr-qa-platform/backend/internal/sessionmanagement"
	"crop-asr-qa-platform/backend/internal/vocabulary"
)

func main() {
	auth.LoadAdminCredentials()

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSSLMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		log.Println("WARNING: DB_PASSWORD environment variable not set.")
	}
	if dbName == "" {
		dbName = "crop_asr_qa_db"
	}
	if dbSSLMode == "" {
		dbSSLMode = "disable"
	}

	dataSourceName := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode)

	if err := datastore.InitDB(dataSourceName); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer datastore.DB.Close()

	if err := objectstore.InitMinioClient(); err != nil {
		log.Fatalf("Failed to initialize MinIO client: %v", err)
	}
	minioClient, err := objectstore.GetGlobalMinioClient()
	if err != nil {
		log.Fatalf("Failed to get MinIO client: %v", err)
	}

	vendoradapters.InitAdapterRegistry(minioClient)
	sessionmanagement.InitSessionService(minioClient, vocabulary.StoreSource{})

	router := apigateway.SetupRouter()

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}
	log.Printf("Starting server on :%s", serverPort)
	if err := router.Run(":" + serverPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
