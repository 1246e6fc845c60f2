package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/sahilchouksey/exam-predict-api/api"
	"github.com/sahilchouksey/exam-predict-api/config"
	"github.com/sahilchouksey/exam-predict-api/database"
	"github.com/sahilchouksey/exam-predict-api/router"
	"github.com/sahilchouksey/exam-predict-api/services"
	"github.com/sahilchouksey/exam-predict-api/services/cron"
	"github.com/sahilchouksey/exam-predict-api/services/llm"
	"github.com/sahilchouksey/exam-predict-api/services/storage"
	"github.com/sahilchouksey/exam-predict-api/workers"
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// Initialize GORM database connection
	store, err := database.StartGORM()
	if err != nil {
		print("Check whether the Postgres is running or not\n")
		return err
	}

	if err := store.Init(); err != nil {
		print("Failed to initialize database tables\n")
		return err
	}

	db := store.DB()

	// Object storage
	objectStore, err := storage.NewS3Client(storage.S3Config{
		AccessKey: getEnv.AWS_ACCESS_KEY_ID,
		SecretKey: getEnv.AWS_SECRET_ACCESS_KEY,
		Bucket:    getEnv.AWS_S3_BUCKET,
		Region:    getEnv.AWS_REGION,
		Endpoint:  getEnv.AWS_S3_ENDPOINT,
	})
	if err != nil {
		return err
	}

	// Task queue
	queue, err := workers.NewRedisQueue(getEnv.REDIS_URL)
	if err != nil {
		print("Check whether Redis is running or not\n")
		return err
	}
	dispatcher := workers.NewDispatcher(queue)

	// LLM client
	completer := llm.NewClient(llm.Config{
		APIKey:      getEnv.LLM_API_KEY,
		BaseURL:     getEnv.LLM_BASE_URL,
		Model:       getEnv.LLM_MODEL,
		Temperature: getEnv.LLM_TEMPERATURE,
		Timeout:     getEnv.LLM_TIMEOUT,
		Retries:     getEnv.LLM_RETRIES,
		Backoff:     getEnv.LLM_BACKOFF,
	})

	// Processing pipeline
	ocrService := services.NewOCRService(objectStore, services.NewTesseractEngine(getEnv.OCR_LANGUAGE))
	textService := services.NewTextService(db, nil)
	miner := services.NewQuestionMiner(db, getEnv.DEFAULT_SUBJECT_ID)
	predictor := services.NewTopicPredictorService(db)
	paperService := services.NewPaperPredictionService(db, completer, objectStore, services.NewPDFRenderer(), predictor)
	flashcardService := services.NewFlashcardService(db, completer)
	pipeline := services.NewUploadPipeline(db, ocrService, textService, miner, paperService, flashcardService)

	// Background workers consume queued uploads until shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	worker := workers.NewWorker(queue, pipeline, getEnv.WORKER_CONCURRENCY)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Start(ctx)
	}()

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if os.Getenv("CRON_ENABLED") != "false" { // Default to enabled
		cronManager = cron.NewCronManager(db, getEnv.REAPER_THRESHOLD)
		if err := cronManager.Start(); err != nil {
			print("Warning: Failed to start cron jobs\n")
			print("Error: ", err.Error(), "\n")
			// Don't fail the app, just log the warning
		}
	}

	// Defer stopping workers, cron jobs and closing connections
	defer func() {
		stop()
		<-workerDone
		if cronManager != nil {
			cronManager.Stop()
		}
		queue.Close()
		store.Close()
	}()

	// Init API
	var server *api.APIServer = api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	// Attach Middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Setup Routes
	router.SetupRoutes(app, store, objectStore, dispatcher)

	// Shut the server down when a signal arrives
	go func() {
		<-ctx.Done()
		log.Println("Shutdown signal received")
		if err := app.Shutdown(); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start the Server
	return server.Run()
}
