package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sahilchouksey/exam-predict-api/database"
	"github.com/sahilchouksey/exam-predict-api/handlers"
	flashcard_handlers "github.com/sahilchouksey/exam-predict-api/handlers/flashcard"
	paper_handlers "github.com/sahilchouksey/exam-predict-api/handlers/paper"
	topic_handlers "github.com/sahilchouksey/exam-predict-api/handlers/topic"
	upload_handlers "github.com/sahilchouksey/exam-predict-api/handlers/upload"
	"github.com/sahilchouksey/exam-predict-api/services"
	"github.com/sahilchouksey/exam-predict-api/services/storage"
	"github.com/sahilchouksey/exam-predict-api/workers"
)

// SetupRoutes wires all HTTP routes. The heavy lifting lives in the worker
// pipeline; these routes only submit work and read state.
func SetupRoutes(app *fiber.App, store *database.GORMStore, objectStore storage.ObjectStore, dispatcher *workers.Dispatcher) {
	db := store.DB()

	uploadHandler := upload_handlers.NewUploadHandler(db, objectStore, dispatcher)
	paperHandler := paper_handlers.NewPaperHandler(db, objectStore)
	flashcardHandler := flashcard_handlers.NewFlashcardHandler(db)
	topicHandler := topic_handlers.NewTopicHandler(db, services.NewTopicPredictorService(db))

	// Health
	app.Get("/api/health", func(c *fiber.Ctx) error {
		return handlers.HandleCheckHealth(c, store)
	})

	v1 := app.Group("/api/v1")

	// Uploads
	v1.Post("/uploads", uploadHandler.SubmitUpload)
	v1.Get("/uploads", uploadHandler.ListUploads)
	v1.Get("/uploads/:id", uploadHandler.GetUpload)
	v1.Get("/uploads/:id/paper", paperHandler.GetPaperForUpload)

	// Predicted papers
	v1.Get("/papers", paperHandler.ListPapers)
	v1.Get("/papers/:id", paperHandler.GetPaper)
	v1.Get("/papers/:id/pdf", paperHandler.DownloadPaperPDF)
	v1.Get("/papers/:paper_id/flashcards", flashcardHandler.ListForPaper)

	// Flashcards
	v1.Get("/users/:user_id/flashcards", flashcardHandler.ListForUser)

	// Topic predictions
	v1.Get("/exams/:exam_id/topic-predictions", topicHandler.PredictTopics)
}
