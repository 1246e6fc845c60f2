package services

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sahilchouksey/exam-predict-api/database"
	"github.com/sahilchouksey/exam-predict-api/model"
)

// newTestDB opens a private in-memory database with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// seedTaxonomy creates a user, an exam with one subject and the given topics,
// and returns the created rows
func seedTaxonomy(t *testing.T, db *gorm.DB, topicNames ...string) (model.User, model.Exam, model.Subject, []model.Topic) {
	t.Helper()

	user := model.User{Email: t.Name() + "@example.com", Name: "Test User"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	exam := model.Exam{Name: "Sample Exam"}
	if err := db.Create(&exam).Error; err != nil {
		t.Fatalf("failed to create exam: %v", err)
	}

	subject := model.Subject{ExamID: exam.ID, Name: "Sample Subject"}
	if err := db.Create(&subject).Error; err != nil {
		t.Fatalf("failed to create subject: %v", err)
	}

	topics := make([]model.Topic, 0, len(topicNames))
	for _, name := range topicNames {
		topic := model.Topic{SubjectID: subject.ID, Name: name}
		if err := db.Create(&topic).Error; err != nil {
			t.Fatalf("failed to create topic %q: %v", name, err)
		}
		topics = append(topics, topic)
	}

	return user, exam, subject, topics
}

// seedUpload creates an upload with one stored file and returns both
func seedUpload(t *testing.T, db *gorm.DB, userID, examID uint, year int, storageKey string) (model.Upload, model.File) {
	t.Helper()

	upload := model.Upload{UserID: userID, ExamID: examID, Year: year, Status: model.UploadPending}
	if err := db.Create(&upload).Error; err != nil {
		t.Fatalf("failed to create upload: %v", err)
	}

	file := model.File{
		UploadID:         upload.ID,
		FileType:         model.FileTypeImage,
		StorageKey:       storageKey,
		OriginalFilename: "paper.png",
	}
	if err := db.Create(&file).Error; err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	return upload, file
}

// fakeCompleter returns canned responses per call, or an error
type fakeCompleter struct {
	responses []string
	err       error
	calls     int
	prompts   []string
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", errors.New("fakeCompleter: out of responses")
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

// fakeObjectStore is an in-memory object store
type fakeObjectStore struct {
	mu          sync.Mutex
	objects     map[string][]byte
	uploadErr   error
	downloadErr error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}}
}

func (f *fakeObjectStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return key, nil
}

func (f *fakeObjectStore) Download(ctx context.Context, key string) ([]byte, error) {
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("fakeObjectStore: no object %q", key)
	}
	return data, nil
}

// fakeEngine recognizes every image as the same fixed text
type fakeEngine struct {
	text string
	err  error
}

func (f *fakeEngine) Recognize(ctx context.Context, img image.Image) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

// fakeRenderer renders text as plain bytes instead of a real PDF
type fakeRenderer struct {
	err error
}

func (f *fakeRenderer) Render(text string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF " + text), nil
}
