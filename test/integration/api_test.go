// Package integration contains tests that exercise the full HTTP API with
// real handler wiring against a PostgreSQL database. Kafka and Redis are
// left out; the service degrades to synchronous operation without them.
//
// The schema from migrations/001_init.sql must be applied to the test
// database. Run with:
//
//	go test -v ./test/integration/...
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/avdeevsm/tfidf-analyzer/internal/analytics"
	"github.com/avdeevsm/tfidf-analyzer/internal/analyzer"
	"github.com/avdeevsm/tfidf-analyzer/internal/auth"
	"github.com/avdeevsm/tfidf-analyzer/internal/auth/ratelimit"
	"github.com/avdeevsm/tfidf-analyzer/internal/collection"
	"github.com/avdeevsm/tfidf-analyzer/internal/corpus"
	"github.com/avdeevsm/tfidf-analyzer/internal/document"
	dochandler "github.com/avdeevsm/tfidf-analyzer/internal/document/handler"
	"github.com/avdeevsm/tfidf-analyzer/internal/server"
	"github.com/avdeevsm/tfidf-analyzer/pkg/config"
	apperrors "github.com/avdeevsm/tfidf-analyzer/pkg/errors"
	"github.com/avdeevsm/tfidf-analyzer/pkg/health"
	"github.com/avdeevsm/tfidf-analyzer/pkg/postgres"
	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// skipIfNoPostgres skips the test when PostgreSQL is unavailable.
func skipIfNoPostgres(t *testing.T) *postgres.Client {
	t.Helper()
	cfg := testPostgresConfig()
	db, err := postgres.New(cfg)
	if err != nil {
		t.Skipf("skipping integration test: postgres unavailable: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testPostgresConfig() config.PostgresConfig {
	return config.PostgresConfig{
		Host:            envOrDefault("TEST_POSTGRES_HOST", "localhost"),
		Port:            envOrDefaultInt("TEST_POSTGRES_PORT", 5432),
		Database:        envOrDefault("TEST_POSTGRES_DB", "tfidf_test"),
		User:            envOrDefault("TEST_POSTGRES_USER", "tfidf"),
		Password:        envOrDefault("TEST_POSTGRES_PASSWORD", "localdev"),
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// newAPIServer wires the full router against the test database.
func newAPIServer(t *testing.T, db *postgres.Client) *httptest.Server {
	t.Helper()

	corpusStore := corpus.NewPostgresStore(db)
	tfidfAnalyzer, err := analyzer.New(analyzer.Config{TopWords: 50}, corpusStore)
	if err != nil {
		t.Fatalf("analyzer.New: %v", err)
	}

	repo := document.NewRepository(db)
	docService := document.NewService(repo, tfidfAnalyzer, corpusStore, nil, nil, nil, 1_000_000)

	authService, err := auth.NewService(auth.NewPostgresStore(db), "integration-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("auth.NewService: %v", err)
	}

	collectionService := collection.NewService(collection.NewRepository(db), nil, 50)

	handler := server.New(server.Deps{
		Documents:      dochandler.New(docService, 1_000_000),
		Collections:    collection.NewHandler(collectionService),
		Auth:           auth.NewHandler(authService),
		AuthService:    authService,
		Analytics:      analytics.NewHandler(analytics.NewAggregator(nil)),
		Health:         health.NewChecker(),
		Limiter:        ratelimit.New(1000, time.Minute),
		RequestTimeout: 30 * time.Second,
	})
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func registerAndLogin(t *testing.T, baseURL string) string {
	t.Helper()
	creds := map[string]string{
		"username": fmt.Sprintf("itest-%d", time.Now().UnixNano()),
		"password": "integration-password",
	}
	body, _ := json.Marshal(creds)

	resp, err := http.Post(baseURL+"/api/v1/auth/register", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d", resp.StatusCode)
	}

	resp, err = http.Post(baseURL+"/api/v1/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		t.Fatalf("decoding token: %v", err)
	}
	return token.AccessToken
}

func uploadDocument(t *testing.T, baseURL, token, filename, content string) *http.Response {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", "text/plain")
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("creating form part: %v", err)
	}
	io.WriteString(part, content)
	writer.Close()

	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/v1/documents", &body)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	return resp
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestHealthAndVersionAreUnauthenticated(t *testing.T) {
	db := skipIfNoPostgres(t)
	srv := newAPIServer(t, db)

	for _, path := range []string{"/health/live", "/api/v1/status", "/api/v1/version"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, resp.StatusCode)
		}
	}
}

func TestDocumentEndpointsRequireAuth(t *testing.T) {
	db := skipIfNoPostgres(t)
	srv := newAPIServer(t, db)

	resp, err := http.Get(srv.URL + "/api/v1/documents")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestUploadAnalyzeAndFetchStatistics(t *testing.T) {
	db := skipIfNoPostgres(t)
	srv := newAPIServer(t, db)
	token := registerAndLogin(t, srv.URL)

	resp := uploadDocument(t, srv.URL, token, "doc.txt", "кот сидит на окне кот смотрит")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("upload status = %d: %s", resp.StatusCode, body)
	}

	var uploaded struct {
		Document struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"document"`
		Words []struct {
			Word string  `json:"word"`
			TF   float64 `json:"tf"`
			IDF  float64 `json:"idf"`
		} `json:"words"`
		TotalTokens int `json:"total_tokens"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&uploaded); err != nil {
		t.Fatalf("decoding upload response: %v", err)
	}
	if uploaded.Document.Status != "ANALYZED" {
		t.Errorf("status = %q, want ANALYZED", uploaded.Document.Status)
	}
	if len(uploaded.Words) == 0 {
		t.Fatal("no words in analysis result")
	}

	// Stored statistics match the analysis response.
	req, _ := http.NewRequest(http.MethodGet,
		srv.URL+"/api/v1/documents/"+uploaded.Document.ID+"/statistics", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	statsResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("statistics: %v", err)
	}
	defer statsResp.Body.Close()
	if statsResp.StatusCode != http.StatusOK {
		t.Fatalf("statistics status = %d", statsResp.StatusCode)
	}
	var stats struct {
		Words []struct {
			Word string `json:"word"`
		} `json:"words"`
	}
	if err := json.NewDecoder(statsResp.Body).Decode(&stats); err != nil {
		t.Fatalf("decoding statistics: %v", err)
	}
	if len(stats.Words) != len(uploaded.Words) {
		t.Errorf("stored %d words, analysis returned %d", len(stats.Words), len(uploaded.Words))
	}
}

func TestUploadRejectsNonTextFiles(t *testing.T) {
	db := skipIfNoPostgres(t)
	srv := newAPIServer(t, db)
	token := registerAndLogin(t, srv.URL)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="doc.pdf"`)
	header.Set("Content-Type", "application/pdf")
	part, _ := writer.CreatePart(header)
	io.WriteString(part, "%PDF-1.4")
	writer.Close()

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/documents", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestIDFStaysNonNegativeAfterDelete(t *testing.T) {
	db := skipIfNoPostgres(t)
	srv := newAPIServer(t, db)
	token := registerAndLogin(t, srv.URL)

	// A term unique to this run, so its document frequency comes only from
	// the uploads below.
	term := fmt.Sprintf("гроза%d", time.Now().UnixNano())

	resp := uploadDocument(t, srv.URL, token, "first.txt", term)
	var first struct {
		Document struct {
			ID string `json:"id"`
		} `json:"document"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&first); err != nil {
		t.Fatalf("decoding first upload: %v", err)
	}
	resp.Body.Close()

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/documents/"+first.Document.ID, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	io.Copy(io.Discard, delResp.Body)
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", delResp.StatusCode)
	}

	// The deleted document keeps its corpus contribution, so the second
	// analysis sees df = 1 with a document count that still includes the
	// first upload. IDF must never go negative.
	resp = uploadDocument(t, srv.URL, token, "second.txt", term)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("second upload status = %d: %s", resp.StatusCode, body)
	}
	var second struct {
		Document struct {
			Status string `json:"status"`
		} `json:"document"`
		Words []struct {
			Word string  `json:"word"`
			IDF  float64 `json:"idf"`
		} `json:"words"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&second); err != nil {
		t.Fatalf("decoding second upload: %v", err)
	}
	if second.Document.Status != "ANALYZED" {
		t.Errorf("status = %q, want ANALYZED", second.Document.Status)
	}
	if len(second.Words) == 0 {
		t.Fatal("no words in analysis result")
	}
	for _, w := range second.Words {
		if w.IDF < 0 {
			t.Errorf("IDF(%s) = %v after delete, want >= 0", w.Word, w.IDF)
		}
	}
}

// failingCorpus completes snapshots but refuses registration, standing in
// for a corpus store whose write path is down.
type failingCorpus struct{}

func (failingCorpus) Snapshot(ctx context.Context, terms []string) (corpus.Stats, error) {
	df := make(map[string]int, len(terms))
	for _, term := range terms {
		df[term] = 0
	}
	return corpus.Stats{DocumentFrequency: df}, nil
}

func (failingCorpus) RegisterDocument(ctx context.Context, docID string, distinctTerms []string) error {
	return fmt.Errorf("registration refused")
}

func TestRegistrationFailureMarksDocumentFailed(t *testing.T) {
	db := skipIfNoPostgres(t)

	store := failingCorpus{}
	tfidfAnalyzer, err := analyzer.New(analyzer.Config{TopWords: 50}, store)
	if err != nil {
		t.Fatalf("analyzer.New: %v", err)
	}
	repo := document.NewRepository(db)
	svc := document.NewService(repo, tfidfAnalyzer, store, nil, nil, nil, 1_000_000)

	ctx := context.Background()
	ownerID := uuid.NewString()
	if _, err := svc.Upload(ctx, ownerID, "doc.txt", "text/plain", []byte("гроза облако")); err == nil {
		t.Fatal("expected upload to fail when registration fails")
	}

	docs, err := svc.List(ctx, ownerID, 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("got %d documents, want 1", len(docs))
	}
	if docs[0].Status != document.StatusFailed {
		t.Errorf("status = %q, want %q", docs[0].Status, document.StatusFailed)
	}

	// A document that never joined the corpus has no statistics to serve.
	if _, _, err := svc.Statistics(ctx, docs[0].ID, ownerID); !errors.Is(err, apperrors.ErrDocumentNotAnalyzed) {
		t.Errorf("Statistics error = %v, want ErrDocumentNotAnalyzed", err)
	}
}

func TestCollectionLifecycle(t *testing.T) {
	db := skipIfNoPostgres(t)
	srv := newAPIServer(t, db)
	token := registerAndLogin(t, srv.URL)

	uploadResp := uploadDocument(t, srv.URL, token, "doc.txt", "гроза облако море")
	var uploaded struct {
		Document struct {
			ID string `json:"id"`
		} `json:"document"`
	}
	if err := json.NewDecoder(uploadResp.Body).Decode(&uploaded); err != nil {
		t.Fatalf("decoding upload: %v", err)
	}
	uploadResp.Body.Close()

	createBody, _ := json.Marshal(map[string]string{"name": "itest collection"})
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/collections", bytes.NewReader(createBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("create collection: %v", err)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decoding collection: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}

	addURL := fmt.Sprintf("%s/api/v1/collections/%s/documents/%s", srv.URL, created.ID, uploaded.Document.ID)
	req, _ = http.NewRequest(http.MethodPost, addURL, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("add document: %v", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add document status = %d", resp.StatusCode)
	}

	statsURL := fmt.Sprintf("%s/api/v1/collections/%s/statistics", srv.URL, created.ID)
	req, _ = http.NewRequest(http.MethodGet, statsURL, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("collection statistics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("statistics status = %d", resp.StatusCode)
	}
	var stats struct {
		DocumentCount int `json:"document_count"`
		TotalTokens   int `json:"total_tokens"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decoding statistics: %v", err)
	}
	if stats.DocumentCount != 1 {
		t.Errorf("document_count = %d, want 1", stats.DocumentCount)
	}
	if stats.TotalTokens != 3 {
		t.Errorf("total_tokens = %d, want 3", stats.TotalTokens)
	}
}
