//go:build e2e

package e2e

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cloo-solutions/diligence/internal/api/handlers"
	"github.com/cloo-solutions/diligence/internal/config"
	"github.com/cloo-solutions/diligence/internal/jobs"
	"github.com/cloo-solutions/diligence/internal/questionnaire"
	"github.com/cloo-solutions/diligence/internal/repository"
	"github.com/cloo-solutions/diligence/internal/server"
	"github.com/cloo-solutions/diligence/internal/service"
	"github.com/cloo-solutions/diligence/internal/testutil"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	authToken           = "e2e-static-token"
	embeddingDims       = 1536
	sampleQuestionsPath = "../../data/sample_questions.yaml"
)

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T          *testing.T
	Ctx        context.Context
	PostgresC  *testutil.PostgresContainer
	Pool       *pgxpool.Pool
	Server     *httptest.Server
	ServerURL  string
	HTTPClient *http.Client
	LLM        *scriptedLLM
	Worker     *jobs.EmbeddingWorker
}

// SetupE2EEnv starts Postgres and serves the full router over real repositories.
// Only the model endpoints are faked.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC, "../../migrations")

	samples, err := questionnaire.Load(sampleQuestionsPath)
	if err != nil {
		t.Fatalf("failed to load sample questions: %v", err)
	}

	projectRepo := repository.NewProjectRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	answerRepo := repository.NewAnswerRepository(pool)
	chunkRepo := repository.NewChunkRepository(pool)
	documentRepo := repository.NewDocumentRepository(pool)

	llm := &scriptedLLM{}
	embedder := &fixedEmbedder{}

	answerSvc := service.NewAnswerService(
		answerRepo,
		questionRepo,
		projectRepo,
		service.NewVectorRetriever(embedder, chunkRepo),
		llm,
		config.AnswerSettings{TempA: 0.7, TempB: 0.9, MergeTemp: 0.3, RetrievalTopK: 8},
	)
	projectSvc := service.NewProjectService(
		projectRepo,
		questionRepo,
		answerRepo,
		repository.NewTxRunner(pool),
		samples,
	)

	router := server.NewRouter(server.RouterConfig{
		AppName:         "diligence-e2e",
		AuthValidator:   service.NewStaticKeyAuth(authToken),
		ProjectHandler:  handlers.NewProjectHandler(projectSvc, answerSvc),
		AnswerHandler:   handlers.NewAnswerHandler(answerSvc),
		DocumentHandler: handlers.NewDocumentHandler(service.NewDocumentService(documentRepo)),
	})
	srv := httptest.NewServer(router)

	return &E2ETestEnv{
		T:          t,
		Ctx:        ctx,
		PostgresC:  pgC,
		Pool:       pool,
		Server:     srv,
		ServerURL:  srv.URL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		LLM:        llm,
		Worker:     jobs.NewEmbeddingWorker(chunkRepo, service.NewEmbeddingService(embedder, chunkRepo), documentRepo),
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.Server != nil {
		e.Server.Close()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
}

// Reset empties every table and the fake model call log
func (e *E2ETestEnv) Reset() {
	if err := testutil.TruncateAll(e.Ctx, e.Pool); err != nil {
		e.T.Fatalf("failed to truncate tables: %v", err)
	}
	e.LLM.reset()
}

// SeedChunk registers a document with one chunk the way the external chunker
// does, leaving the embedding and the document status to the worker. It
// returns the document ID.
func (e *E2ETestEnv) SeedChunk(filename string, page int, content string) string {
	docID := uuid.NewString()
	if _, err := e.Pool.Exec(e.Ctx,
		`INSERT INTO documents (id, filename, page_count) VALUES ($1, $2, $3)`,
		docID, filename, page,
	); err != nil {
		e.T.Fatalf("failed to insert document: %v", err)
	}

	chunkID := uuid.NewString()
	if _, err := e.Pool.Exec(e.Ctx,
		`INSERT INTO document_chunks (id, document_id, page, chunk_index, content) VALUES ($1, $2, $3, 0, $4)`,
		chunkID, docID, page, content,
	); err != nil {
		e.T.Fatalf("failed to insert chunk: %v", err)
	}
	return docID
}

// IndexChunks runs one pass of the embedding backfill
func (e *E2ETestEnv) IndexChunks() {
	if err := e.Worker.ProcessJobs(e.Ctx); err != nil {
		e.T.Fatalf("embedding worker failed: %v", err)
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	StatusCode int
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error,omitempty"`
}

// Get performs a GET request
func (e *E2ETestEnv) Get(path, token string) (*APIResponse, error) {
	return e.doRequest(http.MethodGet, path, nil, token)
}

// Post performs a POST request
func (e *E2ETestEnv) Post(path string, body any, token string) (*APIResponse, error) {
	return e.doRequest(http.MethodPost, path, body, token)
}

// Patch performs a PATCH request
func (e *E2ETestEnv) Patch(path string, body any, token string) (*APIResponse, error) {
	return e.doRequest(http.MethodPatch, path, body, token)
}

// Delete performs a DELETE request
func (e *E2ETestEnv) Delete(path, token string) (*APIResponse, error) {
	return e.doRequest(http.MethodDelete, path, nil, token)
}

func (e *E2ETestEnv) doRequest(method, path string, body any, token string) (*APIResponse, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(e.Ctx, method, e.ServerURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	apiResp := APIResponse{StatusCode: resp.StatusCode}
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &apiResp); err != nil {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
		}
	}

	if resp.StatusCode >= 400 {
		return &apiResp, fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiResp.Error)
	}
	return &apiResp, nil
}

// Stream opens an SSE endpoint and returns the decoded data payloads once
// the server closes the stream.
func (e *E2ETestEnv) Stream(path, token string) (http.Header, []map[string]any, error) {
	req, err := http.NewRequestWithContext(e.Ctx, http.MethodGet, e.ServerURL+path, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return resp.Header, nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, body)
	}

	var events []map[string]any
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		payload, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		var event map[string]any
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			return resp.Header, events, fmt.Errorf("bad event %q: %w", payload, err)
		}
		events = append(events, event)
	}
	return resp.Header, events, scanner.Err()
}

// Decode unmarshals the data envelope into v
func (r *APIResponse) Decode(t *testing.T, v any) {
	t.Helper()
	if err := json.Unmarshal(r.Data, v); err != nil {
		t.Fatalf("failed to decode response data %s: %v", r.Data, err)
	}
}

// scriptedLLM answers every variant prompt with the same cited text and
// every merge prompt with a consolidated version of it.
type scriptedLLM struct {
	mu           sync.Mutex
	temperatures []float32
	Variant      string
	Merged       string
}

const (
	defaultVariant = "The company reported revenue of $10M in 2023 [Source: annual_report.pdf, Page 3].\nCONFIDENCE: 0.7"
	defaultMerged  = "The company reported revenue of $10M in 2023 [Source: annual_report.pdf, Page 3].\nCONFIDENCE: 0.85"
)

func (l *scriptedLLM) Complete(ctx context.Context, prompt string, temperature float32) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.temperatures = append(l.temperatures, temperature)

	if strings.Contains(prompt, "FINAL ANSWER:") {
		if l.Merged != "" {
			return l.Merged
		}
		return defaultMerged
	}
	if l.Variant != "" {
		return l.Variant
	}
	return defaultVariant
}

// Temperatures returns the temperatures of every call so far, in call order
func (l *scriptedLLM) Temperatures() []float32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]float32(nil), l.temperatures...)
}

func (l *scriptedLLM) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.temperatures = nil
	l.Variant = ""
	l.Merged = ""
}

// fixedEmbedder maps every text onto the same axis so any indexed chunk is
// a perfect match.
type fixedEmbedder struct{}

func (fixedEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	v := make([]float32, embeddingDims)
	v[0] = 1
	return v, nil
}
