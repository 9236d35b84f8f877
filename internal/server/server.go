package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/user/rsakit/internal/benchmark"
	"github.com/user/rsakit/internal/storage"
	"github.com/user/rsakit/internal/textbook"
	"github.com/user/rsakit/pkg/sysinfo"
)

// Request limits. MaxKeyBits also bounds benchmark key sizes.
const (
	MaxKeyBits             = 8192
	MaxBenchmarkParallel   = 64
	MaxBenchmarkWorkers    = 64
	MaxBenchmarkIterations = 10000
)

type Server struct {
	router     *mux.Router
	keyStore   *storage.KeyStore
	jobStore   *JobStore
	workerPool *WorkerPool
	sysInfo    *sysinfo.SystemInfo
	upgrader   websocket.Upgrader
	port       string
}

type BenchmarkJob struct {
	ID          string                        `json:"id"`
	Config      benchmark.Config              `json:"config"`
	Status      string                        `json:"status"`
	StartedAt   time.Time                     `json:"started_at"`
	UpdatedAt   time.Time                     `json:"updated_at"`
	CompletedAt *time.Time                    `json:"completed_at,omitempty"`
	Results     []benchmark.WebResult         `json:"results,omitempty"`
	Error       string                        `json:"error,omitempty"`
	Progress    chan benchmark.ProgressUpdate `json:"-"`
}

type createKeyRequest struct {
	BitLength int `json:"bit_length"`
}

type encryptRequest struct {
	Message string `json:"message"`
}

type encryptResponse struct {
	KeyID      string     `json:"key_id"`
	Ciphertext []*big.Int `json:"ciphertext"`
	Warning    string     `json:"warning,omitempty"`
}

type decryptRequest struct {
	Ciphertext []*big.Int `json:"ciphertext"`
}

type decryptResponse struct {
	KeyID   string `json:"key_id"`
	Message string `json:"message"`
}

func NewServer(port string) (*Server, error) {
	return NewServerWithWorkers(port, 1)
}

func NewServerWithWorkers(port string, workers int) (*Server, error) {
	if workers < 1 {
		workers = 1
	}

	sysInfo, err := sysinfo.Collect()
	if err != nil {
		return nil, fmt.Errorf("failed to collect system info: %w", err)
	}

	keyStore := storage.NewKeyStore()
	jobStore := NewJobStore()

	s := &Server{
		router:     mux.NewRouter(),
		keyStore:   keyStore,
		jobStore:   jobStore,
		workerPool: NewWorkerPool(workers, jobStore, keyStore),
		sysInfo:    sysInfo,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		port: port,
	}

	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/system-info", s.handleSystemInfo).Methods("GET")

	api.HandleFunc("/keys", s.handleCreateKey).Methods("POST")
	api.HandleFunc("/keys", s.handleListKeys).Methods("GET")
	api.HandleFunc("/keys/{id}", s.handleGetKey).Methods("GET")
	api.HandleFunc("/keys/{id}", s.handleDeleteKey).Methods("DELETE")
	api.HandleFunc("/keys/{id}/encrypt", s.handleEncrypt).Methods("POST")
	api.HandleFunc("/keys/{id}/decrypt", s.handleDecrypt).Methods("POST")

	api.HandleFunc("/benchmarks", s.handleCreateBenchmark).Methods("POST")
	api.HandleFunc("/benchmarks", s.handleListBenchmarks).Methods("GET")
	api.HandleFunc("/benchmarks/{id}", s.handleGetBenchmark).Methods("GET")
	api.HandleFunc("/benchmarks/{id}/progress", s.handleBenchmarkProgress).Methods("GET")
	api.HandleFunc("/benchmarks/{id}/terminate", s.handleTerminateBenchmark).Methods("POST")
}

// Handler exposes the router, mainly for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down the listener and
// the worker pool.
func (s *Server) Start(ctx context.Context) error {
	s.workerPool.Start()
	defer s.workerPool.Stop()

	httpServer := &http.Server{
		Addr:    ":" + s.port,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("rsakit server starting on http://localhost:%s", s.port)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func (s *Server) handleSystemInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sysInfo)
}

func (s *Server) handleCreateKey(w http.ResponseWriter, r *http.Request) {
	var req createKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.BitLength < textbook.MinKeypairBits || req.BitLength > MaxKeyBits {
		http.Error(w, fmt.Sprintf("bit_length must be between %d and %d", textbook.MinKeypairBits, MaxKeyBits), http.StatusBadRequest)
		return
	}

	random := textbook.NewContextReader(r.Context(), textbook.DefaultSource())
	kp, err := textbook.GenerateKeypair(r.Context(), random, req.BitLength)
	if err != nil {
		http.Error(w, fmt.Sprintf("Key generation failed: %v", err), http.StatusInternalServerError)
		return
	}

	key := s.keyStore.Store(kp, req.BitLength, "")
	log.Printf("Generated %d-bit keypair %s", req.BitLength, key.ID)
	writeJSON(w, http.StatusCreated, key)
}

func (s *Server) handleListKeys(w http.ResponseWriter, r *http.Request) {
	benchmarkID := r.URL.Query().Get("benchmark_id")

	var keys []*storage.StoredKey
	if benchmarkID != "" {
		keys = s.keyStore.GetKeysByBenchmark(benchmarkID)
	} else {
		keys = s.keyStore.GetAllKeys()
	}
	if keys == nil {
		keys = []*storage.StoredKey{}
	}

	writeJSON(w, http.StatusOK, keys)
}

func (s *Server) lookupKey(w http.ResponseWriter, r *http.Request) (*storage.StoredKey, bool) {
	key, exists := s.keyStore.GetKey(mux.Vars(r)["id"])
	if !exists {
		http.Error(w, "Key not found", http.StatusNotFound)
	}
	return key, exists
}

func (s *Server) handleGetKey(w http.ResponseWriter, r *http.Request) {
	key, ok := s.lookupKey(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, key)
}

func (s *Server) handleDeleteKey(w http.ResponseWriter, r *http.Request) {
	if !s.keyStore.DeleteKey(mux.Vars(r)["id"]) {
		http.Error(w, "Key not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEncrypt(w http.ResponseWriter, r *http.Request) {
	key, ok := s.lookupKey(w, r)
	if !ok {
		return
	}

	var req encryptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp := encryptResponse{
		KeyID:      key.ID,
		Ciphertext: textbook.Encrypt(req.Message, key.Public),
	}
	// Too-small moduli are reported, not rejected
	if err := textbook.CheckPlaintext(req.Message, key.Public); err != nil {
		resp.Warning = err.Error()
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDecrypt(w http.ResponseWriter, r *http.Request) {
	key, ok := s.lookupKey(w, r)
	if !ok {
		return
	}

	var req decryptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	for _, c := range req.Ciphertext {
		if c == nil || c.Sign() < 0 {
			http.Error(w, "ciphertext values must be non-negative integers", http.StatusBadRequest)
			return
		}
	}

	message, err := textbook.Decrypt(req.Ciphertext, key.Private)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, textbook.ErrCodePointRange) {
			status = http.StatusUnprocessableEntity
		}
		http.Error(w, err.Error(), status)
		return
	}

	writeJSON(w, http.StatusOK, decryptResponse{KeyID: key.ID, Message: message})
}

func (s *Server) handleCreateBenchmark(w http.ResponseWriter, r *http.Request) {
	var config benchmark.Config
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if len(config.Strategies) == 0 {
		config.Strategies = []string{"sequential"}
	}
	// Omitted fields decode as zero and take defaults
	if config.Parallel == 0 {
		config.Parallel = min(runtime.NumCPU(), MaxBenchmarkParallel)
	}
	if config.Iterations == 0 {
		config.Iterations = 1
	}
	if err := validateBenchmarkConfig(config); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.Printf("Creating benchmark job - strategies: %v, parallel: %d, iterations: %d",
		config.Strategies, config.Parallel, config.Iterations)

	now := time.Now()
	job := &BenchmarkJob{
		ID:        uuid.New().String(),
		Config:    config,
		Status:    StatusQueued,
		StartedAt: now,
		UpdatedAt: now,
		Progress:  make(chan benchmark.ProgressUpdate, 100),
	}

	s.jobStore.Add(job)
	if err := s.workerPool.Submit(job); err != nil {
		s.jobStore.Remove(job.ID)
		http.Error(w, "Server is busy, please try again later", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"job_id": job.ID,
		"status": StatusQueued,
	})
}

func validateBenchmarkConfig(config benchmark.Config) error {
	if len(config.KeySizes) == 0 {
		return fmt.Errorf("key_sizes must not be empty")
	}
	for _, size := range config.KeySizes {
		if size < textbook.MinKeypairBits || size > MaxKeyBits {
			return fmt.Errorf("key size %d must be between %d and %d", size, textbook.MinKeypairBits, MaxKeyBits)
		}
	}
	if config.Parallel < 1 || config.Parallel > MaxBenchmarkParallel {
		return fmt.Errorf("parallel must be between 1 and %d", MaxBenchmarkParallel)
	}
	if config.Iterations < 1 || config.Iterations > MaxBenchmarkIterations {
		return fmt.Errorf("iterations must be between 1 and %d", MaxBenchmarkIterations)
	}
	if config.Workers < 0 || config.Workers > MaxBenchmarkWorkers {
		return fmt.Errorf("workers must be between 0 and %d", MaxBenchmarkWorkers)
	}
	return nil
}

func (s *Server) handleListBenchmarks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.jobStore.List())
}

func (s *Server) handleGetBenchmark(w http.ResponseWriter, r *http.Request) {
	job, exists := s.jobStore.Get(mux.Vars(r)["id"])
	if !exists {
		http.Error(w, "Benchmark not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleTerminateBenchmark(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	found, changed := s.jobStore.Terminate(id)
	if !found {
		http.Error(w, "Benchmark not found", http.StatusNotFound)
		return
	}
	if !changed {
		http.Error(w, "Benchmark already finished", http.StatusConflict)
		return
	}

	s.workerPool.TerminateJob(id)

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  StatusTerminated,
		"message": "Benchmark termination initiated",
	})
}

func (s *Server) handleBenchmarkProgress(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	progress, exists := s.jobStore.progress(id)
	if !exists {
		http.Error(w, "Benchmark not found", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case update, ok := <-progress:
			if !ok {
				// Job finished; report the final status on the next tick
				progress = nil
				continue
			}
			if err := conn.WriteJSON(map[string]any{
				"status":     StatusRunning,
				"completed":  false,
				"current":    update.Current,
				"total":      update.Total,
				"percentage": update.Percentage,
				"rate":       update.Rate,
				"strategy":   update.Strategy,
				"key_size":   update.KeySize,
			}); err != nil {
				return
			}

		case <-ticker.C:
			job, exists := s.jobStore.Get(id)
			if !exists {
				return
			}

			if job.Status != StatusRunning && job.Status != StatusQueued {
				conn.WriteJSON(map[string]any{
					"status":    job.Status,
					"completed": true,
				})
				return
			}

		case <-r.Context().Done():
			return
		}
	}
}
