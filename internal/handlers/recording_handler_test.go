package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/courtscribe/courtscribe/internal/domains/recording"
	"github.com/courtscribe/courtscribe/pkg/Logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type fakeRecordingService struct {
	created    *recording.RecordingResponse
	record     *recording.RecordingResponse
	transcript string
	err        error
}

func (f *fakeRecordingService) CreateRecording(_ context.Context, _ recording.CreateRecordingRequest, _ io.Reader, _ string) (*recording.RecordingResponse, error) {
	return f.created, f.err
}

func (f *fakeRecordingService) GetRecording(_ context.Context, _ string) (*recording.RecordingResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.record, nil
}

func (f *fakeRecordingService) ListRecordings(_ context.Context, _ recording.ListRecordingsRequest) ([]recording.RecordingResponse, int64, error) {
	if f.err != nil {
		return nil, 0, f.err
	}
	if f.record == nil {
		return nil, 0, nil
	}
	return []recording.RecordingResponse{*f.record}, 1, nil
}

func (f *fakeRecordingService) GetTranscript(_ context.Context, _ string) (string, error) {
	return f.transcript, f.err
}

func (f *fakeRecordingService) GetDiarizedSegment(_ context.Context, _ string) (*recording.DiarizedSegment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &recording.DiarizedSegment{Data: "Speaker 1: All rise.\n\n"}, nil
}

func setupRecordingRouter(svc recording.RecordingService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewRecordingHandler(svc, Logger.New(true))
	r := gin.New()
	r.POST("/recordings", h.CreateRecording)
	r.GET("/recordings", h.ListRecordings)
	r.GET("/recordings/:id", h.GetRecording)
	r.GET("/recordings/:id/transcript", h.GetTranscript)
	r.GET("/recordings/:id/diarization", h.GetDiarization)
	return r
}

func TestCreateRecordingRequiresAudio(t *testing.T) {
	r := setupRecordingRouter(&fakeRecordingService{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("case_name", "Republic v. Doe")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/recordings", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCreateRecordingUpload(t *testing.T) {
	id := uuid.New()
	svc := &fakeRecordingService{created: &recording.RecordingResponse{ID: id, CaseName: "Republic v. Doe", Status: recording.RecordingPending}}
	r := setupRecordingRouter(svc)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("case_name", "Republic v. Doe")
	fw, _ := mw.CreateFormFile("audio", "hearing.wav")
	_, _ = fw.Write([]byte("RIFF....WAVE"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/recordings", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", w.Code, w.Body.String())
	}
	var resp CreateRecordingResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Recording.ID != id {
		t.Errorf("recording id = %s, want %s", resp.Recording.ID, id)
	}
}

func TestGetTranscriptWhileProcessing(t *testing.T) {
	r := setupRecordingRouter(&fakeRecordingService{err: recording.ErrNotReady})

	req := httptest.NewRequest(http.MethodGet, "/recordings/"+uuid.NewString()+"/transcript", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestGetRecordingNotFound(t *testing.T) {
	r := setupRecordingRouter(&fakeRecordingService{err: recording.ErrRecordingNotFound})

	req := httptest.NewRequest(http.MethodGet, "/recordings/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestGetDiarization(t *testing.T) {
	r := setupRecordingRouter(&fakeRecordingService{})

	req := httptest.NewRequest(http.MethodGet, "/recordings/"+uuid.NewString()+"/diarization", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp DiarizationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Diarization == "" {
		t.Error("diarization text missing")
	}
}
