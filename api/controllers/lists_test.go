package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/listdist/internal/distribution"
	"github.com/angelmondragon/listdist/internal/lists"
	pkgerrors "github.com/angelmondragon/listdist/pkg/errors"
)

type stubListsService struct {
	uploadFn      func(ctx context.Context, fileName string, payload []byte) (*lists.UploadResult, error)
	listBatchesFn func(ctx context.Context) ([]lists.BatchSummary, error)
	getBatchFn    func(ctx context.Context, batch string) ([]lists.BatchItem, error)
	agentItemsFn  func(ctx context.Context, agentID uuid.UUID) ([]lists.ListItemDTO, error)
	reassignFn    func(ctx context.Context, itemID, agentID uuid.UUID) (*lists.ReassignResult, error)
	deleteFn      func(ctx context.Context, batch string) (*lists.DeleteResult, error)
}

func (s *stubListsService) Upload(ctx context.Context, fileName string, payload []byte) (*lists.UploadResult, error) {
	return s.uploadFn(ctx, fileName, payload)
}

func (s *stubListsService) ListBatches(ctx context.Context) ([]lists.BatchSummary, error) {
	return s.listBatchesFn(ctx)
}

func (s *stubListsService) GetBatch(ctx context.Context, batch string) ([]lists.BatchItem, error) {
	return s.getBatchFn(ctx, batch)
}

func (s *stubListsService) AgentItems(ctx context.Context, agentID uuid.UUID) ([]lists.ListItemDTO, error) {
	return s.agentItemsFn(ctx, agentID)
}

func (s *stubListsService) Reassign(ctx context.Context, itemID, agentID uuid.UUID) (*lists.ReassignResult, error) {
	return s.reassignFn(ctx, itemID, agentID)
}

func (s *stubListsService) DeleteBatch(ctx context.Context, batch string) (*lists.DeleteResult, error) {
	return s.deleteFn(ctx, batch)
}

func withURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func multipartUpload(t *testing.T, field, fileName, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/lists/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeData(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Data  map[string]any `json:"data"`
		Error map[string]any `json:"error"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	if envelope.Data != nil {
		return envelope.Data
	}
	return envelope.Error
}

func TestUploadListSuccess(t *testing.T) {
	agent := distribution.AgentSnapshot{ID: uuid.New(), Name: "Ana", Email: "ana@example.com"}
	svc := &stubListsService{
		uploadFn: func(_ context.Context, fileName string, payload []byte) (*lists.UploadResult, error) {
			assert.Equal(t, "contacts.csv", fileName)
			assert.Equal(t, "FirstName,Phone,Notes\nA,1,\n", string(payload))
			return &lists.UploadResult{
				Count:        1,
				Batch:        "1700000000000",
				Distribution: []lists.DistributionEntry{{Agent: agent, ItemCount: 1}},
			}, nil
		},
	}

	resp := httptest.NewRecorder()
	UploadList(svc, 1<<20, nil)(resp, multipartUpload(t, "file", "contacts.csv", "FirstName,Phone,Notes\nA,1,\n"))

	require.Equal(t, http.StatusCreated, resp.Code)
	data := decodeData(t, resp)
	assert.EqualValues(t, 1, data["count"])
	assert.Equal(t, "1700000000000", data["batch"])
	assert.Len(t, data["distribution"], 1)
}

func TestUploadListMissingFile(t *testing.T) {
	svc := &stubListsService{}
	resp := httptest.NewRecorder()
	UploadList(svc, 1<<20, nil)(resp, multipartUpload(t, "other", "contacts.csv", "x"))

	require.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "file is required", decodeData(t, resp)["message"])
}

func TestUploadListTooLarge(t *testing.T) {
	svc := &stubListsService{}
	resp := httptest.NewRecorder()
	UploadList(svc, 64, nil)(resp, multipartUpload(t, "file", "contacts.csv", strings.Repeat("x", 4096)))

	require.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
	assert.Equal(t, string(pkgerrors.CodeTooLarge), decodeData(t, resp)["code"])
}

func TestUploadListPropagatesServiceErrors(t *testing.T) {
	svc := &stubListsService{
		uploadFn: func(context.Context, string, []byte) (*lists.UploadResult, error) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no active agents available")
		},
	}
	resp := httptest.NewRecorder()
	UploadList(svc, 1<<20, nil)(resp, multipartUpload(t, "file", "contacts.csv", "FirstName,Phone,Notes\nA,1,\n"))

	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Equal(t, "no active agents available", decodeData(t, resp)["message"])
}

func TestListBatchesWrapsCount(t *testing.T) {
	now := time.Now().UTC()
	svc := &stubListsService{
		listBatchesFn: func(context.Context) ([]lists.BatchSummary, error) {
			return []lists.BatchSummary{
				{Batch: "2", CreatedAt: now, Count: 3},
				{Batch: "1", CreatedAt: now.Add(-time.Minute), Count: 2},
			}, nil
		},
	}
	resp := httptest.NewRecorder()
	ListBatches(svc, nil)(resp, httptest.NewRequest(http.MethodGet, "/api/admin/v1/lists", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	data := decodeData(t, resp)
	assert.EqualValues(t, 2, data["count"])
	batches := data["batches"].([]any)
	assert.Equal(t, "2", batches[0].(map[string]any)["batch"])
}

func TestListBatchesEmptyIsArray(t *testing.T) {
	svc := &stubListsService{
		listBatchesFn: func(context.Context) ([]lists.BatchSummary, error) { return nil, nil },
	}
	resp := httptest.NewRecorder()
	ListBatches(svc, nil)(resp, httptest.NewRequest(http.MethodGet, "/api/admin/v1/lists", nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"data":{"count":0,"batches":[]}}`, resp.Body.String())
}

func TestGetBatchNotFound(t *testing.T) {
	svc := &stubListsService{
		getBatchFn: func(_ context.Context, batch string) ([]lists.BatchItem, error) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, lists.ErrBatchNotFound, "batch "+batch+" not found")
		},
	}
	req := withURLParams(httptest.NewRequest(http.MethodGet, "/api/admin/v1/lists/42", nil), "batch", "42")
	resp := httptest.NewRecorder()
	GetBatch(svc, nil)(resp, req)

	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "batch 42 not found", decodeData(t, resp)["message"])
}

func TestAgentItemsRejectsInvalidID(t *testing.T) {
	svc := &stubListsService{}
	req := withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), "agentId", "not-a-uuid")
	resp := httptest.NewRecorder()
	AgentItems(svc, nil)(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestAgentItemsReturnsCountedList(t *testing.T) {
	agentID := uuid.New()
	svc := &stubListsService{
		agentItemsFn: func(_ context.Context, id uuid.UUID) ([]lists.ListItemDTO, error) {
			assert.Equal(t, agentID, id)
			return []lists.ListItemDTO{{ID: uuid.New(), FirstName: "A", AgentID: agentID}}, nil
		},
	}
	req := withURLParams(httptest.NewRequest(http.MethodGet, "/", nil), "agentId", agentID.String())
	resp := httptest.NewRecorder()
	AgentItems(svc, nil)(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.EqualValues(t, 1, decodeData(t, resp)["count"])
}

func TestAssignItem(t *testing.T) {
	itemID := uuid.New()
	agentID := uuid.New()
	svc := &stubListsService{
		reassignFn: func(_ context.Context, item, agent uuid.UUID) (*lists.ReassignResult, error) {
			assert.Equal(t, itemID, item)
			assert.Equal(t, agentID, agent)
			return &lists.ReassignResult{ItemID: item, Agent: distribution.AgentSnapshot{ID: agent}}, nil
		},
	}
	body := strings.NewReader(`{"agent_id":"` + agentID.String() + `"}`)
	req := withURLParams(httptest.NewRequest(http.MethodPut, "/", body), "itemId", itemID.String())
	resp := httptest.NewRecorder()
	AssignItem(svc, nil)(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, itemID.String(), decodeData(t, resp)["item_id"])
}

func TestAssignItemRequiresAgentID(t *testing.T) {
	svc := &stubListsService{}
	req := withURLParams(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{}`)), "itemId", uuid.NewString())
	resp := httptest.NewRecorder()
	AssignItem(svc, nil)(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
	details := decodeData(t, resp)["details"].(map[string]any)
	assert.Equal(t, "is required", details["agent_id"])
}

func TestDeleteBatch(t *testing.T) {
	svc := &stubListsService{
		deleteFn: func(_ context.Context, batch string) (*lists.DeleteResult, error) {
			return &lists.DeleteResult{Batch: batch, DeletedCount: 7}, nil
		},
	}
	req := withURLParams(httptest.NewRequest(http.MethodDelete, "/", nil), "batch", "1700000000000")
	resp := httptest.NewRecorder()
	DeleteBatch(svc, nil)(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	data := decodeData(t, resp)
	assert.Equal(t, "1700000000000", data["batch"])
	assert.EqualValues(t, 7, data["deleted_count"])
}
