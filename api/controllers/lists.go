package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/listdist/api/responses"
	"github.com/angelmondragon/listdist/api/validators"
	"github.com/angelmondragon/listdist/internal/ingest"
	"github.com/angelmondragon/listdist/internal/lists"
	pkgerrors "github.com/angelmondragon/listdist/pkg/errors"
	"github.com/angelmondragon/listdist/pkg/logger"
	"github.com/angelmondragon/listdist/pkg/types"
)

const (
	uploadFormField    = "file"
	multipartMemoryCap = 8 << 20
)

// BatchListResponse is the payload of GET /lists.
type BatchListResponse struct {
	Count   int                  `json:"count"`
	Batches []lists.BatchSummary `json:"batches"`
}

// AssignRequest moves one line item to another agent.
type AssignRequest struct {
	AgentID string `json:"agent_id" validate:"required,uuid"`
}

// UploadList accepts a multipart contact list and distributes it across agents.
func UploadList(svc lists.Service, maxBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lists service unavailable"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		fileName, payload, err := readUpload(r, maxBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil {
			ctx := logg.WithFields(r.Context(), map[string]any{
				"file_name":  fileName,
				"size_bytes": len(payload),
			})
			logg.Info(ctx, "lists.upload.received")
		}

		result, err := svc.Upload(r.Context(), fileName, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func readUpload(r *http.Request, maxBytes int64) (string, []byte, error) {
	if err := r.ParseMultipartForm(multipartMemoryCap); err != nil {
		return "", nil, uploadReadError(err, maxBytes)
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil, pkgerrors.New(pkgerrors.CodeValidation, "file is required").
				WithDetails(map[string]any{"field": uploadFormField, "accepted": ingest.AcceptedExtensions})
		}
		return "", nil, uploadReadError(err, maxBytes)
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		return "", nil, uploadReadError(err, maxBytes)
	}
	return header.Filename, payload, nil
}

func uploadReadError(err error, maxBytes int64) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return pkgerrors.Wrapf(pkgerrors.CodeTooLarge, err, "upload exceeds %d bytes", maxBytes).
			WithDetails(map[string]any{"max_bytes": maxBytes})
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart upload")
}

// ListBatches returns every batch, newest first.
func ListBatches(svc lists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lists service unavailable"))
			return
		}
		batches, err := svc.ListBatches(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if batches == nil {
			batches = []lists.BatchSummary{}
		}
		responses.WriteSuccess(w, BatchListResponse{Count: len(batches), Batches: batches})
	}
}

// GetBatch returns the items of one batch with their agents.
func GetBatch(svc lists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lists service unavailable"))
			return
		}
		batch, err := validators.RequireParam(r, "batch")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.GetBatch(r.Context(), batch)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, types.NewCountedList(items))
	}
}

// AgentItems returns the line items currently owned by one agent.
func AgentItems(svc lists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lists service unavailable"))
			return
		}
		agentID, err := validators.ParseUUIDParam(r, "agentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.AgentItems(r.Context(), agentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, types.NewCountedList(items))
	}
}

// AssignItem reassigns a single line item.
func AssignItem(svc lists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lists service unavailable"))
			return
		}
		itemID, err := validators.ParseUUIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req AssignRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		agentID, err := uuid.Parse(req.AgentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid agent_id"))
			return
		}

		result, err := svc.Reassign(r.Context(), itemID, agentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// DeleteBatch removes every item of a batch.
func DeleteBatch(svc lists.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lists service unavailable"))
			return
		}
		batch, err := validators.RequireParam(r, "batch")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.DeleteBatch(r.Context(), batch)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
