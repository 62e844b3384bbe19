package handlers

import (
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/repositories"
	"github.com/Andrew-C-BOS/WilsonTool-sub001/utils"
)

const (
	maxDocumentSize = 20 << 20
	documentLinkTTL = 15 * time.Minute
)

// DocumentHandler stores and serves lease documents (signed leases,
// move-in checklists). Files live in object storage; the database keeps
// the key and the download links are presigned on demand.
type DocumentHandler struct {
	Store           *utils.DocumentStore
	ApplicationRepo *repositories.ApplicationRepository
	DB              *sql.DB
	Logger          *slog.Logger
}

type documentRecord struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		http.Error(w, "document storage not configured", http.StatusServiceUnavailable)
		return
	}
	appID, err := appIDParam(r)
	if err != nil {
		http.Error(w, "invalid application id", http.StatusBadRequest)
		return
	}
	app, err := h.ApplicationRepo.GetApplicationByID(r.Context(), appID)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxDocumentSize); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxDocumentSize))
	if err != nil {
		http.Error(w, "unable to read file", http.StatusBadRequest)
		return
	}

	key, err := h.Store.UploadLeaseDocument(app.LeaseID.String(), header.Filename, data)
	if err != nil {
		h.Logger.Error("document upload failed", "application_id", appID.String(), "err", err)
		http.Error(w, "upload failed", http.StatusInternalServerError)
		return
	}

	var id int
	err = h.DB.QueryRowContext(r.Context(),
		`INSERT INTO lease_documents (application_id, lease_id, name, object_key, uploaded_by, created_at)
         VALUES ($1, $2, $3, $4, $5, $6)
         RETURNING id`,
		appID.String(), app.LeaseID.String(), header.Filename, key, requestUserID(r), time.Now().UTC(),
	).Scan(&id)
	if err != nil {
		h.Logger.Error("document record insert failed", "err", err)
		http.Error(w, "upload failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, documentRecord{ID: id, Name: header.Filename, CreatedAt: time.Now().UTC()})
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	appID, err := appIDParam(r)
	if err != nil {
		http.Error(w, "invalid application id", http.StatusBadRequest)
		return
	}
	rows, err := h.DB.QueryContext(r.Context(),
		`SELECT id, name, object_key, created_at
         FROM lease_documents
         WHERE application_id = $1
         ORDER BY created_at ASC, id ASC`,
		appID.String())
	if err != nil {
		writeError(w, err)
		return
	}
	defer rows.Close()

	docs := []documentRecord{}
	for rows.Next() {
		var (
			doc documentRecord
			key string
		)
		if err := rows.Scan(&doc.ID, &doc.Name, &key, &doc.CreatedAt); err != nil {
			writeError(w, err)
			return
		}
		if h.Store != nil {
			url, err := h.Store.PresignedURL(key, documentLinkTTL)
			if err != nil {
				h.Logger.Warn("presign failed", "key", key, "err", err)
			} else {
				doc.URL = url
			}
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}
