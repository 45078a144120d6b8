package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/geocoder89/healthvault/internal/accessctl"
	"github.com/geocoder89/healthvault/internal/config"
	"github.com/geocoder89/healthvault/internal/domain/report"
	"github.com/geocoder89/healthvault/internal/domain/user"
	"github.com/geocoder89/healthvault/internal/http/middlewares"
	"github.com/geocoder89/healthvault/internal/wallet"
	"github.com/gin-gonic/gin"
)

type ReportsHandler struct {
	svc *wallet.Service
}

func NewReportsHandler(svc *wallet.Service) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

// Upload accepts a multipart form with a required "file" part and an optional
// "title" field. The extraction step runs inside the service, so even a dead
// parsing provider yields a 201 here.
func (h *ReportsHandler) Upload(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	fileHeader, err := ctx.FormFile("file")

	if err != nil {
		RespondBadRequest(ctx, "missing_file", "A report file is required.", nil)
		return
	}

	f, err := fileHeader.Open()

	if err != nil {
		RespondBadRequest(ctx, "missing_file", "Could not read the uploaded file.", nil)
		return
	}

	defer f.Close()

	fileBytes, err := io.ReadAll(f)

	if err != nil {
		RespondInternal(ctx, "Could not read the uploaded file")
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")

	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	cctx, cancel := config.WithTimeout(15 * time.Second)

	defer cancel()

	rep, err := h.svc.UploadReport(cctx, userID, wallet.UploadInput{
		FileBytes: fileBytes,
		MimeType:  mimeType,
		FileName:  fileHeader.Filename,
		Title:     ctx.PostForm("title"),
	})

	if err != nil {
		RespondInternal(ctx, "Could not store report")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"reportId": rep.ID,
		"report":   rep,
	})
}

func (h *ReportsHandler) List(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	reports, err := h.svc.ListReports(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not list reports")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": reports,
		"count": len(reports),
	})
}

func (h *ReportsHandler) GetByID(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	rep, err := h.svc.GetReport(cctx, userID, ctx.Param("id"))

	if err != nil {
		switch {
		case errors.Is(err, report.ErrNotFound):
			RespondNotFound(ctx, "Report not found")
		case errors.Is(err, accessctl.ErrForbidden):
			RespondForbidden(ctx, "forbidden", "You do not have access to this report.")
		default:
			RespondInternal(ctx, "Could not fetch report")
		}
		return
	}

	ctx.JSON(http.StatusOK, rep)
}

type ShareRequest struct {
	ReportID    string `json:"reportId" binding:"required"`
	ViewerID    string `json:"viewerId"`
	ViewerEmail string `json:"viewerEmail" binding:"omitempty,email"`
}

// Share grants a viewer read access to one of the caller's reports. The
// viewer is referenced by id or by email, exactly one of the two.
func (h *ReportsHandler) Share(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	var req ShareRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if (req.ViewerID == "") == (req.ViewerEmail == "") {
		RespondBadRequest(ctx, "missing_fields", "Provide exactly one of viewerId or viewerEmail.", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	g, err := h.svc.ShareReport(cctx, userID, req.ReportID, req.ViewerID, req.ViewerEmail)

	if err != nil {
		switch {
		case errors.Is(err, report.ErrNotFound):
			RespondNotFound(ctx, "Report not found")
		case errors.Is(err, user.ErrNotFound):
			RespondNotFound(ctx, "Viewer not found")
		case errors.Is(err, accessctl.ErrForbidden):
			RespondForbidden(ctx, "forbidden", "Only the owner can share a report.")
		case errors.Is(err, accessctl.ErrSelfShare):
			RespondBadRequest(ctx, "self_share", "A report cannot be shared with its owner.", nil)
		case errors.Is(err, accessctl.ErrViewerRole):
			RespondBadRequest(ctx, "viewer_role", "Reports can only be shared with VIEWER accounts.", nil)
		default:
			RespondInternal(ctx, "Could not share report")
		}
		return
	}

	ctx.JSON(http.StatusOK, g)
}
